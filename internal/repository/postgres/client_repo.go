package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// ClientRepository implements domain.ClientRepository using PostgreSQL
type ClientRepository struct {
	pool *pgxpool.Pool
}

// NewClientRepository creates a new ClientRepository
func NewClientRepository(pool *pgxpool.Pool) *ClientRepository {
	return &ClientRepository{pool: pool}
}

const clientColumns = `id, user_id, client_name, contact_person, email, phone, gstin,
	address_street, address_city, address_state, address_pincode, notes, created_at, updated_at`

// Create creates a new client
func (r *ClientRepository) Create(client *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO clients (user_id, client_name, contact_person, email, phone, gstin,
			address_street, address_city, address_state, address_pincode, notes)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING `+clientColumns,
		client.UserID, client.ClientName,
		stringPtrToPgText(client.ContactPerson), stringPtrToPgText(client.Email),
		stringPtrToPgText(client.Phone), stringPtrToPgText(client.GSTIN),
		stringPtrToPgText(client.Address.Street), stringPtrToPgText(client.Address.City),
		client.Address.State, stringPtrToPgText(client.Address.Pincode),
		stringPtrToPgText(client.Notes))

	return scanClient(row)
}

// GetByID retrieves a client owned by the user
func (r *ClientRepository) GetByID(userID uuid.UUID, id int32) (*domain.Client, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+clientColumns+` FROM clients
		WHERE user_id = $1 AND id = $2`, userID, id)

	client, err := scanClient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return client, nil
}

// GetByUser lists the user's clients, newest first, optionally filtered
// by a case-insensitive name or contact search.
func (r *ClientRepository) GetByUser(userID uuid.UUID, search string) ([]*domain.Client, error) {
	rows, err := r.pool.Query(context.Background(), `
		SELECT `+clientColumns+` FROM clients
		WHERE user_id = $1
		  AND ($2 = '' OR client_name ILIKE '%' || $2 || '%' OR contact_person ILIKE '%' || $2 || '%')
		ORDER BY created_at DESC`, userID, search)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var clients []*domain.Client
	for rows.Next() {
		client, err := scanClient(rows)
		if err != nil {
			return nil, err
		}
		clients = append(clients, client)
	}
	return clients, rows.Err()
}

// Update updates a client's details
func (r *ClientRepository) Update(userID uuid.UUID, id int32, client *domain.Client) (*domain.Client, error) {
	row := r.pool.QueryRow(context.Background(), `
		UPDATE clients SET
			client_name = $3, contact_person = $4, email = $5, phone = $6, gstin = $7,
			address_street = $8, address_city = $9, address_state = $10, address_pincode = $11,
			notes = $12, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+clientColumns,
		userID, id, client.ClientName,
		stringPtrToPgText(client.ContactPerson), stringPtrToPgText(client.Email),
		stringPtrToPgText(client.Phone), stringPtrToPgText(client.GSTIN),
		stringPtrToPgText(client.Address.Street), stringPtrToPgText(client.Address.City),
		client.Address.State, stringPtrToPgText(client.Address.Pincode),
		stringPtrToPgText(client.Notes))

	updated, err := scanClient(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrClientNotFound
		}
		return nil, err
	}
	return updated, nil
}

// Delete removes a client
func (r *ClientRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM clients WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrClientNotFound
	}
	return nil
}

func scanClient(row pgx.Row) (*domain.Client, error) {
	var (
		client                             domain.Client
		contactPerson, email, phone, gstin pgtype.Text
		street, city, pincode, notes       pgtype.Text
	)
	err := row.Scan(&client.ID, &client.UserID, &client.ClientName,
		&contactPerson, &email, &phone, &gstin,
		&street, &city, &client.Address.State, &pincode,
		&notes, &client.CreatedAt, &client.UpdatedAt)
	if err != nil {
		return nil, err
	}
	client.ContactPerson = pgTextToStringPtr(contactPerson)
	client.Email = pgTextToStringPtr(email)
	client.Phone = pgTextToStringPtr(phone)
	client.GSTIN = pgTextToStringPtr(gstin)
	client.Address.Street = pgTextToStringPtr(street)
	client.Address.City = pgTextToStringPtr(city)
	client.Address.Pincode = pgTextToStringPtr(pincode)
	client.Notes = pgTextToStringPtr(notes)
	return &client, nil
}
