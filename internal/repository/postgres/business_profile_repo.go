package postgres

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// BusinessProfileRepository implements domain.BusinessProfileRepository
// using PostgreSQL
type BusinessProfileRepository struct {
	pool *pgxpool.Pool
}

// NewBusinessProfileRepository creates a new BusinessProfileRepository
func NewBusinessProfileRepository(pool *pgxpool.Pool) *BusinessProfileRepository {
	return &BusinessProfileRepository{pool: pool}
}

const profileColumns = `id, user_id, business_name, business_type, gstin, pan,
	address_street, address_city, address_state, address_pincode,
	phone, email, logo_path, bank_account_number, bank_ifsc, bank_name, bank_branch,
	website, terms_and_conditions, created_at, updated_at`

// GetByUser retrieves the user's business profile
func (r *BusinessProfileRepository) GetByUser(userID uuid.UUID) (*domain.BusinessProfile, error) {
	row := r.pool.QueryRow(context.Background(), `
		SELECT `+profileColumns+` FROM business_profiles
		WHERE user_id = $1`, userID)

	profile, err := scanProfile(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrBusinessProfileNotFound
		}
		return nil, err
	}
	return profile, nil
}

// Upsert creates or replaces the user's business profile. One profile
// per user, keyed on user_id.
func (r *BusinessProfileRepository) Upsert(profile *domain.BusinessProfile) (*domain.BusinessProfile, error) {
	var bank domain.BankDetails
	if profile.BankDetails != nil {
		bank = *profile.BankDetails
	}

	row := r.pool.QueryRow(context.Background(), `
		INSERT INTO business_profiles (user_id, business_name, business_type, gstin, pan,
			address_street, address_city, address_state, address_pincode,
			phone, email, logo_path, bank_account_number, bank_ifsc, bank_name, bank_branch,
			website, terms_and_conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		ON CONFLICT (user_id) DO UPDATE SET
			business_name = EXCLUDED.business_name,
			business_type = EXCLUDED.business_type,
			gstin = EXCLUDED.gstin,
			pan = EXCLUDED.pan,
			address_street = EXCLUDED.address_street,
			address_city = EXCLUDED.address_city,
			address_state = EXCLUDED.address_state,
			address_pincode = EXCLUDED.address_pincode,
			phone = EXCLUDED.phone,
			email = EXCLUDED.email,
			logo_path = COALESCE(EXCLUDED.logo_path, business_profiles.logo_path),
			bank_account_number = EXCLUDED.bank_account_number,
			bank_ifsc = EXCLUDED.bank_ifsc,
			bank_name = EXCLUDED.bank_name,
			bank_branch = EXCLUDED.bank_branch,
			website = EXCLUDED.website,
			terms_and_conditions = EXCLUDED.terms_and_conditions,
			updated_at = now()
		RETURNING `+profileColumns,
		profile.UserID, profile.BusinessName, string(profile.BusinessType),
		stringPtrToPgText(profile.GSTIN), stringPtrToPgText(profile.PAN),
		stringPtrToPgText(profile.Address.Street), stringPtrToPgText(profile.Address.City),
		profile.Address.State, stringPtrToPgText(profile.Address.Pincode),
		stringPtrToPgText(profile.Phone), stringPtrToPgText(profile.Email),
		stringPtrToPgText(profile.LogoPath),
		stringPtrToPgText(bank.AccountNumber), stringPtrToPgText(bank.IFSC),
		stringPtrToPgText(bank.BankName), stringPtrToPgText(bank.Branch),
		stringPtrToPgText(profile.Website), profile.TermsAndConditions)

	return scanProfile(row)
}

func scanProfile(row pgx.Row) (*domain.BusinessProfile, error) {
	var (
		profile      domain.BusinessProfile
		businessType string

		gstin, pan, street, city, pincode           pgtype.Text
		phone, email, logoPath, website             pgtype.Text
		bankAccount, bankIFSC, bankName, bankBranch pgtype.Text
	)
	err := row.Scan(&profile.ID, &profile.UserID, &profile.BusinessName, &businessType,
		&gstin, &pan, &street, &city, &profile.Address.State, &pincode,
		&phone, &email, &logoPath, &bankAccount, &bankIFSC, &bankName, &bankBranch,
		&website, &profile.TermsAndConditions, &profile.CreatedAt, &profile.UpdatedAt)
	if err != nil {
		return nil, err
	}

	profile.BusinessType = domain.BusinessType(businessType)
	profile.GSTIN = pgTextToStringPtr(gstin)
	profile.PAN = pgTextToStringPtr(pan)
	profile.Address.Street = pgTextToStringPtr(street)
	profile.Address.City = pgTextToStringPtr(city)
	profile.Address.Pincode = pgTextToStringPtr(pincode)
	profile.Phone = pgTextToStringPtr(phone)
	profile.Email = pgTextToStringPtr(email)
	profile.LogoPath = pgTextToStringPtr(logoPath)
	profile.Website = pgTextToStringPtr(website)

	if bankAccount.Valid || bankIFSC.Valid || bankName.Valid || bankBranch.Valid {
		profile.BankDetails = &domain.BankDetails{
			AccountNumber: pgTextToStringPtr(bankAccount),
			IFSC:          pgTextToStringPtr(bankIFSC),
			BankName:      pgTextToStringPtr(bankName),
			Branch:        pgTextToStringPtr(bankBranch),
		}
	}
	return &profile, nil
}
