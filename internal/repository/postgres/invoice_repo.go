package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// InvoiceRepository implements domain.InvoiceRepository using PostgreSQL
type InvoiceRepository struct {
	pool *pgxpool.Pool
}

// NewInvoiceRepository creates a new InvoiceRepository
func NewInvoiceRepository(pool *pgxpool.Pool) *InvoiceRepository {
	return &InvoiceRepository{pool: pool}
}

const invoiceColumns = `id, user_id, invoice_number, client_id, invoice_date, due_date, status,
	subtotal, tax_amount, total_amount, cgst, sgst, igst, notes, terms_and_conditions,
	payment_date, payment_method, payment_reference, created_at, updated_at`

const lineItemColumns = `id, invoice_id, item_name, description, quantity, rate, discount,
	gst_percentage, item_total, tax_amount, created_at, updated_at`

// Create inserts an invoice and its line items in one transaction
func (r *InvoiceRepository) Create(invoice *domain.Invoice, items []*domain.InvoiceLineItem) (*domain.Invoice, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	subtotal, taxAmount, totalAmount, breakup, err := invoiceMoneyParams(invoice)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		INSERT INTO invoices (user_id, invoice_number, client_id, invoice_date, due_date, status,
			subtotal, tax_amount, total_amount, cgst, sgst, igst, notes, terms_and_conditions)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14)
		RETURNING `+invoiceColumns,
		invoice.UserID, invoice.InvoiceNumber, invoice.ClientID,
		invoice.InvoiceDate, invoice.DueDate, string(invoice.Status),
		subtotal, taxAmount, totalAmount, breakup[0], breakup[1], breakup[2],
		stringPtrToPgText(invoice.Notes), stringPtrToPgText(invoice.TermsAndConditions))

	created, err := scanInvoice(row)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, domain.ErrDuplicateInvoiceNumber
		}
		return nil, err
	}

	created.LineItems, err = insertLineItems(ctx, tx, created.ID, items)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return created, nil
}

// GetByID retrieves an invoice with its line items
func (r *InvoiceRepository) GetByID(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	ctx := context.Background()

	row := r.pool.QueryRow(ctx, `
		SELECT `+invoiceColumns+` FROM invoices
		WHERE user_id = $1 AND id = $2`, userID, id)

	invoice, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	invoice.LineItems, err = r.lineItemsFor(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

func (r *InvoiceRepository) lineItemsFor(ctx context.Context, invoiceID int32) ([]*domain.InvoiceLineItem, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT `+lineItemColumns+` FROM invoice_line_items
		WHERE invoice_id = $1 ORDER BY id`, invoiceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []*domain.InvoiceLineItem
	for rows.Next() {
		item, err := scanLineItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

// invoiceSortColumns maps API sort keys to SQL order expressions
var invoiceSortColumns = map[string]string{
	"invoiceDate": "invoice_date",
	"dueDate":     "due_date",
	"totalAmount": "total_amount",
	"createdAt":   "created_at",
}

// GetByUser lists invoices with filtering, sorting and pagination.
// Line items are not loaded for list views.
func (r *InvoiceRepository) GetByUser(userID uuid.UUID, filters *domain.InvoiceFilters) (*domain.PaginatedInvoices, error) {
	ctx := context.Background()
	if filters == nil {
		filters = &domain.InvoiceFilters{}
	}

	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultInvoicePageSize
	}
	if pageSize > domain.MaxInvoicePageSize {
		pageSize = domain.MaxInvoicePageSize
	}

	var status pgtype.Text
	if filters.Status != nil {
		status = pgtype.Text{String: string(*filters.Status), Valid: true}
	}
	var clientID pgtype.Int4
	if filters.ClientID != nil {
		clientID = pgtype.Int4{Int32: *filters.ClientID, Valid: true}
	}

	where := `user_id = $1
		  AND ($2::text IS NULL OR status = $2)
		  AND ($3::int IS NULL OR client_id = $3)
		  AND ($4::timestamptz IS NULL OR invoice_date >= $4)
		  AND ($5::timestamptz IS NULL OR invoice_date <= $5)
		  AND ($6 = '' OR invoice_number ILIKE '%' || $6 || '%')`
	args := []any{userID, status, clientID, filters.StartDate, filters.EndDate, filters.Search}

	var totalItems int64
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM invoices WHERE `+where, args...).Scan(&totalItems)
	if err != nil {
		return nil, err
	}

	orderBy, ok := invoiceSortColumns[filters.SortBy]
	if !ok {
		orderBy = "invoice_date"
	}
	direction := "ASC"
	if filters.SortDesc {
		direction = "DESC"
	}

	query := fmt.Sprintf(`SELECT %s FROM invoices WHERE %s ORDER BY %s %s, id LIMIT $7 OFFSET $8`,
		invoiceColumns, where, orderBy, direction)
	args = append(args, pageSize, (page-1)*pageSize)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var invoices []*domain.Invoice
	for rows.Next() {
		invoice, err := scanInvoice(rows)
		if err != nil {
			return nil, err
		}
		invoices = append(invoices, invoice)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	totalPages := int32(totalItems / int64(pageSize))
	if totalItems%int64(pageSize) > 0 {
		totalPages++
	}

	return &domain.PaginatedInvoices{
		Data:       invoices,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: totalPages,
	}, nil
}

// Update replaces an invoice's content and line items in one
// transaction. The invoice number and created_at are preserved.
func (r *InvoiceRepository) Update(userID uuid.UUID, id int32, invoice *domain.Invoice, items []*domain.InvoiceLineItem) (*domain.Invoice, error) {
	ctx := context.Background()

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	subtotal, taxAmount, totalAmount, breakup, err := invoiceMoneyParams(invoice)
	if err != nil {
		return nil, err
	}

	row := tx.QueryRow(ctx, `
		UPDATE invoices SET
			client_id = $3, invoice_date = $4, due_date = $5, status = $6,
			subtotal = $7, tax_amount = $8, total_amount = $9,
			cgst = $10, sgst = $11, igst = $12,
			notes = $13, terms_and_conditions = $14, updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+invoiceColumns,
		userID, id, invoice.ClientID, invoice.InvoiceDate, invoice.DueDate, string(invoice.Status),
		subtotal, taxAmount, totalAmount, breakup[0], breakup[1], breakup[2],
		stringPtrToPgText(invoice.Notes), stringPtrToPgText(invoice.TermsAndConditions))

	updated, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	if _, err := tx.Exec(ctx, `DELETE FROM invoice_line_items WHERE invoice_id = $1`, id); err != nil {
		return nil, err
	}
	updated.LineItems, err = insertLineItems(ctx, tx, id, items)
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return updated, nil
}

// Delete removes an invoice; line items cascade
func (r *InvoiceRepository) Delete(userID uuid.UUID, id int32) error {
	tag, err := r.pool.Exec(context.Background(), `
		DELETE FROM invoices WHERE user_id = $1 AND id = $2`, userID, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrInvoiceNotFound
	}
	return nil
}

// MarkPaid settles an invoice and records the payment details
func (r *InvoiceRepository) MarkPaid(userID uuid.UUID, id int32, payment domain.PaymentDetails) (*domain.Invoice, error) {
	ctx := context.Background()

	var method pgtype.Text
	if payment.PaymentMethod != nil {
		method = pgtype.Text{String: string(*payment.PaymentMethod), Valid: true}
	}

	row := r.pool.QueryRow(ctx, `
		UPDATE invoices SET
			status = $3, payment_date = $4, payment_method = $5, payment_reference = $6,
			updated_at = now()
		WHERE user_id = $1 AND id = $2
		RETURNING `+invoiceColumns,
		userID, id, string(domain.InvoiceStatusPaid), payment.PaymentDate,
		method, stringPtrToPgText(payment.PaymentReference))

	invoice, err := scanInvoice(row)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, domain.ErrInvoiceNotFound
		}
		return nil, err
	}

	invoice.LineItems, err = r.lineItemsFor(ctx, invoice.ID)
	if err != nil {
		return nil, err
	}
	return invoice, nil
}

// Stats returns the per-status invoice summary. Revenue counts paid
// invoices only; pending covers sent and overdue.
func (r *InvoiceRepository) Stats(userID uuid.UUID) (*domain.InvoiceStats, error) {
	var (
		stats                  domain.InvoiceStats
		revenue, pendingAmount pgtype.Numeric
	)
	err := r.pool.QueryRow(context.Background(), `
		SELECT COUNT(*),
			COUNT(*) FILTER (WHERE status = 'Draft'),
			COUNT(*) FILTER (WHERE status = 'Sent'),
			COUNT(*) FILTER (WHERE status = 'Paid'),
			COUNT(*) FILTER (WHERE status = 'Overdue'),
			COALESCE(SUM(total_amount) FILTER (WHERE status = 'Paid'), 0),
			COALESCE(SUM(total_amount) FILTER (WHERE status IN ('Sent', 'Overdue')), 0)
		FROM invoices WHERE user_id = $1`, userID).Scan(
		&stats.TotalInvoices, &stats.DraftInvoices, &stats.SentInvoices,
		&stats.PaidInvoices, &stats.OverdueInvoices, &revenue, &pendingAmount)
	if err != nil {
		return nil, err
	}
	stats.TotalRevenue = pgNumericToDecimal(revenue)
	stats.PendingAmount = pgNumericToDecimal(pendingAmount)
	return &stats, nil
}

// NextSequence atomically increments and returns the invoice sequence
// for (user, financial year). The upsert is a single statement, so
// concurrent callers always observe distinct values.
func (r *InvoiceRepository) NextSequence(userID uuid.UUID, financialYear int32) (int32, error) {
	var seq int32
	err := r.pool.QueryRow(context.Background(), `
		INSERT INTO invoice_counters (user_id, financial_year, seq)
		VALUES ($1, $2, 1)
		ON CONFLICT (user_id, financial_year) DO UPDATE SET seq = invoice_counters.seq + 1
		RETURNING seq`, userID, financialYear).Scan(&seq)
	if err != nil {
		return 0, err
	}
	return seq, nil
}

func insertLineItems(ctx context.Context, tx pgx.Tx, invoiceID int32, items []*domain.InvoiceLineItem) ([]*domain.InvoiceLineItem, error) {
	inserted := make([]*domain.InvoiceLineItem, 0, len(items))
	for _, item := range items {
		rate, err := decimalToPgNumeric(item.Rate)
		if err != nil {
			return nil, err
		}
		discount, err := decimalToPgNumeric(item.Discount)
		if err != nil {
			return nil, err
		}
		itemTotal, err := decimalToPgNumeric(item.ItemTotal)
		if err != nil {
			return nil, err
		}
		taxAmount, err := decimalToPgNumeric(item.TaxAmount)
		if err != nil {
			return nil, err
		}

		row := tx.QueryRow(ctx, `
			INSERT INTO invoice_line_items (invoice_id, item_name, description, quantity,
				rate, discount, gst_percentage, item_total, tax_amount)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
			RETURNING `+lineItemColumns,
			invoiceID, item.ItemName, stringPtrToPgText(item.Description), item.Quantity,
			rate, discount, item.GSTPercentage, itemTotal, taxAmount)

		created, err := scanLineItem(row)
		if err != nil {
			return nil, err
		}
		inserted = append(inserted, created)
	}
	return inserted, nil
}

// invoiceMoneyParams converts the invoice's money fields for binding
func invoiceMoneyParams(invoice *domain.Invoice) (subtotal, taxAmount, totalAmount pgtype.Numeric, breakup [3]pgtype.Numeric, err error) {
	if subtotal, err = decimalToPgNumeric(invoice.Subtotal); err != nil {
		return
	}
	if taxAmount, err = decimalToPgNumeric(invoice.TaxAmount); err != nil {
		return
	}
	if totalAmount, err = decimalToPgNumeric(invoice.TotalAmount); err != nil {
		return
	}
	if breakup[0], err = decimalToPgNumeric(invoice.TaxBreakup.CGST); err != nil {
		return
	}
	if breakup[1], err = decimalToPgNumeric(invoice.TaxBreakup.SGST); err != nil {
		return
	}
	breakup[2], err = decimalToPgNumeric(invoice.TaxBreakup.IGST)
	return
}

func scanInvoice(row pgx.Row) (*domain.Invoice, error) {
	var (
		invoice domain.Invoice
		status  string

		subtotal, taxAmount, totalAmount pgtype.Numeric
		cgst, sgst, igst                 pgtype.Numeric
		notes, terms, method, reference  pgtype.Text
		paymentDate                      pgtype.Timestamptz
	)
	err := row.Scan(&invoice.ID, &invoice.UserID, &invoice.InvoiceNumber, &invoice.ClientID,
		&invoice.InvoiceDate, &invoice.DueDate, &status,
		&subtotal, &taxAmount, &totalAmount, &cgst, &sgst, &igst,
		&notes, &terms, &paymentDate, &method, &reference,
		&invoice.CreatedAt, &invoice.UpdatedAt)
	if err != nil {
		return nil, err
	}

	invoice.Status = domain.InvoiceStatus(status)
	invoice.Subtotal = pgNumericToDecimal(subtotal)
	invoice.TaxAmount = pgNumericToDecimal(taxAmount)
	invoice.TotalAmount = pgNumericToDecimal(totalAmount)
	invoice.TaxBreakup = domain.TaxBreakup{
		CGST: pgNumericToDecimal(cgst),
		SGST: pgNumericToDecimal(sgst),
		IGST: pgNumericToDecimal(igst),
	}
	invoice.Notes = pgTextToStringPtr(notes)
	invoice.TermsAndConditions = pgTextToStringPtr(terms)
	if paymentDate.Valid {
		t := paymentDate.Time
		invoice.PaymentDate = &t
	}
	if method.Valid {
		m := domain.PaymentMethod(method.String)
		invoice.PaymentMethod = &m
	}
	invoice.PaymentReference = pgTextToStringPtr(reference)
	return &invoice, nil
}

func scanLineItem(row pgx.Row) (*domain.InvoiceLineItem, error) {
	var (
		item        domain.InvoiceLineItem
		description pgtype.Text

		rate, discount, itemTotal, taxAmount pgtype.Numeric
	)
	err := row.Scan(&item.ID, &item.InvoiceID, &item.ItemName, &description,
		&item.Quantity, &rate, &discount, &item.GSTPercentage,
		&itemTotal, &taxAmount, &item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	item.Description = pgTextToStringPtr(description)
	item.Rate = pgNumericToDecimal(rate)
	item.Discount = pgNumericToDecimal(discount)
	item.ItemTotal = pgNumericToDecimal(itemTotal)
	item.TaxAmount = pgNumericToDecimal(taxAmount)
	return &item, nil
}
