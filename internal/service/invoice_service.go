package service

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/websocket"
)

// InvoiceService handles GST invoice business logic
type InvoiceService struct {
	invoiceRepo    domain.InvoiceRepository
	clientRepo     domain.ClientRepository
	profileRepo    domain.BusinessProfileRepository
	gstService     *GSTService
	numberService  *InvoiceNumberService
	eventPublisher websocket.EventPublisher
}

// NewInvoiceService creates a new InvoiceService
func NewInvoiceService(invoiceRepo domain.InvoiceRepository, clientRepo domain.ClientRepository, profileRepo domain.BusinessProfileRepository, gstService *GSTService, numberService *InvoiceNumberService) *InvoiceService {
	return &InvoiceService{
		invoiceRepo:   invoiceRepo,
		clientRepo:    clientRepo,
		profileRepo:   profileRepo,
		gstService:    gstService,
		numberService: numberService,
	}
}

// SetEventPublisher sets the WebSocket event publisher
func (s *InvoiceService) SetEventPublisher(publisher websocket.EventPublisher) {
	s.eventPublisher = publisher
}

func (s *InvoiceService) publishEvent(userID uuid.UUID, event websocket.Event) {
	if s.eventPublisher != nil {
		s.eventPublisher.Publish(userID, event)
	}
}

// LineItemInput holds one billable row of an invoice request
type LineItemInput struct {
	ItemName      string
	Description   *string
	Quantity      int32
	Rate          decimal.Decimal
	Discount      decimal.Decimal
	GSTPercentage int32
}

// InvoiceInput holds the input for creating or updating an invoice
type InvoiceInput struct {
	ClientID           int32
	InvoiceDate        *time.Time
	DueDate            *time.Time
	Status             *domain.InvoiceStatus
	LineItems          []LineItemInput
	Notes              *string
	TermsAndConditions *string
}

// buildLineItems validates and computes totals for every row
func buildLineItems(inputs []LineItemInput) ([]*domain.InvoiceLineItem, error) {
	if len(inputs) == 0 {
		return nil, domain.ErrInvoiceNoLineItems
	}

	items := make([]*domain.InvoiceLineItem, 0, len(inputs))
	for _, input := range inputs {
		name := strings.TrimSpace(input.ItemName)
		if name == "" {
			return nil, domain.ErrInvalidLineItem
		}
		if len(name) > domain.MaxItemNameLength {
			return nil, domain.ErrNameTooLong
		}
		if input.Description != nil && len(*input.Description) > domain.MaxDescriptionLength {
			return nil, domain.ErrNotesTooLong
		}

		item := &domain.InvoiceLineItem{
			ItemName:      name,
			Description:   input.Description,
			Quantity:      input.Quantity,
			Rate:          input.Rate,
			Discount:      input.Discount,
			GSTPercentage: input.GSTPercentage,
		}
		if err := item.ComputeTotals(); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, nil
}

// taxBreakup splits each line's GST between CGST/SGST and IGST based on
// the seller and buyer states and sums the components.
func (s *InvoiceService) taxBreakup(sellerState, buyerState string, items []*domain.InvoiceLineItem) (domain.TaxBreakup, error) {
	breakup := domain.TaxBreakup{
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: decimal.Zero,
	}
	for _, item := range items {
		result, err := s.gstService.CalculateGST(sellerState, buyerState, item.ItemTotal, item.GSTPercentage)
		if err != nil {
			return breakup, err
		}
		breakup.CGST = breakup.CGST.Add(result.CGST)
		breakup.SGST = breakup.SGST.Add(result.SGST)
		breakup.IGST = breakup.IGST.Add(result.IGST)
	}
	return breakup, nil
}

// CreateInvoice creates a new invoice. The client and business profile
// must exist; the invoice number is reserved atomically for the
// financial year of the invoice date.
func (s *InvoiceService) CreateInvoice(userID uuid.UUID, input InvoiceInput) (*domain.Invoice, error) {
	client, err := s.clientRepo.GetByID(userID, input.ClientID)
	if err != nil {
		return nil, err
	}

	profile, err := s.profileRepo.GetByUser(userID)
	if err != nil {
		return nil, domain.ErrBusinessProfileRequired
	}

	invoiceDate := time.Now()
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}
	dueDate := invoiceDate.AddDate(0, 0, 30)
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}
	if dueDate.Before(invoiceDate) {
		return nil, domain.ErrInvalidInvoiceDateRange
	}

	status := domain.InvoiceStatusDraft
	if input.Status != nil {
		if !domain.ValidInvoiceStatus(*input.Status) {
			return nil, domain.ErrInvalidInvoiceStatus
		}
		status = *input.Status
	}

	items, err := buildLineItems(input.LineItems)
	if err != nil {
		return nil, err
	}

	breakup, err := s.taxBreakup(profile.Address.State, client.Address.State, items)
	if err != nil {
		return nil, err
	}
	totals := domain.ComputeInvoiceTotals(items)

	number, err := s.numberService.Next(userID, invoiceDate)
	if err != nil {
		return nil, err
	}

	terms := profile.TermsAndConditions
	if input.TermsAndConditions != nil && strings.TrimSpace(*input.TermsAndConditions) != "" {
		terms = *input.TermsAndConditions
	}
	if len(terms) > domain.MaxTermsLength {
		return nil, domain.ErrNotesTooLong
	}
	if input.Notes != nil && len(*input.Notes) > domain.MaxNotesLength {
		return nil, domain.ErrNotesTooLong
	}

	invoice, err := s.invoiceRepo.Create(&domain.Invoice{
		UserID:             userID,
		InvoiceNumber:      number,
		ClientID:           client.ID,
		InvoiceDate:        invoiceDate,
		DueDate:            dueDate,
		Status:             status,
		Subtotal:           totals.Subtotal,
		TaxAmount:          totals.TaxAmount,
		TotalAmount:        totals.TotalAmount,
		TaxBreakup:         breakup,
		Notes:              input.Notes,
		TermsAndConditions: &terms,
	}, items)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceCreated(invoice))
	return invoice, nil
}

// GetInvoices lists invoices with filtering and pagination
func (s *InvoiceService) GetInvoices(userID uuid.UUID, filters *domain.InvoiceFilters) (*domain.PaginatedInvoices, error) {
	if filters == nil {
		filters = &domain.InvoiceFilters{}
	}
	if filters.Status != nil && !domain.ValidInvoiceStatus(*filters.Status) {
		return nil, domain.ErrInvalidInvoiceStatus
	}
	if filters.Page < 1 {
		filters.Page = 1
	}
	if filters.PageSize < 1 {
		filters.PageSize = domain.DefaultInvoicePageSize
	}
	if filters.PageSize > domain.MaxInvoicePageSize {
		filters.PageSize = domain.MaxInvoicePageSize
	}
	return s.invoiceRepo.GetByUser(userID, filters)
}

// GetInvoiceByID retrieves a single invoice with its line items
func (s *InvoiceService) GetInvoiceByID(userID uuid.UUID, id int32) (*domain.Invoice, error) {
	return s.invoiceRepo.GetByID(userID, id)
}

// UpdateInvoice replaces an invoice's content. The invoice number never
// changes; money fields are recomputed from the new line items.
func (s *InvoiceService) UpdateInvoice(userID uuid.UUID, id int32, input InvoiceInput) (*domain.Invoice, error) {
	existing, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return nil, err
	}
	if existing.Status == domain.InvoiceStatusPaid {
		return nil, domain.ErrInvoicePaid
	}

	client, err := s.clientRepo.GetByID(userID, input.ClientID)
	if err != nil {
		return nil, err
	}
	profile, err := s.profileRepo.GetByUser(userID)
	if err != nil {
		return nil, domain.ErrBusinessProfileRequired
	}

	invoiceDate := existing.InvoiceDate
	if input.InvoiceDate != nil {
		invoiceDate = *input.InvoiceDate
	}
	dueDate := existing.DueDate
	if input.DueDate != nil {
		dueDate = *input.DueDate
	}
	if dueDate.Before(invoiceDate) {
		return nil, domain.ErrInvalidInvoiceDateRange
	}

	status := existing.Status
	if input.Status != nil {
		if !domain.ValidInvoiceStatus(*input.Status) {
			return nil, domain.ErrInvalidInvoiceStatus
		}
		status = *input.Status
	}

	items, err := buildLineItems(input.LineItems)
	if err != nil {
		return nil, err
	}
	breakup, err := s.taxBreakup(profile.Address.State, client.Address.State, items)
	if err != nil {
		return nil, err
	}
	totals := domain.ComputeInvoiceTotals(items)

	terms := existing.TermsAndConditions
	if input.TermsAndConditions != nil {
		terms = input.TermsAndConditions
	}

	invoice, err := s.invoiceRepo.Update(userID, id, &domain.Invoice{
		ClientID:           client.ID,
		InvoiceDate:        invoiceDate,
		DueDate:            dueDate,
		Status:             status,
		Subtotal:           totals.Subtotal,
		TaxAmount:          totals.TaxAmount,
		TotalAmount:        totals.TotalAmount,
		TaxBreakup:         breakup,
		Notes:              input.Notes,
		TermsAndConditions: terms,
	}, items)
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoiceUpdated(invoice))
	return invoice, nil
}

// DeleteInvoice removes an invoice. Paid invoices are immutable records
// and cannot be deleted.
func (s *InvoiceService) DeleteInvoice(userID uuid.UUID, id int32) error {
	invoice, err := s.invoiceRepo.GetByID(userID, id)
	if err != nil {
		return err
	}
	if invoice.Status == domain.InvoiceStatusPaid {
		return domain.ErrInvoicePaid
	}

	if err := s.invoiceRepo.Delete(userID, id); err != nil {
		return err
	}
	s.publishEvent(userID, websocket.InvoiceDeleted(map[string]int32{"id": id}))
	return nil
}

// MarkPaidInput holds the payment details for settling an invoice
type MarkPaidInput struct {
	PaymentDate      *time.Time
	PaymentMethod    *domain.PaymentMethod
	PaymentReference *string
}

// MarkPaid settles an invoice and records how it was paid
func (s *InvoiceService) MarkPaid(userID uuid.UUID, id int32, input MarkPaidInput) (*domain.Invoice, error) {
	if input.PaymentMethod != nil && !domain.ValidPaymentMethod(*input.PaymentMethod) {
		return nil, domain.ErrInvalidPaymentMethod
	}

	paymentDate := time.Now()
	if input.PaymentDate != nil {
		paymentDate = *input.PaymentDate
	}

	invoice, err := s.invoiceRepo.MarkPaid(userID, id, domain.PaymentDetails{
		PaymentDate:      paymentDate,
		PaymentMethod:    input.PaymentMethod,
		PaymentReference: input.PaymentReference,
	})
	if err != nil {
		return nil, err
	}

	s.publishEvent(userID, websocket.InvoicePaid(invoice))
	return invoice, nil
}

// GetStats returns the per-status invoice summary
func (s *InvoiceService) GetStats(userID uuid.UUID) (*domain.InvoiceStats, error) {
	return s.invoiceRepo.Stats(userID)
}
