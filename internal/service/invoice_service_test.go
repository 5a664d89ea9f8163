package service

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
	"github.com/trubalance/trubalance-backend/internal/testutil"
)

type invoiceFixture struct {
	svc         *InvoiceService
	invoiceRepo *testutil.MockInvoiceRepository
	clientRepo  *testutil.MockClientRepository
	profileRepo *testutil.MockBusinessProfileRepository
	userID      uuid.UUID
	clientID    int32
}

func newInvoiceFixture(t *testing.T, clientState string) *invoiceFixture {
	t.Helper()

	invoiceRepo := testutil.NewMockInvoiceRepository()
	clientRepo := testutil.NewMockClientRepository()
	profileRepo := testutil.NewMockBusinessProfileRepository()
	gstService := NewGSTService()
	numberService := NewInvoiceNumberService(invoiceRepo)

	userID := uuid.New()

	client, err := clientRepo.Create(&domain.Client{
		UserID:     userID,
		ClientName: "Acme Traders",
		Address:    domain.Address{State: clientState},
	})
	if err != nil {
		t.Fatalf("failed to seed client: %v", err)
	}

	if _, err := profileRepo.Upsert(&domain.BusinessProfile{
		UserID:             userID,
		BusinessName:       "Studio Mango",
		BusinessType:       domain.BusinessTypeFreelancer,
		Address:            domain.Address{State: "Karnataka"},
		TermsAndConditions: domain.DefaultTerms,
	}); err != nil {
		t.Fatalf("failed to seed profile: %v", err)
	}

	return &invoiceFixture{
		svc:         NewInvoiceService(invoiceRepo, clientRepo, profileRepo, gstService, numberService),
		invoiceRepo: invoiceRepo,
		clientRepo:  clientRepo,
		profileRepo: profileRepo,
		userID:      userID,
		clientID:    client.ID,
	}
}

func makeDate(year int, month time.Month, day int) *time.Time {
	d := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return &d
}

func TestCreateInvoice_IntraState(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	invoice, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:    f.clientID,
		InvoiceDate: makeDate(2025, time.July, 1),
		LineItems: []LineItemInput{
			{ItemName: "Design work", Quantity: 2, Rate: decimal.NewFromInt(500), GSTPercentage: 18},
			{ItemName: "Hosting", Quantity: 1, Rate: decimal.NewFromInt(1000), Discount: decimal.NewFromInt(100), GSTPercentage: 5},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if invoice.InvoiceNumber != "INV-2025-0001" {
		t.Errorf("expected INV-2025-0001, got %s", invoice.InvoiceNumber)
	}
	if !invoice.Subtotal.Equal(decimal.NewFromInt(1900)) {
		t.Errorf("expected subtotal 1900, got %s", invoice.Subtotal.String())
	}
	if !invoice.TaxAmount.Equal(decimal.NewFromInt(225)) {
		t.Errorf("expected tax 225, got %s", invoice.TaxAmount.String())
	}
	if !invoice.TotalAmount.Equal(decimal.NewFromInt(2125)) {
		t.Errorf("expected total 2125, got %s", invoice.TotalAmount.String())
	}

	// Same state: tax splits into CGST and SGST, no IGST.
	if !invoice.TaxBreakup.IGST.IsZero() {
		t.Errorf("expected no IGST intra-state, got %s", invoice.TaxBreakup.IGST.String())
	}
	if !invoice.TaxBreakup.CGST.Equal(invoice.TaxBreakup.SGST) {
		t.Errorf("expected CGST == SGST, got %s/%s", invoice.TaxBreakup.CGST.String(), invoice.TaxBreakup.SGST.String())
	}
	if !invoice.TaxBreakup.CGST.Add(invoice.TaxBreakup.SGST).Equal(decimal.NewFromInt(225)) {
		t.Errorf("expected tax components to sum to 225, got %s", invoice.TaxBreakup.CGST.Add(invoice.TaxBreakup.SGST).String())
	}

	if invoice.Status != domain.InvoiceStatusDraft {
		t.Errorf("expected Draft default status, got %s", invoice.Status)
	}
	if invoice.TermsAndConditions == nil || *invoice.TermsAndConditions != domain.DefaultTerms {
		t.Error("expected profile terms to be applied")
	}
}

func TestCreateInvoice_InterState(t *testing.T) {
	f := newInvoiceFixture(t, "Maharashtra")

	invoice, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:    f.clientID,
		InvoiceDate: makeDate(2025, time.July, 1),
		LineItems: []LineItemInput{
			{ItemName: "Consulting", Quantity: 1, Rate: decimal.NewFromInt(1000), GSTPercentage: 18},
		},
	})
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}

	if !invoice.TaxBreakup.CGST.IsZero() || !invoice.TaxBreakup.SGST.IsZero() {
		t.Error("expected no CGST/SGST inter-state")
	}
	if !invoice.TaxBreakup.IGST.Equal(decimal.NewFromInt(180)) {
		t.Errorf("expected IGST 180, got %s", invoice.TaxBreakup.IGST.String())
	}
}

func TestCreateInvoice_SequentialNumbers(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	input := InvoiceInput{
		ClientID:    f.clientID,
		InvoiceDate: makeDate(2025, time.July, 1),
		LineItems: []LineItemInput{
			{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18},
		},
	}

	first, err := f.svc.CreateInvoice(f.userID, input)
	if err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	second, err := f.svc.CreateInvoice(f.userID, input)
	if err != nil {
		t.Fatalf("second create failed: %v", err)
	}

	if first.InvoiceNumber != "INV-2025-0001" || second.InvoiceNumber != "INV-2025-0002" {
		t.Errorf("expected sequential numbers, got %s then %s", first.InvoiceNumber, second.InvoiceNumber)
	}
}

func TestCreateInvoice_Validation(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	// No line items.
	_, err := f.svc.CreateInvoice(f.userID, InvoiceInput{ClientID: f.clientID})
	if !errors.Is(err, domain.ErrInvoiceNoLineItems) {
		t.Errorf("expected ErrInvoiceNoLineItems, got: %v", err)
	}

	// Unknown client.
	_, err = f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  999,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if !errors.Is(err, domain.ErrClientNotFound) {
		t.Errorf("expected ErrClientNotFound, got: %v", err)
	}

	// Due date before invoice date.
	_, err = f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:    f.clientID,
		InvoiceDate: makeDate(2025, time.July, 10),
		DueDate:     makeDate(2025, time.July, 1),
		LineItems:   []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if !errors.Is(err, domain.ErrInvalidInvoiceDateRange) {
		t.Errorf("expected ErrInvalidInvoiceDateRange, got: %v", err)
	}

	// Invalid GST rate on a line.
	_, err = f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 15}},
	})
	if !errors.Is(err, domain.ErrInvalidGSTRate) {
		t.Errorf("expected ErrInvalidGSTRate, got: %v", err)
	}
}

func TestCreateInvoice_RequiresBusinessProfile(t *testing.T) {
	invoiceRepo := testutil.NewMockInvoiceRepository()
	clientRepo := testutil.NewMockClientRepository()
	profileRepo := testutil.NewMockBusinessProfileRepository()
	svc := NewInvoiceService(invoiceRepo, clientRepo, profileRepo, NewGSTService(), NewInvoiceNumberService(invoiceRepo))

	userID := uuid.New()
	client, _ := clientRepo.Create(&domain.Client{
		UserID:     userID,
		ClientName: "Acme",
		Address:    domain.Address{State: "Kerala"},
	})

	_, err := svc.CreateInvoice(userID, InvoiceInput{
		ClientID:  client.ID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if !errors.Is(err, domain.ErrBusinessProfileRequired) {
		t.Errorf("expected ErrBusinessProfileRequired, got: %v", err)
	}
}

func TestUpdateInvoice_RecomputesTotals(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	created, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:    f.clientID,
		InvoiceDate: makeDate(2025, time.July, 1),
		LineItems:   []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	updated, err := f.svc.UpdateInvoice(f.userID, created.ID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Bigger job", Quantity: 3, Rate: decimal.NewFromInt(1000), GSTPercentage: 18}},
	})
	if err != nil {
		t.Fatalf("update failed: %v", err)
	}

	if updated.InvoiceNumber != created.InvoiceNumber {
		t.Errorf("invoice number must not change on update: %s vs %s", updated.InvoiceNumber, created.InvoiceNumber)
	}
	if !updated.Subtotal.Equal(decimal.NewFromInt(3000)) {
		t.Errorf("expected subtotal 3000, got %s", updated.Subtotal.String())
	}
	if !updated.TaxAmount.Equal(decimal.NewFromInt(540)) {
		t.Errorf("expected tax 540, got %s", updated.TaxAmount.String())
	}
}

func TestDeleteInvoice_RefusesPaid(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	created, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	method := domain.PaymentMethodUPI
	if _, err := f.svc.MarkPaid(f.userID, created.ID, MarkPaidInput{PaymentMethod: &method}); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if err := f.svc.DeleteInvoice(f.userID, created.ID); !errors.Is(err, domain.ErrInvoicePaid) {
		t.Errorf("expected ErrInvoicePaid, got: %v", err)
	}
	if _, err := f.svc.UpdateInvoice(f.userID, created.ID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	}); !errors.Is(err, domain.ErrInvoicePaid) {
		t.Errorf("expected ErrInvoicePaid on update, got: %v", err)
	}
}

func TestMarkPaid(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	created, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	})
	if err != nil {
		t.Fatalf("create failed: %v", err)
	}

	method := domain.PaymentMethodBankTransfer
	reference := "NEFT-12345"
	paid, err := f.svc.MarkPaid(f.userID, created.ID, MarkPaidInput{
		PaymentDate:      makeDate(2025, time.August, 1),
		PaymentMethod:    &method,
		PaymentReference: &reference,
	})
	if err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	if paid.Status != domain.InvoiceStatusPaid {
		t.Errorf("expected Paid status, got %s", paid.Status)
	}
	if paid.PaymentDate == nil || !paid.PaymentDate.Equal(*makeDate(2025, time.August, 1)) {
		t.Error("expected payment date to be recorded")
	}
	if paid.PaymentMethod == nil || *paid.PaymentMethod != domain.PaymentMethodBankTransfer {
		t.Error("expected payment method to be recorded")
	}
	if paid.PaymentReference == nil || *paid.PaymentReference != reference {
		t.Error("expected payment reference to be recorded")
	}
}

func TestMarkPaid_InvalidMethod(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")
	bad := domain.PaymentMethod("Barter")

	_, err := f.svc.MarkPaid(f.userID, 1, MarkPaidInput{PaymentMethod: &bad})
	if !errors.Is(err, domain.ErrInvalidPaymentMethod) {
		t.Errorf("expected ErrInvalidPaymentMethod, got: %v", err)
	}
}

func TestGetInvoices_FiltersAndPagination(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	sent := domain.InvoiceStatusSent
	for i := 0; i < 15; i++ {
		input := InvoiceInput{
			ClientID:    f.clientID,
			InvoiceDate: makeDate(2025, time.July, 1+i),
			LineItems:   []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
		}
		if i%3 == 0 {
			input.Status = &sent
		}
		if _, err := f.svc.CreateInvoice(f.userID, input); err != nil {
			t.Fatalf("create %d failed: %v", i, err)
		}
	}

	// Default page size is 10.
	page, err := f.svc.GetInvoices(f.userID, &domain.InvoiceFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(page.Data) != 10 || page.TotalItems != 15 || page.TotalPages != 2 {
		t.Errorf("unexpected pagination: %d items on page, %d total, %d pages", len(page.Data), page.TotalItems, page.TotalPages)
	}

	// Status filter.
	page, err = f.svc.GetInvoices(f.userID, &domain.InvoiceFilters{Status: &sent})
	if err != nil {
		t.Fatalf("filtered list failed: %v", err)
	}
	if page.TotalItems != 5 {
		t.Errorf("expected 5 sent invoices, got %d", page.TotalItems)
	}

	// Search by invoice number fragment.
	page, err = f.svc.GetInvoices(f.userID, &domain.InvoiceFilters{Search: "0003"})
	if err != nil {
		t.Fatalf("search failed: %v", err)
	}
	if page.TotalItems != 1 {
		t.Errorf("expected 1 match for number search, got %d", page.TotalItems)
	}
}

func TestGetInvoices_UserIsolation(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	if _, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 18}},
	}); err != nil {
		t.Fatalf("create failed: %v", err)
	}

	page, err := f.svc.GetInvoices(uuid.New(), &domain.InvoiceFilters{})
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if page.TotalItems != 0 {
		t.Errorf("expected other users to see no invoices, got %d", page.TotalItems)
	}
}

func TestInvoiceStats(t *testing.T) {
	f := newInvoiceFixture(t, "Karnataka")

	sent := domain.InvoiceStatusSent
	draft, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(100), GSTPercentage: 0}},
	})
	if err != nil {
		t.Fatalf("create draft failed: %v", err)
	}
	_ = draft

	sentInvoice, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		Status:    &sent,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(500), GSTPercentage: 0}},
	})
	if err != nil {
		t.Fatalf("create sent failed: %v", err)
	}

	paidInvoice, err := f.svc.CreateInvoice(f.userID, InvoiceInput{
		ClientID:  f.clientID,
		LineItems: []LineItemInput{{ItemName: "Work", Quantity: 1, Rate: decimal.NewFromInt(1000), GSTPercentage: 0}},
	})
	if err != nil {
		t.Fatalf("create for payment failed: %v", err)
	}
	if _, err := f.svc.MarkPaid(f.userID, paidInvoice.ID, MarkPaidInput{}); err != nil {
		t.Fatalf("mark paid failed: %v", err)
	}

	stats, err := f.svc.GetStats(f.userID)
	if err != nil {
		t.Fatalf("stats failed: %v", err)
	}

	if stats.TotalInvoices != 3 || stats.DraftInvoices != 1 || stats.SentInvoices != 1 || stats.PaidInvoices != 1 {
		t.Errorf("unexpected counts: %+v", stats)
	}
	if !stats.TotalRevenue.Equal(decimal.NewFromInt(1000)) {
		t.Errorf("expected revenue 1000 (paid only), got %s", stats.TotalRevenue.String())
	}
	if !stats.PendingAmount.Equal(sentInvoice.TotalAmount) {
		t.Errorf("expected pending %s, got %s", sentInvoice.TotalAmount.String(), stats.PendingAmount.String())
	}
}
