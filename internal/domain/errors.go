package domain

import "errors"

// Domain errors
var (
	ErrNotFound       = errors.New("resource not found")
	ErrAlreadyExists  = errors.New("resource already exists")
	ErrInvalidInput   = errors.New("invalid input")
	ErrUnauthorized   = errors.New("unauthorized")
	ErrForbidden      = errors.New("forbidden")
	ErrInternalError  = errors.New("internal error")
	ErrUserNotFound   = errors.New("user not found")
	ErrEmailTaken     = errors.New("email is already registered")
	ErrBadCredentials = errors.New("invalid email or password")

	ErrNameRequired = errors.New("name is required")
	ErrNameTooLong  = errors.New("name exceeds maximum length")
	ErrTitleTooLong = errors.New("title exceeds maximum length")
	ErrNotesTooLong = errors.New("notes exceed maximum length")

	ErrClientNotFound          = errors.New("client not found")
	ErrClientStateRequired     = errors.New("client state is required for GST calculation")
	ErrBusinessProfileNotFound = errors.New("business profile not found")
	ErrBusinessProfileRequired = errors.New("business profile must be set up before invoicing")
	ErrInvalidGSTIN            = errors.New("invalid GSTIN format")
	ErrInvalidPAN              = errors.New("invalid PAN format")
	ErrInvalidBusinessType     = errors.New("business type must be Freelancer or SME")

	ErrIncomeNotFound  = errors.New("income not found")
	ErrExpenseNotFound = errors.New("expense not found")
	ErrInvalidAmount   = errors.New("amount must be greater than zero")
	ErrInvalidCategory = errors.New("invalid category")
	ErrInvalidTxType   = errors.New("transaction type must be income or expense")

	ErrBudgetNotFound     = errors.New("budget not found")
	ErrInvalidBudgetMonth = errors.New("month must be in YYYY-MM format")
	ErrInvalidIncome      = errors.New("monthly income must be greater than zero")

	ErrInvoiceNotFound         = errors.New("invoice not found")
	ErrInvoicePaid             = errors.New("paid invoices cannot be deleted")
	ErrInvoiceNoLineItems      = errors.New("invoice requires at least one line item")
	ErrInvalidGSTRate          = errors.New("GST rate must be 0%, 5%, 12%, 18%, or 28%")
	ErrStateRequired           = errors.New("seller and buyer states are required for GST calculation")
	ErrNegativeTaxableAmount   = errors.New("taxable amount cannot be negative")
	ErrInvalidLineItem         = errors.New("invalid line item")
	ErrInvalidInvoiceStatus    = errors.New("invalid invoice status")
	ErrInvalidPaymentMethod    = errors.New("invalid payment method")
	ErrMalformedInvoiceNumber  = errors.New("malformed invoice number")
	ErrDuplicateInvoiceNumber  = errors.New("invoice number already exists")
	ErrInvalidInvoiceDateRange = errors.New("due date cannot be before invoice date")
)

// Validation constants
const (
	MaxTitleLength       = 100
	MaxClientNameLength  = 200
	MaxContactNameLength = 100
	MaxItemNameLength    = 200
	MaxDescriptionLength = 500
	MaxVendorLength      = 100
	MaxNotesLength       = 1000
	MaxTermsLength       = 2000
	MaxClientNotesLength = 500
)
