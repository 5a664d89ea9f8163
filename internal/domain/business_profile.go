package domain

import (
	"time"

	"github.com/google/uuid"
)

type BusinessType string

const (
	BusinessTypeFreelancer BusinessType = "Freelancer"
	BusinessTypeSME        BusinessType = "SME"
)

// DefaultTerms is applied to new profiles and to invoices that do not
// override their terms.
const DefaultTerms = "Payment is due within 30 days of invoice date. Late payments may incur additional charges."

type BankDetails struct {
	AccountNumber *string `json:"accountNumber,omitempty"`
	IFSC          *string `json:"ifsc,omitempty"`
	BankName      *string `json:"bankName,omitempty"`
	Branch        *string `json:"branch,omitempty"`
}

// BusinessProfile holds the seller-side identity used on invoices.
// One profile per user.
type BusinessProfile struct {
	ID                 int32        `json:"id"`
	UserID             uuid.UUID    `json:"userId"`
	BusinessName       string       `json:"businessName"`
	BusinessType       BusinessType `json:"businessType"`
	GSTIN              *string      `json:"gstin,omitempty"`
	PAN                *string      `json:"pan,omitempty"`
	Address            Address      `json:"address"`
	Phone              *string      `json:"phone,omitempty"`
	Email              *string      `json:"email,omitempty"`
	LogoPath           *string      `json:"logoPath,omitempty"`
	BankDetails        *BankDetails `json:"bankDetails,omitempty"`
	Website            *string      `json:"website,omitempty"`
	TermsAndConditions string       `json:"termsAndConditions"`
	CreatedAt          time.Time    `json:"createdAt"`
	UpdatedAt          time.Time    `json:"updatedAt"`
}

type BusinessProfileRepository interface {
	GetByUser(userID uuid.UUID) (*BusinessProfile, error)
	Upsert(profile *BusinessProfile) (*BusinessProfile, error)
}
