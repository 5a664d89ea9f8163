package service

import (
	"strings"

	"github.com/google/uuid"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// BusinessProfileService handles the seller-side business profile
type BusinessProfileService struct {
	profileRepo domain.BusinessProfileRepository
	gstService  *GSTService
}

// NewBusinessProfileService creates a new BusinessProfileService
func NewBusinessProfileService(profileRepo domain.BusinessProfileRepository, gstService *GSTService) *BusinessProfileService {
	return &BusinessProfileService{
		profileRepo: profileRepo,
		gstService:  gstService,
	}
}

// BusinessProfileInput holds the input for creating or updating a profile
type BusinessProfileInput struct {
	BusinessName       string
	BusinessType       domain.BusinessType
	GSTIN              *string
	PAN                *string
	Address            domain.Address
	Phone              *string
	Email              *string
	BankDetails        *domain.BankDetails
	Website            *string
	TermsAndConditions *string
}

// GetProfile retrieves the user's business profile
func (s *BusinessProfileService) GetProfile(userID uuid.UUID) (*domain.BusinessProfile, error) {
	return s.profileRepo.GetByUser(userID)
}

// UpsertProfile creates or replaces the user's business profile. Each
// user has exactly one profile; repeated saves overwrite it.
func (s *BusinessProfileService) UpsertProfile(userID uuid.UUID, input BusinessProfileInput) (*domain.BusinessProfile, error) {
	name := strings.TrimSpace(input.BusinessName)
	if name == "" {
		return nil, domain.ErrNameRequired
	}
	if len(name) > domain.MaxClientNameLength {
		return nil, domain.ErrNameTooLong
	}

	if input.BusinessType != domain.BusinessTypeFreelancer && input.BusinessType != domain.BusinessTypeSME {
		return nil, domain.ErrInvalidBusinessType
	}

	state := strings.TrimSpace(input.Address.State)
	if state == "" {
		return nil, domain.ErrStateRequired
	}
	input.Address.State = state

	if input.GSTIN != nil {
		trimmed := strings.ToUpper(strings.TrimSpace(*input.GSTIN))
		if trimmed == "" {
			input.GSTIN = nil
		} else {
			if !s.gstService.ValidateGSTIN(trimmed) {
				return nil, domain.ErrInvalidGSTIN
			}
			input.GSTIN = &trimmed
		}
	}

	if input.PAN != nil {
		trimmed := strings.ToUpper(strings.TrimSpace(*input.PAN))
		if trimmed == "" {
			input.PAN = nil
		} else {
			if !s.gstService.ValidatePAN(trimmed) {
				return nil, domain.ErrInvalidPAN
			}
			input.PAN = &trimmed
		}
	}

	terms := domain.DefaultTerms
	if input.TermsAndConditions != nil && strings.TrimSpace(*input.TermsAndConditions) != "" {
		terms = strings.TrimSpace(*input.TermsAndConditions)
		if len(terms) > domain.MaxTermsLength {
			return nil, domain.ErrNotesTooLong
		}
	}

	return s.profileRepo.Upsert(&domain.BusinessProfile{
		UserID:             userID,
		BusinessName:       name,
		BusinessType:       input.BusinessType,
		GSTIN:              input.GSTIN,
		PAN:                input.PAN,
		Address:            input.Address,
		Phone:              input.Phone,
		Email:              input.Email,
		BankDetails:        input.BankDetails,
		Website:            input.Website,
		TermsAndConditions: terms,
	})
}

// SetLogo stores the uploaded logo path on the profile
func (s *BusinessProfileService) SetLogo(userID uuid.UUID, logoPath string) (*domain.BusinessProfile, error) {
	profile, err := s.profileRepo.GetByUser(userID)
	if err != nil {
		return nil, err
	}
	profile.LogoPath = &logoPath
	return s.profileRepo.Upsert(profile)
}
