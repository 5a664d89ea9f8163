package service

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// GSTService handles GST calculations and identifier validation for
// Indian invoicing.
type GSTService struct{}

// NewGSTService creates a new GSTService
func NewGSTService() *GSTService {
	return &GSTService{}
}

// GSTResult holds the tax split for a single taxable amount.
type GSTResult struct {
	CGST     decimal.Decimal `json:"cgst"`
	SGST     decimal.Decimal `json:"sgst"`
	IGST     decimal.Decimal `json:"igst"`
	TotalTax decimal.Decimal `json:"totalTax"`
}

var (
	gstinPattern = regexp.MustCompile(`^[0-9]{2}[A-Z]{5}[0-9]{4}[A-Z]{1}[1-9A-Z]{1}Z[0-9A-Z]{1}$`)
	panPattern   = regexp.MustCompile(`^[A-Z]{5}[0-9]{4}[A-Z]{1}$`)
)

var two = decimal.NewFromInt(2)
var hundred = decimal.NewFromInt(100)

// CalculateGST computes the CGST/SGST/IGST split for a taxable amount.
// An intra-state sale (seller and buyer in the same state, compared
// case-insensitively after trimming) splits the tax evenly between CGST
// and SGST; an inter-state sale charges IGST only. All amounts are
// rounded to 2 decimal places.
func (s *GSTService) CalculateGST(sellerState, buyerState string, amount decimal.Decimal, gstRate int32) (*GSTResult, error) {
	seller := strings.ToLower(strings.TrimSpace(sellerState))
	buyer := strings.ToLower(strings.TrimSpace(buyerState))
	if seller == "" || buyer == "" {
		return nil, domain.ErrStateRequired
	}
	if amount.IsNegative() {
		return nil, domain.ErrNegativeTaxableAmount
	}
	if !domain.ValidGSTRate(gstRate) {
		return nil, domain.ErrInvalidGSTRate
	}

	result := &GSTResult{
		CGST: decimal.Zero,
		SGST: decimal.Zero,
		IGST: decimal.Zero,
	}

	totalGST := amount.Mul(decimal.NewFromInt32(gstRate)).Div(hundred)
	if seller == buyer {
		half := totalGST.Div(two).Round(2)
		result.CGST = half
		result.SGST = half
	} else {
		result.IGST = totalGST.Round(2)
	}

	result.TotalTax = result.CGST.Add(result.SGST).Add(result.IGST)
	return result, nil
}

// ValidateGSTIN reports whether gstin matches the GSTIN format:
// 2-digit state code + 10-character PAN + entity digit + "Z" + check digit.
func (s *GSTService) ValidateGSTIN(gstin string) bool {
	if gstin == "" {
		return false
	}
	return gstinPattern.MatchString(strings.ToUpper(strings.TrimSpace(gstin)))
}

// ExtractStateCode returns the 2-digit state code prefix of a valid GSTIN.
func (s *GSTService) ExtractStateCode(gstin string) (string, error) {
	if !s.ValidateGSTIN(gstin) {
		return "", domain.ErrInvalidGSTIN
	}
	return strings.ToUpper(strings.TrimSpace(gstin))[:2], nil
}

// ValidatePAN reports whether pan matches the PAN format
// (5 letters + 4 digits + 1 letter).
func (s *GSTService) ValidatePAN(pan string) bool {
	if pan == "" {
		return false
	}
	return panPattern.MatchString(strings.ToUpper(strings.TrimSpace(pan)))
}

// stateCodeNames maps GSTIN state codes to state names.
var stateCodeNames = map[string]string{
	"01": "Jammu and Kashmir",
	"02": "Himachal Pradesh",
	"03": "Punjab",
	"04": "Chandigarh",
	"05": "Uttarakhand",
	"06": "Haryana",
	"07": "Delhi",
	"08": "Rajasthan",
	"09": "Uttar Pradesh",
	"10": "Bihar",
	"11": "Sikkim",
	"12": "Arunachal Pradesh",
	"13": "Nagaland",
	"14": "Manipur",
	"15": "Mizoram",
	"16": "Tripura",
	"17": "Meghalaya",
	"18": "Assam",
	"19": "West Bengal",
	"20": "Jharkhand",
	"21": "Odisha",
	"22": "Chhattisgarh",
	"23": "Madhya Pradesh",
	"24": "Gujarat",
	"25": "Daman and Diu",
	"26": "Dadra and Nagar Haveli",
	"27": "Maharashtra",
	"28": "Andhra Pradesh",
	"29": "Karnataka",
	"30": "Goa",
	"31": "Lakshadweep",
	"32": "Kerala",
	"33": "Tamil Nadu",
	"34": "Puducherry",
	"35": "Andaman and Nicobar Islands",
	"36": "Telangana",
	"37": "Andhra Pradesh",
	"38": "Ladakh",
}

// StateNameFromCode returns the state name for a 2-digit GSTIN state code,
// or "Unknown" for unrecognized codes.
func (s *GSTService) StateNameFromCode(code string) string {
	if name, ok := stateCodeNames[code]; ok {
		return name
	}
	return "Unknown"
}
