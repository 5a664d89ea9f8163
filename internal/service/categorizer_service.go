package service

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/trubalance/trubalance-backend/internal/domain"
)

// Confidence levels for keyword matches. A whole-word hit is a strong
// signal, a substring hit a weak one.
const (
	confidenceExactWord = 100
	confidenceSubstring = 60
)

type keywordGroup struct {
	category string
	keywords []string
}

// Keyword tables are ordered so ties at equal confidence resolve the
// same way on every run.
var expenseKeywords = []keywordGroup{
	{string(domain.ExpenseCategoryFood), []string{
		"restaurant", "cafe", "coffee", "grocery", "food", "pizza", "burger",
		"starbucks", "mcdonald", "kfc", "subway", "domino", "market", "lunch",
		"dinner", "breakfast", "meal", "snack", "bakery", "deli", "buffet",
	}},
	{string(domain.ExpenseCategoryTransport), []string{
		"uber", "lyft", "taxi", "cab", "gas", "fuel", "metro", "bus", "train",
		"parking", "toll", "car", "vehicle", "auto", "bike", "scooter", "ola",
	}},
	{string(domain.ExpenseCategoryEntertainment), []string{
		"netflix", "spotify", "prime", "movie", "cinema", "theater", "concert",
		"game", "ps", "xbox", "steam", "youtube", "music", "show", "ticket",
		"event", "club", "bar", "pub",
	}},
	{string(domain.ExpenseCategoryBills), []string{
		"electric", "electricity", "water", "internet", "wifi", "phone", "mobile",
		"rent", "insurance", "loan", "credit", "utility", "gas", "heating", "cable",
	}},
	{string(domain.ExpenseCategoryShopping), []string{
		"amazon", "flipkart", "ebay", "mall", "store", "shop", "purchase", "buy",
		"clothing", "clothes", "fashion", "shoes", "accessories", "electronics",
	}},
	{string(domain.ExpenseCategoryHealth), []string{
		"pharmacy", "medicine", "doctor", "hospital", "clinic", "gym", "fitness",
		"medical", "health", "dental", "dentist", "therapy", "wellness", "yoga",
	}},
	{string(domain.ExpenseCategoryEducation), []string{
		"school", "college", "university", "course", "class", "tuition", "book",
		"study", "education", "training", "workshop", "seminar", "udemy", "coursera",
	}},
}

var incomeKeywords = []keywordGroup{
	{string(domain.IncomeCategorySalary), []string{
		"salary", "wage", "paycheck", "payment", "pay", "income", "employer", "work",
	}},
	{string(domain.IncomeCategoryFreelance), []string{
		"freelance", "upwork", "fiverr", "contract", "gig", "project", "client",
	}},
	{string(domain.IncomeCategoryInvestments), []string{
		"dividend", "interest", "stock", "mutual fund", "investment", "return",
		"profit", "capital gain",
	}},
	{string(domain.IncomeCategoryBusiness), []string{
		"business", "revenue", "sales", "profit", "commission", "shop", "store",
	}},
	{string(domain.IncomeCategoryGifts), []string{
		"gift", "bonus", "reward", "prize", "award",
	}},
}

// wordPatterns caches one whole-word regex per keyword.
var wordPatterns = buildWordPatterns(expenseKeywords, incomeKeywords)

func buildWordPatterns(groups ...[]keywordGroup) map[string]*regexp.Regexp {
	patterns := make(map[string]*regexp.Regexp)
	for _, table := range groups {
		for _, group := range table {
			for _, keyword := range group.keywords {
				if _, ok := patterns[keyword]; ok {
					continue
				}
				patterns[keyword] = regexp.MustCompile(`\b` + regexp.QuoteMeta(keyword) + `\b`)
			}
		}
	}
	return patterns
}

// Categorization is a suggested category with a confidence score from 0
// to 100.
type Categorization struct {
	Category   string `json:"category"`
	Confidence int    `json:"confidence"`
}

type TransactionKind string

const (
	TransactionKindExpense TransactionKind = "expense"
	TransactionKindIncome  TransactionKind = "income"
)

// CategorizerService suggests categories for transactions by keyword
// matching against their titles.
type CategorizerService struct {
	logger zerolog.Logger
}

// NewCategorizerService creates a new CategorizerService
func NewCategorizerService(logger zerolog.Logger) *CategorizerService {
	return &CategorizerService{logger: logger}
}

// Categorize matches title against the keyword table for the given kind
// and returns the best match. A whole-word hit scores 100, a substring
// hit 60; untitled or unmatched transactions fall back to Other with
// zero confidence.
func (s *CategorizerService) Categorize(title string, kind TransactionKind) Categorization {
	best := Categorization{Category: string(domain.ExpenseCategoryOther), Confidence: 0}
	if strings.TrimSpace(title) == "" {
		return best
	}

	normalized := strings.ToLower(strings.TrimSpace(title))
	table := expenseKeywords
	if kind == TransactionKindIncome {
		table = incomeKeywords
	}

	for _, group := range table {
		for _, keyword := range group.keywords {
			confidence := 0
			if wordPatterns[keyword].MatchString(normalized) {
				confidence = confidenceExactWord
			} else if strings.Contains(normalized, keyword) {
				confidence = confidenceSubstring
			}
			if confidence > best.Confidence {
				best = Categorization{Category: group.category, Confidence: confidence}
			}
		}
	}
	return best
}

// LearnFromCorrection records a user's category correction. Corrections
// are only logged for now; they become training data once per-user
// pattern storage lands.
// TODO: persist corrections so repeated fixes can bias future suggestions.
func (s *CategorizerService) LearnFromCorrection(userID uuid.UUID, title, correctCategory string, kind TransactionKind) {
	suggested := s.Categorize(title, kind)
	s.logger.Info().
		Str("userId", userID.String()).
		Str("title", title).
		Str("correctCategory", correctCategory).
		Str("suggestedCategory", suggested.Category).
		Str("kind", string(kind)).
		Msg("category correction recorded")
}
