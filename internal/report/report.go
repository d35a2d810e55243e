package report

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/amanahlabs/amanah-reports/internal/ai"
)

// Report status values. A report is created as a draft and may later be
// published to donors.
const (
	StatusDraft     = "draft"
	StatusPublished = "published"
)

// SupportedLanguages is the fixed set of report languages.
var SupportedLanguages = []string{
	"English", "Indonesian", "Arabic", "Spanish", "French",
	"German", "Turkish", "Urdu", "Hindi", "Bengali",
	"Chinese", "Japanese", "Russian", "Swahili", "Portuguese",
}

// SupportedCurrencies is the fixed set of currency codes.
var SupportedCurrencies = []string{"USD", "EUR", "GBP", "IDR", "SAR", "AED", "TRY", "MYR"}

// IsSupportedLanguage reports whether lang is in the fixed language set.
func IsSupportedLanguage(lang string) bool {
	for _, l := range SupportedLanguages {
		if l == lang {
			return true
		}
	}
	return false
}

// IsSupportedCurrency reports whether code is in the fixed currency set.
func IsSupportedCurrency(code string) bool {
	for _, c := range SupportedCurrencies {
		if c == code {
			return true
		}
	}
	return false
}

// LatLng is a GPS coordinate pair in decimal degrees.
type LatLng struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// DistributionPhoto is field evidence of a distribution event. Image holds
// a data URI (or an external URL for seeded demo content). The timestamp is
// set at capture time, never derived by the model.
type DistributionPhoto struct {
	Image       string    `json:"image"`
	ContentType string    `json:"contentType,omitempty"`
	Caption     string    `json:"caption"`
	Timestamp   time.Time `json:"timestamp"`
}

// ImpactReport is a finalized, shareable report. Story and Language are the
// only fields ever mutated after creation, via translation.
type ImpactReport struct {
	ID               string              `json:"id"`
	CampaignName     string              `json:"campaignName"`
	Location         string              `json:"location"`
	Coordinates      *LatLng             `json:"coordinates,omitempty"`
	BeneficiaryCount int                 `json:"beneficiaryCount"`
	Date             string              `json:"date"` // YYYY-MM-DD, set at finalization
	TotalSpend       decimal.Decimal     `json:"totalSpend"`
	Currency         string              `json:"currency"`
	Receipts         []ai.ReceiptData    `json:"receipts"`
	Photos           []DistributionPhoto `json:"photos"`
	Story            string              `json:"story"`
	Status           string              `json:"status"`
	Language         string              `json:"language"`
}

// Draft is the wizard working state for one not-yet-finalized report.
type Draft struct {
	CampaignName     string              `json:"campaignName"`
	Location         string              `json:"location"`
	Coordinates      *LatLng             `json:"coordinates,omitempty"`
	BeneficiaryCount int                 `json:"beneficiaryCount"`
	Receipts         []ai.ReceiptData    `json:"receipts"`
	Photos           []DistributionPhoto `json:"photos"`
	Language         string              `json:"language"`
	Currency         string              `json:"currency"`
	VoiceNote        string              `json:"voiceNote"`
}

// NewDraft returns an empty draft with default language and currency.
func NewDraft() Draft {
	return Draft{
		Receipts: []ai.ReceiptData{},
		Photos:   []DistributionPhoto{},
		Language: "English",
		Currency: "USD",
	}
}
