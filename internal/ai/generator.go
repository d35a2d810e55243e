package ai

import (
	"context"

	"github.com/shopspring/decimal"
)

// ReceiptItem is a single line item read off a receipt. Line totals
// (quantity x price) are computed at render time and never stored.
type ReceiptItem struct {
	Name     string          `json:"name"`
	Quantity int             `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
}

// ReceiptData contains the structured fields extracted from a receipt image,
// including the model's authenticity assessment.
type ReceiptData struct {
	StoreName   string          `json:"storeName"`
	Date        string          `json:"date"` // YYYY-MM-DD
	TotalAmount decimal.Decimal `json:"totalAmount"`
	Currency    string          `json:"currency"`
	TrustScore  int             `json:"trustScore"` // 0-100
	FraudNotes  string          `json:"fraudNotes,omitempty"`
	Items       []ReceiptItem   `json:"items"`

	// OriginalImage holds the uploaded image, base64-encoded.
	OriginalImage string `json:"originalImage,omitempty"`

	// Degraded marks a fallback value substituted after a failed service
	// call. Clients never see it; the outward payload stays identical to
	// a genuine low-confidence result.
	Degraded bool `json:"-"`
}

// StoryInput carries the accumulated draft context used to generate an
// impact story.
type StoryInput struct {
	CampaignName     string
	Location         string
	BeneficiaryCount int
	Receipts         []ReceiptData
	PhotoCaptions    []string
	Notes            string
	Language         string
}

// Generator defines the five operations delegated to the generative model
// service. Implementations return errors; wrap with Fallback to get the
// never-fails behavior the wizard relies on.
type Generator interface {
	// ExtractReceipt reads store name, date, total, currency and line items
	// from a receipt image and assesses its authenticity.
	ExtractReceipt(ctx context.Context, image []byte, contentType string) (*ReceiptData, error)

	// CaptionPhoto describes a distribution scene in one sentence.
	CaptionPhoto(ctx context.Context, image []byte, contentType string) (string, error)

	// SummarizeVoice transcribes and condenses a spoken field report into a
	// professional paragraph.
	SummarizeVoice(ctx context.Context, audio []byte, mimeType string) (string, error)

	// GenerateStory synthesizes a ~150-word narrative from the draft context.
	GenerateStory(ctx context.Context, input StoryInput) (string, error)

	// TranslateStory re-renders narrative text in a different language.
	TranslateStory(ctx context.Context, text string, language string) (string, error)

	// Close releases any resources held by the generator.
	Close() error
}
