package report

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/amanahlabs/amanah-reports/internal/ai"
)

// Step is one of the three wizard stages. Transitions are explicit
// user-triggered continue/back actions; nothing advances automatically.
type Step int

const (
	StepReceipts Step = iota + 1
	StepPhotos
	StepDetails
)

// gpsSuffix is appended to the location text when coordinates are attached.
const gpsSuffix = " (GPS Verified)"

// ErrBusy is returned when an AI-backed operation is already in flight.
// The UI disables upload controls while busy; this is the server-side
// equivalent of the original's single processing flag.
var ErrBusy = errors.New("another operation is still processing")

// ErrIncomplete gates finalization on the two required fields.
var ErrIncomplete = errors.New("campaign name and location are required")

// IDGenerator generates unique IDs for reports.
type IDGenerator interface {
	Generate() string
}

// TimeSource provides the current time.
type TimeSource interface {
	Now() time.Time
}

type uuidGenerator struct{}

func (g *uuidGenerator) Generate() string {
	return uuid.NewString()
}

type defaultTimeSource struct{}

func (t *defaultTimeSource) Now() time.Time {
	return time.Now()
}

// Wizard drives the three-step report flow and owns the single active
// draft. All AI calls go through the injected Generator; wrap it with
// ai.Fallback so failures degrade to defaults instead of surfacing.
type Wizard struct {
	gen   ai.Generator
	store *Store
	ids   IDGenerator
	clock TimeSource

	busy atomic.Bool

	mu         sync.Mutex
	draft      Draft
	step       Step
	selectedID string
}

// NewWizard creates a Wizard with default ID generator and time source.
func NewWizard(gen ai.Generator, store *Store) *Wizard {
	return NewWizardWithDeps(gen, store, &uuidGenerator{}, &defaultTimeSource{})
}

// NewWizardWithDeps creates a Wizard with custom dependencies for testing.
func NewWizardWithDeps(gen ai.Generator, store *Store, ids IDGenerator, clock TimeSource) *Wizard {
	return &Wizard{
		gen:   gen,
		store: store,
		ids:   ids,
		clock: clock,
		draft: NewDraft(),
		step:  StepReceipts,
	}
}

// acquire claims the single in-flight slot. A second upload while one is
// processing is rejected rather than queued.
func (w *Wizard) acquire() error {
	if !w.busy.CompareAndSwap(false, true) {
		return ErrBusy
	}
	return nil
}

func (w *Wizard) release() {
	w.busy.Store(false)
}

// Busy reports whether an AI-backed operation is in flight.
func (w *Wizard) Busy() bool {
	return w.busy.Load()
}

// AddReceipt extracts structured data from a receipt image and appends it
// to the draft. The first receipt's detected currency becomes the draft
// currency; later receipts never change it.
func (w *Wizard) AddReceipt(ctx context.Context, image []byte, contentType string) (*ai.ReceiptData, error) {
	if err := w.acquire(); err != nil {
		return nil, err
	}
	defer w.release()

	data, err := w.gen.ExtractReceipt(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("extracting receipt: %w", err)
	}
	data.OriginalImage = base64.StdEncoding.EncodeToString(image)

	w.mu.Lock()
	defer w.mu.Unlock()
	if len(w.draft.Receipts) == 0 && data.Currency != "" {
		w.draft.Currency = data.Currency
	}
	w.draft.Receipts = append(w.draft.Receipts, *data)
	return data, nil
}

// AddPhoto captions a distribution photo and appends it to the draft,
// stamped with the current instant.
func (w *Wizard) AddPhoto(ctx context.Context, image []byte, contentType string) (*DistributionPhoto, error) {
	if err := w.acquire(); err != nil {
		return nil, err
	}
	defer w.release()

	caption, err := w.gen.CaptionPhoto(ctx, image, contentType)
	if err != nil {
		return nil, fmt.Errorf("captioning photo: %w", err)
	}

	photo := DistributionPhoto{
		Image:       fmt.Sprintf("data:%s;base64,%s", contentType, base64.StdEncoding.EncodeToString(image)),
		ContentType: contentType,
		Caption:     caption,
		Timestamp:   w.clock.Now(),
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Photos = append(w.draft.Photos, photo)
	return &photo, nil
}

// AddVoiceNote summarizes a recorded voice note. A repeat capture replaces
// the previous transcript rather than appending to it.
func (w *Wizard) AddVoiceNote(ctx context.Context, audio []byte, mimeType string) (string, error) {
	if err := w.acquire(); err != nil {
		return "", err
	}
	defer w.release()

	summary, err := w.gen.SummarizeVoice(ctx, audio, mimeType)
	if err != nil {
		return "", fmt.Errorf("summarizing voice note: %w", err)
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.VoiceNote = summary
	return summary, nil
}

// AttachCoordinates stores a device position on the draft and marks the
// location text as GPS-verified. Repeated calls re-append the marker,
// matching the original behavior.
func (w *Wizard) AttachCoordinates(lat, lng float64) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.Coordinates = &LatLng{Lat: lat, Lng: lng}
	w.draft.Location += gpsSuffix
}

// SetDetails updates the draft's campaign fields. Language and currency
// must come from the fixed enumerations; empty values leave the current
// selection untouched.
func (w *Wizard) SetDetails(campaign, location string, beneficiaries int, language, currency string) error {
	if language != "" && !IsSupportedLanguage(language) {
		return fmt.Errorf("unsupported language: %s", language)
	}
	if currency != "" && !IsSupportedCurrency(currency) {
		return fmt.Errorf("unsupported currency: %s", currency)
	}
	if beneficiaries < 0 {
		beneficiaries = 0
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft.CampaignName = campaign
	w.draft.Location = location
	w.draft.BeneficiaryCount = beneficiaries
	if language != "" {
		w.draft.Language = language
	}
	if currency != "" {
		w.draft.Currency = currency
	}
	return nil
}

// Step returns the current wizard step.
func (w *Wizard) Step() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.step
}

// Advance moves to the next wizard step. The details step exits only
// through Finalize.
func (w *Wizard) Advance() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step < StepDetails {
		w.step++
	}
	return w.step
}

// Back moves to the previous wizard step.
func (w *Wizard) Back() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.step > StepReceipts {
		w.step--
	}
	return w.step
}

// CanFinalize reports whether the two required fields are present. Zero
// receipts, photos and beneficiaries are all allowed.
func (w *Wizard) CanFinalize() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.draft.CampaignName != "" && w.draft.Location != ""
}

// Finalize converts the draft into an immutable ImpactReport: generates
// the story, snapshots total spend as the sum of receipt totals, assigns
// a fresh ID, prepends the report to the collection, selects it, and
// resets the draft.
func (w *Wizard) Finalize(ctx context.Context) (*ImpactReport, error) {
	if !w.CanFinalize() {
		return nil, ErrIncomplete
	}
	if err := w.acquire(); err != nil {
		return nil, err
	}
	defer w.release()

	w.mu.Lock()
	draft := w.draft
	w.mu.Unlock()

	captions := make([]string, 0, len(draft.Photos))
	for _, p := range draft.Photos {
		captions = append(captions, p.Caption)
	}

	story, err := w.gen.GenerateStory(ctx, ai.StoryInput{
		CampaignName:     draft.CampaignName,
		Location:         draft.Location,
		BeneficiaryCount: draft.BeneficiaryCount,
		Receipts:         draft.Receipts,
		PhotoCaptions:    captions,
		Notes:            draft.VoiceNote,
		Language:         draft.Language,
	})
	if err != nil {
		return nil, fmt.Errorf("generating story: %w", err)
	}

	totalSpend := decimal.Zero
	for _, r := range draft.Receipts {
		totalSpend = totalSpend.Add(r.TotalAmount)
	}

	rep := &ImpactReport{
		ID:               w.ids.Generate(),
		CampaignName:     draft.CampaignName,
		Location:         draft.Location,
		Coordinates:      draft.Coordinates,
		BeneficiaryCount: draft.BeneficiaryCount,
		Date:             w.clock.Now().Format("2006-01-02"),
		TotalSpend:       totalSpend,
		Currency:         draft.Currency,
		Receipts:         draft.Receipts,
		Photos:           draft.Photos,
		Story:            story,
		Status:           StatusDraft,
		Language:         draft.Language,
	}

	w.store.Add(rep)

	w.mu.Lock()
	w.selectedID = rep.ID
	w.draft = NewDraft()
	w.step = StepReceipts
	w.mu.Unlock()

	return rep, nil
}

// Translate re-renders a report's story in another language. Only the
// story and language fields change; a same-language request still calls
// the service.
func (w *Wizard) Translate(ctx context.Context, id, language string) (*ImpactReport, error) {
	if !IsSupportedLanguage(language) {
		return nil, fmt.Errorf("unsupported language: %s", language)
	}

	rep, err := w.store.Get(id)
	if err != nil {
		return nil, err
	}

	if err := w.acquire(); err != nil {
		return nil, err
	}
	defer w.release()

	translated, err := w.gen.TranslateStory(ctx, rep.Story, language)
	if err != nil {
		return nil, fmt.Errorf("translating story: %w", err)
	}

	return w.store.SetStory(id, translated, language)
}

// Select marks a report as the one shown in the viewer.
func (w *Wizard) Select(id string) error {
	if _, err := w.store.Get(id); err != nil {
		return err
	}
	w.mu.Lock()
	defer w.mu.Unlock()
	w.selectedID = id
	return nil
}

// Reset clears the draft back to its initial values for a new report.
func (w *Wizard) Reset() {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.draft = NewDraft()
	w.step = StepReceipts
}

// Snapshot is a read-only copy of the wizard state for clients.
type Snapshot struct {
	Step       Step   `json:"step"`
	Draft      Draft  `json:"draft"`
	Busy       bool   `json:"busy"`
	SelectedID string `json:"selectedId,omitempty"`
	Ready      bool   `json:"ready"` // finalize gating
}

// Snapshot returns the current wizard state.
func (w *Wizard) Snapshot() Snapshot {
	w.mu.Lock()
	defer w.mu.Unlock()
	return Snapshot{
		Step:       w.step,
		Draft:      w.draft,
		Busy:       w.busy.Load(),
		SelectedID: w.selectedID,
		Ready:      w.draft.CampaignName != "" && w.draft.Location != "",
	}
}
