package report

import (
	"fmt"
	"sync"
	"time"

	"github.com/shopspring/decimal"

	"github.com/amanahlabs/amanah-reports/internal/ai"
)

// Store holds the report collection in memory for the lifetime of the
// process. Reports are prepended on add, so List is most-recent-first.
// There is no durable storage layer; restarting the server resets state,
// exactly like closing the original browser tab.
type Store struct {
	mu      sync.RWMutex
	reports []*ImpactReport
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{reports: []*ImpactReport{}}
}

// Add prepends a report to the collection.
func (s *Store) Add(r *ImpactReport) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.reports = append([]*ImpactReport{r}, s.reports...)
}

// List returns the reports, most recent first.
func (s *Store) List() []*ImpactReport {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*ImpactReport, len(s.reports))
	copy(out, s.reports)
	return out
}

// Get retrieves a report by ID.
func (s *Store) Get(id string) (*ImpactReport, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, r := range s.reports {
		if r.ID == id {
			return r, nil
		}
	}
	return nil, fmt.Errorf("report not found: %s", id)
}

// SetStory replaces the story and language of a report. No other field is
// touched; translation is the only post-creation mutation.
func (s *Store) SetStory(id, story, language string) (*ImpactReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ID == id {
			r.Story = story
			r.Language = language
			return r, nil
		}
	}
	return nil, fmt.Errorf("report not found: %s", id)
}

// SetStatus updates a report's status.
func (s *Store) SetStatus(id, status string) (*ImpactReport, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range s.reports {
		if r.ID == id {
			r.Status = status
			return r, nil
		}
	}
	return nil, fmt.Errorf("report not found: %s", id)
}

// Stats are the dashboard aggregates.
type Stats struct {
	ReportCount      int             `json:"reportCount"`
	Beneficiaries    int             `json:"beneficiaries"`
	FundsDistributed decimal.Decimal `json:"fundsDistributed"`
}

// Stats sums report counts, beneficiaries and total spend. Spend is summed
// naively across currencies, matching the original dashboard.
func (s *Store) Stats() Stats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	stats := Stats{FundsDistributed: decimal.Zero}
	for _, r := range s.reports {
		stats.ReportCount++
		stats.Beneficiaries += r.BeneficiaryCount
		stats.FundsDistributed = stats.FundsDistributed.Add(r.TotalSpend)
	}
	return stats
}

// SeedReport is the demo report shown on a fresh dashboard.
func SeedReport() *ImpactReport {
	return &ImpactReport{
		ID:               "1",
		CampaignName:     "Sumatera Disaster Relief 2025",
		Location:         "West Sumatera",
		BeneficiaryCount: 500,
		Date:             "2025-01-15",
		TotalSpend:       decimal.NewFromInt(15000000),
		Currency:         "IDR",
		Receipts: []ai.ReceiptData{
			{
				StoreName:   "Padang Supplies Depot",
				Date:        "2025-01-14",
				TotalAmount: decimal.NewFromInt(5000000),
				Currency:    "IDR",
				TrustScore:  98,
				Items: []ai.ReceiptItem{
					{Name: "Rice Bags (20kg)", Quantity: 20, Price: decimal.NewFromInt(250000)},
				},
			},
		},
		Photos: []DistributionPhoto{
			{
				Image:     "https://images.unsplash.com/photo-1488521787991-ed7bbaae773c?auto=format&fit=crop&q=80&w=400",
				Caption:   "Volunteers distributing rice bags to families in the affected village.",
				Timestamp: time.Date(2025, 1, 15, 10, 30, 0, 0, time.UTC),
			},
			{
				Image:     "https://images.unsplash.com/photo-1593113598332-cd288d649433?auto=format&fit=crop&q=80&w=400",
				Caption:   "Community gathering at the distribution point receiving clean water and supplies.",
				Timestamp: time.Date(2025, 1, 15, 11, 15, 0, 0, time.UTC),
			},
		},
		Story:    "We successfully distributed emergency supplies including blankets, clean water, and food kits to 500 survivors of the recent floods. The community expressed immense gratitude for the swift response. Volunteers worked through the night to ensure every family received a package.",
		Status:   StatusPublished,
		Language: "English",
	}
}
