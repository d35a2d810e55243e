package report

import (
	"fmt"
	"sync"
)

// View names one of the closed set of screens. Navigation is an explicit
// assignment; there is no URL routing or history stack.
type View string

const (
	ViewLanding        View = "landing"
	ViewFeatures       View = "features"
	ViewHowItWorks     View = "how-it-works"
	ViewDonors         View = "donors"
	ViewDashboard      View = "dashboard"
	ViewCreateReceipts View = "create-receipt"
	ViewCreatePhotos   View = "create-photos"
	ViewCreateSummary  View = "create-summary"
	ViewReport         View = "view-report"
)

var validViews = map[View]bool{
	ViewLanding:        true,
	ViewFeatures:       true,
	ViewHowItWorks:     true,
	ViewDonors:         true,
	ViewDashboard:      true,
	ViewCreateReceipts: true,
	ViewCreatePhotos:   true,
	ViewCreateSummary:  true,
	ViewReport:         true,
}

// Valid reports whether v names a known screen.
func (v View) Valid() bool {
	return validViews[v]
}

// Router holds the current view.
type Router struct {
	mu      sync.Mutex
	current View
}

// NewRouter starts on the landing screen.
func NewRouter() *Router {
	return &Router{current: ViewLanding}
}

// Current returns the current view.
func (r *Router) Current() View {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.current
}

// Navigate assigns the current view. Unknown view names are rejected.
func (r *Router) Navigate(v View) error {
	if !v.Valid() {
		return fmt.Errorf("unknown view: %s", v)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.current = v
	return nil
}

// StepView maps a wizard step onto its screen.
func StepView(s Step) View {
	switch s {
	case StepPhotos:
		return ViewCreatePhotos
	case StepDetails:
		return ViewCreateSummary
	default:
		return ViewCreateReceipts
	}
}
