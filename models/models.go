package models

import "fmt"

// Video is one talk in the catalog. Values are passed by copy and never
// mutated after decoding; an update is a whole-record replacement.
type Video struct {
	ID      int64  `json:"id"`
	Title   string `json:"title"`
	Speaker string `json:"speaker"`
	URL     string `json:"url"`
}

// Label is the text shown for the video in the list.
func (v Video) Label() string {
	return fmt.Sprintf("%s: %s", v.Speaker, v.Title)
}

// LoadPhase tracks the catalog load lifecycle
type LoadPhase string

const (
	PhaseIdle    LoadPhase = "idle"
	PhaseLoading LoadPhase = "loading"
	PhaseLoaded  LoadPhase = "loaded"
	PhaseFailed  LoadPhase = "failed"
)

// LoadStatus is the phase plus the failure reason when Phase is PhaseFailed.
type LoadStatus struct {
	Phase  LoadPhase `json:"phase"`
	Reason string    `json:"reason,omitempty"`
}

// Settled reports whether the load has finished, successfully or not.
func (s LoadStatus) Settled() bool {
	return s.Phase == PhaseLoaded || s.Phase == PhaseFailed
}

// ViewState is a snapshot of everything the root view renders from.
type ViewState struct {
	Status    LoadStatus `json:"status"`
	Catalog   []Video    `json:"catalog"`
	Selection *Video     `json:"selection"`
	Version   uint64     `json:"version"`
}

// Clone returns a deep copy safe to hand out of the owning goroutine.
func (s ViewState) Clone() ViewState {
	out := s
	out.Catalog = make([]Video, len(s.Catalog))
	copy(out.Catalog, s.Catalog)
	if s.Selection != nil {
		sel := *s.Selection
		out.Selection = &sel
	}
	return out
}

// SelectionRequest is the body of PUT /api/selection
type SelectionRequest struct {
	ID *int64 `json:"id"`
}
