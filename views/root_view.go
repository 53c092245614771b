package views

import "talk-explorer/models"

const (
	Heading    = "RustConf Explorer"
	SubHeading = "Videos to watch"
)

// Page is the composed root view.
type Page struct {
	Heading    string
	SubHeading string
	Phase      models.LoadPhase
	Failure    string
	Rows       []Row
	Detail     *Detail
	Version    uint64
}

// Loading reports whether the page shows the loading indicator.
func (p Page) Loading() bool {
	return p.Phase == "" || p.Phase == models.PhaseIdle || p.Phase == models.PhaseLoading
}

// Failed reports whether the page shows the failure indicator.
func (p Page) Failed() bool { return p.Phase == models.PhaseFailed }

// Empty reports a successfully loaded but empty catalog.
func (p Page) Empty() bool { return p.Phase == models.PhaseLoaded && len(p.Rows) == 0 }

// RootView composes the list and detail views for a state snapshot. The list
// and the detail are only rendered once the catalog has loaded; the detail
// only when something is selected.
func RootView(state models.ViewState, onSelect func(models.Video)) Page {
	page := Page{
		Heading:    Heading,
		SubHeading: SubHeading,
		Phase:      state.Status.Phase,
		Version:    state.Version,
	}
	switch state.Status.Phase {
	case models.PhaseFailed:
		page.Failure = state.Status.Reason
	case models.PhaseLoaded:
		page.Rows = ListView(state.Catalog, onSelect)
		if state.Selection != nil {
			d := DetailView(*state.Selection)
			page.Detail = &d
		}
	}
	return page
}
