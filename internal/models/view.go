package models

// ViewState is the lightweight UI state persisted alongside preferences:
// the selected calendar day and the active view mode.
type ViewState struct {
	SelectedDate string `json:"selectedDate"`
	ViewMode     string `json:"viewMode"`
}
