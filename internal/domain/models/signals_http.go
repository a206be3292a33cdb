package models

// Requests for report HTTP endpoints. Defined in domain for consistency and reuse.

type SignalsRequest struct {
	Symbol   string `query:"symbol" json:"symbol" validate:"omitempty,max=32"`
	Strategy string `query:"strategy" json:"strategy" validate:"omitempty,max=64"`
	Since    string `query:"since" json:"since" validate:"omitempty,max=40"`
	Limit    int    `query:"limit" json:"limit" default:"200" validate:"gte=1,lte=5000"`
}

// RunResponse summarises a run triggered over the API.
type RunResponse struct {
	RunAt       string   `json:"run_at,omitempty"`
	Symbols     int      `json:"symbols"`
	Events      int      `json:"events"`
	Signals     int      `json:"signals"`
	Skipped     []string `json:"skipped,omitempty"`
	Pending     bool     `json:"pending,omitempty"`
	NotifyError string   `json:"notify_error,omitempty"`
}
