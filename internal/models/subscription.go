package models

import "time"

// Frequency represents how often a subscription bills
type Frequency string

const (
	FrequencyMonthly   Frequency = "monthly"
	FrequencyQuarterly Frequency = "quarterly"
	FrequencyYearly    Frequency = "yearly"
)

// Subscription represents a recurring billing plan for a client. The
// scheduler materializes an invoice each time NextRun passes.
type Subscription struct {
	ID        int64     `json:"id"`
	ClientID  int64     `json:"client_id"`
	Title     string    `json:"title"`
	Amount    float64   `json:"amount"`
	Currency  string    `json:"currency"`
	Frequency Frequency `json:"frequency"`
	NextRun   time.Time `json:"next_run"`
	Active    bool      `json:"active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Interval returns the billing period as a month count.
func (f Frequency) Interval() int {
	switch f {
	case FrequencyQuarterly:
		return 3
	case FrequencyYearly:
		return 12
	default:
		return 1
	}
}
