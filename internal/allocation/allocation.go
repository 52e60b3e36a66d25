// Package allocation maintains an invoice's payment schedule: a list of
// installments whose percentages of the invoice total must never sum past
// 100%. It is a pure computation layer; callers persist the returned lists
// and decide how to surface adjustment notices.
package allocation

import (
	"fmt"
	"math"

	"github.com/google/uuid"
)

// Status of a payment schedule installment.
type Status string

const (
	StatusUnpaid   Status = "unpaid"
	StatusPaid     Status = "paid"
	StatusWriteOff Status = "write-off"
)

// Epsilon tolerates float drift when comparing percentage sums.
const Epsilon = 1e-9

// Schedule is a single installment of an invoice's payment plan.
// Percentage and Amount are two views of one value; every mutation goes
// through the edit helpers so they cannot drift apart.
type Schedule struct {
	ID          string  `json:"id"`
	Description string  `json:"description"`
	DueDate     string  `json:"due_date"` // YYYY-MM-DD
	Percentage  float64 `json:"percentage"`
	Amount      float64 `json:"amount"`
	Status      Status  `json:"status"`
	PaymentDate string  `json:"payment_date,omitempty"` // set when marked paid
}

// Draft is a candidate installment supplied by the caller. Either Percentage
// or Amount must be set; the other is derived from the invoice total.
type Draft struct {
	DueDate    string  `json:"due_date"`
	Percentage float64 `json:"percentage"`
	Amount     float64 `json:"amount"`
	Status     Status  `json:"status"`
}

// Adjustment describes the rebalancing applied to an existing installment to
// make room for a newly admitted one.
type Adjustment struct {
	ScheduleID    string  `json:"schedule_id"`
	Description   string  `json:"description"`
	Reduction     float64 `json:"reduction"` // percentage points removed
	NewPercentage float64 `json:"new_percentage"`
	NewAmount     float64 `json:"new_amount"`
}

// Result is the outcome of admitting a draft.
type Result struct {
	Schedules  []Schedule  `json:"schedules"`
	Adjustment *Adjustment `json:"adjustment,omitempty"`
}

// GenerateID produces a unique opaque schedule identifier.
func GenerateID() string {
	return uuid.NewString()
}

// NextOrdinalDescription returns the label for the next installment, e.g.
// "1st payment" when no installments exist yet.
func NextOrdinalDescription(existingCount int) string {
	return fmt.Sprintf("%s payment", ordinal(existingCount+1))
}

func ordinal(n int) string {
	suffix := "th"
	switch {
	case n%100 >= 11 && n%100 <= 13:
		// teens keep "th"
	case n%10 == 1:
		suffix = "st"
	case n%10 == 2:
		suffix = "nd"
	case n%10 == 3:
		suffix = "rd"
	}
	return fmt.Sprintf("%d%s", n, suffix)
}

// reconcile derives the missing half of the percentage/amount pair. When an
// amount is given it is authoritative and the percentage is computed from the
// invoice total; otherwise the percentage drives the amount.
func reconcile(draft Draft, invoiceAmount float64) (percentage, amount float64) {
	if draft.Amount > 0 && invoiceAmount > 0 {
		return draft.Amount / invoiceAmount * 100, draft.Amount
	}
	if draft.Percentage > 0 {
		return draft.Percentage, invoiceAmount * draft.Percentage / 100
	}
	return 0, 0
}

// TotalPercentage sums the percentage shares of all installments.
func TotalPercentage(schedules []Schedule) float64 {
	var total float64
	for _, s := range schedules {
		total += s.Percentage
	}
	return total
}

func hasAdjustable(schedules []Schedule) bool {
	for _, s := range schedules {
		if s.Status != StatusPaid {
			return true
		}
	}
	return false
}

// Validate decides whether a draft can be admitted against the existing
// installments. It returns nil when admission is possible, including when
// admission will require rebalancing an existing unpaid installment.
func Validate(draft Draft, existing []Schedule, invoiceAmount float64) error {
	if draft.DueDate == "" || (draft.Percentage == 0 && draft.Amount == 0) {
		return &ValidationError{
			Kind:    ErrMissingFields,
			Message: "a due date and a percentage or amount are required",
		}
	}

	percentage, _ := reconcile(draft, invoiceAmount)
	if percentage <= 0 || percentage > 100 {
		return &ValidationError{
			Kind:    ErrOutOfRange,
			Message: "percentage must be greater than 0 and at most 100",
		}
	}

	if TotalPercentage(existing)+percentage > 100+Epsilon && !hasAdjustable(existing) {
		return &ValidationError{
			Kind:    ErrOvercommitted,
			Message: "adding this payment would exceed 100% of the invoice total and all existing payments are already paid",
		}
	}
	return nil
}

// Admit appends the draft as a new installment, rebalancing if the total
// would exceed 100%. When rebalancing is needed the existing list is scanned
// from the end for the first installment that is not paid; only that one is
// reduced (floored at zero). If the excess is larger than that installment's
// share the total can still end up above 100% — a known limitation of the
// single-target strategy.
//
// Admit assumes Validate has passed for the same inputs; calling it on
// invalid input is a programming error.
func Admit(draft Draft, existing []Schedule, invoiceAmount float64, idGen func() string) Result {
	percentage, amount := reconcile(draft, invoiceAmount)

	schedules := make([]Schedule, len(existing))
	copy(schedules, existing)

	var adjustment *Adjustment
	excess := TotalPercentage(schedules) + percentage - 100
	if excess > Epsilon {
		for i := len(schedules) - 1; i >= 0; i-- {
			if schedules[i].Status == StatusPaid {
				continue
			}
			reduced := math.Max(0, schedules[i].Percentage-excess)
			adjustment = &Adjustment{
				ScheduleID:    schedules[i].ID,
				Description:   schedules[i].Description,
				Reduction:     schedules[i].Percentage - reduced,
				NewPercentage: reduced,
				NewAmount:     invoiceAmount * reduced / 100,
			}
			schedules[i].Percentage = reduced
			schedules[i].Amount = invoiceAmount * reduced / 100
			break
		}
	}

	status := draft.Status
	if status == "" {
		status = StatusUnpaid
	}
	schedules = append(schedules, Schedule{
		ID:          idGen(),
		Description: NextOrdinalDescription(len(existing)),
		DueDate:     draft.DueDate,
		Percentage:  percentage,
		Amount:      amount,
		Status:      status,
	})

	return Result{Schedules: schedules, Adjustment: adjustment}
}

// DisplayPercentage rounds a stored percentage for presentation. Stored
// values keep full precision so repeated edits do not drift the 100% bound.
func DisplayPercentage(percentage float64) int {
	return int(math.Round(percentage))
}
