package allocation

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testIDGen() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("sched-%d", n)
	}
}

func TestNextOrdinalDescription(t *testing.T) {
	tests := []struct {
		existingCount int
		want          string
	}{
		{0, "1st payment"},
		{1, "2nd payment"},
		{2, "3rd payment"},
		{3, "4th payment"},
		{10, "11th payment"},
		{11, "12th payment"},
		{12, "13th payment"},
		{20, "21st payment"},
		{21, "22nd payment"},
		{22, "23rd payment"},
		{100, "101st payment"},
		{110, "111th payment"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, NextOrdinalDescription(tt.existingCount))
		})
	}
}

func TestNextOrdinalDescriptionIsPure(t *testing.T) {
	first := NextOrdinalDescription(4)
	second := NextOrdinalDescription(4)
	assert.Equal(t, first, second)
}

func TestGenerateIDUnique(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 1000; i++ {
		id := GenerateID()
		require.NotEmpty(t, id)
		require.False(t, seen[id], "duplicate id %s", id)
		seen[id] = true
	}
}

func TestValidateMissingFields(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
	}{
		{"no due date", Draft{Percentage: 50}},
		{"no percentage or amount", Draft{DueDate: "2026-10-01"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.draft, nil, 1000)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, ErrMissingFields, verr.Kind)
		})
	}
}

func TestValidateOutOfRange(t *testing.T) {
	tests := []struct {
		name  string
		draft Draft
	}{
		{"percentage over 100", Draft{DueDate: "2026-10-01", Percentage: 150}},
		{"amount over invoice total", Draft{DueDate: "2026-10-01", Amount: 2000}},
		{"negative percentage", Draft{DueDate: "2026-10-01", Percentage: -5}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.draft, nil, 1000)
			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, ErrOutOfRange, verr.Kind)
		})
	}
}

func TestValidateOvercommitted(t *testing.T) {
	existing := []Schedule{
		{ID: "a", Description: "1st payment", Percentage: 100, Amount: 1000, Status: StatusPaid},
	}

	err := Validate(Draft{DueDate: "2026-10-01", Percentage: 10}, existing, 1000)
	var verr *ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrOvercommitted, verr.Kind)

	err = Validate(Draft{DueDate: "2026-10-01", Percentage: 5}, existing, 1000)
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, ErrOvercommitted, verr.Kind)
}

func TestValidateAllowsRebalancing(t *testing.T) {
	existing := []Schedule{
		{ID: "a", Percentage: 60, Amount: 600, Status: StatusUnpaid},
		{ID: "b", Percentage: 30, Amount: 300, Status: StatusPaid},
	}

	// Would overflow, but the unpaid installment leaves room to rebalance.
	err := Validate(Draft{DueDate: "2026-10-01", Percentage: 20}, existing, 1000)
	assert.NoError(t, err)
}

func TestReconciliationRoundTrip(t *testing.T) {
	byPercentage := Admit(Draft{DueDate: "2026-10-01", Percentage: 25}, nil, 1000, testIDGen())
	require.Len(t, byPercentage.Schedules, 1)
	assert.InDelta(t, 250, byPercentage.Schedules[0].Amount, Epsilon)

	byAmount := Admit(Draft{DueDate: "2026-10-01", Amount: 250}, nil, 1000, testIDGen())
	require.Len(t, byAmount.Schedules, 1)
	assert.InDelta(t, 25, byAmount.Schedules[0].Percentage, Epsilon)
}

func TestAdmitDefaults(t *testing.T) {
	res := Admit(Draft{DueDate: "2026-10-01", Percentage: 40}, nil, 1000, testIDGen())
	require.Len(t, res.Schedules, 1)
	got := res.Schedules[0]
	assert.Equal(t, "sched-1", got.ID)
	assert.Equal(t, "1st payment", got.Description)
	assert.Equal(t, StatusUnpaid, got.Status)
	assert.Nil(t, res.Adjustment)
}

func TestAdmitRebalancesNearestUnpaid(t *testing.T) {
	existing := []Schedule{
		{ID: "a", Description: "1st payment", Percentage: 60, Amount: 600, Status: StatusUnpaid},
		{ID: "b", Description: "2nd payment", Percentage: 30, Amount: 300, Status: StatusPaid},
	}

	res := Admit(Draft{DueDate: "2026-11-01", Percentage: 20}, existing, 1000, testIDGen())
	require.Len(t, res.Schedules, 3)

	// The paid installment keeps its share; the unpaid one absorbs the excess.
	assert.InDelta(t, 50, res.Schedules[0].Percentage, Epsilon)
	assert.InDelta(t, 500, res.Schedules[0].Amount, Epsilon)
	assert.InDelta(t, 30, res.Schedules[1].Percentage, Epsilon)
	assert.InDelta(t, 20, res.Schedules[2].Percentage, Epsilon)
	assert.InDelta(t, 200, res.Schedules[2].Amount, Epsilon)
	assert.Equal(t, "3rd payment", res.Schedules[2].Description)
	assert.InDelta(t, 100, TotalPercentage(res.Schedules), Epsilon)

	require.NotNil(t, res.Adjustment)
	assert.Equal(t, "a", res.Adjustment.ScheduleID)
	assert.InDelta(t, 10, res.Adjustment.Reduction, Epsilon)
	assert.InDelta(t, 50, res.Adjustment.NewPercentage, Epsilon)
}

func TestAdmitDoesNotMutateInput(t *testing.T) {
	existing := []Schedule{
		{ID: "a", Percentage: 60, Amount: 600, Status: StatusUnpaid},
	}

	Admit(Draft{DueDate: "2026-11-01", Percentage: 50}, existing, 1000, testIDGen())
	assert.InDelta(t, 60, existing[0].Percentage, Epsilon)
}

func TestAdmitClampsAtZero(t *testing.T) {
	// The single-target strategy floors the adjusted installment at zero and
	// does not redistribute further; the total may stay above 100%.
	existing := []Schedule{
		{ID: "a", Percentage: 90, Amount: 900, Status: StatusPaid},
		{ID: "b", Percentage: 5, Amount: 50, Status: StatusUnpaid},
	}

	res := Admit(Draft{DueDate: "2026-11-01", Percentage: 20}, existing, 1000, testIDGen())
	require.Len(t, res.Schedules, 3)
	assert.InDelta(t, 0, res.Schedules[1].Percentage, Epsilon)
	assert.InDelta(t, 0, res.Schedules[1].Amount, Epsilon)
	require.NotNil(t, res.Adjustment)
	assert.InDelta(t, 5, res.Adjustment.Reduction, Epsilon)
	assert.InDelta(t, 110, TotalPercentage(res.Schedules), Epsilon)
}

func TestAdmitSequenceKeepsInvariant(t *testing.T) {
	idGen := testIDGen()
	var schedules []Schedule
	shares := []float64{40, 30, 20, 30, 10}

	for _, share := range shares {
		draft := Draft{DueDate: "2026-12-01", Percentage: share}
		require.NoError(t, Validate(draft, schedules, 1000))
		res := Admit(draft, schedules, 1000, idGen)
		schedules = res.Schedules
		assert.LessOrEqual(t, TotalPercentage(schedules), 100+Epsilon)
	}
	assert.Len(t, schedules, len(shares))
}

func TestEditPercentageRecomputesAmount(t *testing.T) {
	s := Schedule{ID: "a", Percentage: 40, Amount: 400, Status: StatusUnpaid}
	got, err := EditPercentage(s, 25, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 25, got.Percentage, Epsilon)
	assert.InDelta(t, 250, got.Amount, Epsilon)
}

func TestEditAmountRecomputesPercentage(t *testing.T) {
	s := Schedule{ID: "a", Percentage: 40, Amount: 400, Status: StatusUnpaid}
	got, err := EditAmount(s, 100, 1000)
	require.NoError(t, err)
	assert.InDelta(t, 100, got.Amount, Epsilon)
	assert.InDelta(t, 10, got.Percentage, Epsilon)
}

func TestEditsRejectPaidSchedules(t *testing.T) {
	paid := Schedule{ID: "a", Percentage: 40, Amount: 400, Status: StatusPaid}

	_, err := EditPercentage(paid, 25, 1000)
	assert.ErrorIs(t, err, ErrPaidImmutable)

	_, err = EditAmount(paid, 100, 1000)
	assert.ErrorIs(t, err, ErrPaidImmutable)

	_, err = EditDueDate(paid, "2026-12-24")
	assert.ErrorIs(t, err, ErrPaidImmutable)

	_, err = MarkPaid(paid, "2026-12-24")
	assert.ErrorIs(t, err, ErrPaidImmutable)
}

func TestMarkPaidStampsPaymentDate(t *testing.T) {
	s := Schedule{ID: "a", Percentage: 40, Amount: 400, Status: StatusUnpaid}
	got, err := MarkPaid(s, "2026-09-15")
	require.NoError(t, err)
	assert.Equal(t, StatusPaid, got.Status)
	assert.Equal(t, "2026-09-15", got.PaymentDate)
}

func TestDisplayPercentage(t *testing.T) {
	assert.Equal(t, 33, DisplayPercentage(33.333333))
	assert.Equal(t, 67, DisplayPercentage(66.666667))
	assert.Equal(t, 100, DisplayPercentage(99.5))
}
