package allocation

// EditPercentage sets a new percentage share on an unpaid installment and
// recomputes its amount from the invoice total. No cross-installment
// rebalancing happens on edits; only admitting a new installment rebalances.
func EditPercentage(s Schedule, percentage, invoiceAmount float64) (Schedule, error) {
	if s.Status == StatusPaid {
		return s, ErrPaidImmutable
	}
	if percentage <= 0 || percentage > 100 {
		return s, &ValidationError{
			Kind:    ErrOutOfRange,
			Message: "percentage must be greater than 0 and at most 100",
		}
	}
	s.Percentage = percentage
	s.Amount = invoiceAmount * percentage / 100
	return s, nil
}

// EditAmount sets a new absolute amount on an unpaid installment and
// recomputes its percentage from the invoice total.
func EditAmount(s Schedule, amount, invoiceAmount float64) (Schedule, error) {
	if s.Status == StatusPaid {
		return s, ErrPaidImmutable
	}
	if amount <= 0 || invoiceAmount <= 0 {
		return s, &ValidationError{
			Kind:    ErrOutOfRange,
			Message: "amount must be greater than 0",
		}
	}
	percentage := amount / invoiceAmount * 100
	if percentage > 100 {
		return s, &ValidationError{
			Kind:    ErrOutOfRange,
			Message: "amount exceeds the invoice total",
		}
	}
	s.Amount = amount
	s.Percentage = percentage
	return s, nil
}

// EditDueDate changes the due date of an unpaid installment.
func EditDueDate(s Schedule, dueDate string) (Schedule, error) {
	if s.Status == StatusPaid {
		return s, ErrPaidImmutable
	}
	if dueDate == "" {
		return s, &ValidationError{
			Kind:    ErrMissingFields,
			Message: "a due date is required",
		}
	}
	s.DueDate = dueDate
	return s, nil
}

// MarkPaid transitions an installment to paid and stamps the payment date.
func MarkPaid(s Schedule, paymentDate string) (Schedule, error) {
	if s.Status == StatusPaid {
		return s, ErrPaidImmutable
	}
	s.Status = StatusPaid
	s.PaymentDate = paymentDate
	return s, nil
}
