package utils

import (
	"fmt"
	"time"
)

// FormatInvoiceNumber renders a per-user invoice sequence number
func FormatInvoiceNumber(seq int64) string {
	return fmt.Sprintf("INV-%04d", seq)
}

// ValidDate reports whether s is a YYYY-MM-DD calendar date
func ValidDate(s string) bool {
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}
