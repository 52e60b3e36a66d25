package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatInvoiceNumber(t *testing.T) {
	assert.Equal(t, "INV-0001", FormatInvoiceNumber(1))
	assert.Equal(t, "INV-0042", FormatInvoiceNumber(42))
	assert.Equal(t, "INV-12345", FormatInvoiceNumber(12345))
}

func TestValidDate(t *testing.T) {
	assert.True(t, ValidDate("2026-09-01"))
	assert.False(t, ValidDate("01/09/2026"))
	assert.False(t, ValidDate("2026-13-01"))
	assert.False(t, ValidDate(""))
}
