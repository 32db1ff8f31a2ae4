package utils

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatDate(t *testing.T) {
	when := time.Date(2026, time.August, 28, 14, 30, 5, 0, time.UTC)
	assert.Equal(t, "2026-08-28", FormatDate(when))
	assert.Equal(t, "2026-08-28 14:30", FormatDateTime(when))
}
