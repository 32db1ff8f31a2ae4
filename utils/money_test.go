package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRound(t *testing.T) {
	assert.Equal(t, 0.3, Round(0.1*3))
	assert.Equal(t, 19.99, Round(19.99))
	assert.Equal(t, 180.21, Round(180.20999999999998))
	assert.Equal(t, 12.35, Round(12.3456))
}

func TestCents(t *testing.T) {
	assert.Equal(t, int64(1999), Cents(19.99))
	assert.Equal(t, int64(30), Cents(0.1*3))
	assert.Equal(t, int64(0), Cents(0))
}
