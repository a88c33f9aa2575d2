package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in       string
		expected time.Duration
	}{
		{in: "0", expected: 0},
		{in: "1", expected: time.Second},
		{in: "1.5", expected: 1500 * time.Millisecond},
		{in: "2:03", expected: 2*time.Minute + 3*time.Second},
		{in: "1:00:00.25", expected: time.Hour + 250*time.Millisecond},
		{in: "0:90", expected: 90 * time.Second},
	}
	for _, test := range tests {
		d, err := parseDuration(test.in)
		require.NoError(t, err, test.in)
		assert.Equal(t, test.expected, d, test.in)
	}

	for _, in := range []string{"", "a", "-1", "1:2:3:4", "1.5:00", "-1:00"} {
		_, err := parseDuration(in)
		assert.Error(t, err, in)
	}
}
