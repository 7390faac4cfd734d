package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFormatElapsed(t *testing.T) {
	tests := []struct {
		name string
		d    time.Duration
		want string
	}{
		{name: "zero", d: 0, want: "0H:0M:0S"},
		{name: "default duration", d: 10 * time.Second, want: "0H:0M:10S"},
		{name: "rounds down", d: 10*time.Second + 400*time.Millisecond, want: "0H:0M:10S"},
		{name: "rounds up", d: 10*time.Second + 600*time.Millisecond, want: "0H:0M:11S"},
		{name: "minutes", d: 2*time.Minute + 5*time.Second, want: "0H:2M:5S"},
		{name: "hours", d: time.Hour + 2*time.Minute + 5*time.Second, want: "1H:2M:5S"},
		{name: "wraps at a day", d: 25*time.Hour + 30*time.Second, want: "1H:0M:30S"},
		{name: "negative", d: -90 * time.Second, want: "0H:1M:30S"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatElapsed(tt.d))
		})
	}
}
