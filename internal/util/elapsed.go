package util

import (
	"fmt"
	"math"
	"time"
)

// FormatElapsed renders d as "{h}H:{m}M:{s}S". Hours wrap at 24 and
// seconds are rounded to the nearest whole second.
func FormatElapsed(d time.Duration) string {
	if d < 0 {
		d = -d
	}
	remaining := d.Seconds()

	hours := int(math.Floor(remaining/3600)) % 24
	remaining -= float64(hours) * 3600

	minutes := int(math.Floor(remaining/60)) % 60
	remaining -= float64(minutes) * 60

	seconds := math.Round(math.Mod(remaining, 60))

	return fmt.Sprintf("%dH:%dM:%.0fS", hours, minutes, seconds)
}
