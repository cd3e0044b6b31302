// Package format renders byte counts and timestamps the way the
// dashboard shows them.
package format

import (
	"fmt"
	"math"
	"time"
)

var sizeUnits = []string{"B", "KB", "MB", "GB", "TB"}

// Size renders a byte count with a 1024 base and one decimal place.
func Size(bytes int64) string {
	if bytes <= 0 {
		return "0 B"
	}
	i := int(math.Log(float64(bytes)) / math.Log(1024))
	if i >= len(sizeUnits) {
		i = len(sizeUnits) - 1
	}
	v := float64(bytes) / math.Pow(1024, float64(i))
	if i == 0 {
		return fmt.Sprintf("%d B", bytes)
	}
	return fmt.Sprintf("%.1f %s", v, sizeUnits[i])
}

// Date renders a timestamp for list rows.
func Date(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.Local().Format("Jan 2, 2006 15:04")
}

// Percent renders a used/max ratio; max<=0 yields 0%.
func Percent(used, max int64) float64 {
	if max <= 0 {
		return 0
	}
	return float64(used) / float64(max) * 100
}
