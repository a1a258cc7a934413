package view

import (
	"fmt"
	"math"
)

// HumanSize renders a byte count using 1024-based units.
func HumanSize(n int64) string {
	if n < 0 {
		n = 0
	}
	units := []string{"B", "KB", "MB", "GB"}
	v := float64(n)
	i := 0
	for v >= 1024 && i < len(units)-1 {
		v /= 1024
		i++
	}
	if i == 0 || v >= 10 {
		return fmt.Sprintf("%d %s", int64(math.Round(v)), units[i])
	}
	return fmt.Sprintf("%.1f %s", v, units[i])
}
