package readtree

import (
	"fmt"
	"time"
)

var byteUnits = []string{"B", "KB", "MB", "GB", "TB"}

// FormatBytes renders n in 1024-based units with two decimals.
func FormatBytes(n float64) string {
	if n == 0 {
		return "0 B"
	}
	i := 0
	for n >= 1024 && i < len(byteUnits)-1 {
		n /= 1024
		i++
	}
	return fmt.Sprintf("%.2f %s", n, byteUnits[i])
}

// FormatDuration renders d as "Xh Ym Zs", "Ym Zs" or "Zs".
func FormatDuration(d time.Duration) string {
	s := int(d / time.Second)
	h, m := s/3600, s/60%60
	switch {
	case h > 0:
		return fmt.Sprintf("%dh %dm %ds", h, m, s%60)
	case m > 0:
		return fmt.Sprintf("%dm %ds", m, s%60)
	default:
		return fmt.Sprintf("%ds", s)
	}
}

// TruncatePath keeps the tail of p so the result is at most n characters.
func TruncatePath(p string, n int) string {
	r := []rune(p)
	if len(r) <= n {
		return p
	}
	if n <= 3 {
		return "..."
	}
	return "..." + string(r[len(r)-(n-3):])
}
