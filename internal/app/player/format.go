package player

import (
	"fmt"
	"time"
)

// FormatTime formats d as m:ss, truncating to whole seconds.
func FormatTime(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	total := int(d / time.Second)
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
