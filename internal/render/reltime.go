package render

import (
	"fmt"
	"math"
	"time"
)

// FormatRelative describes t relative to now in whole days: "today",
// "yesterday", "N days ago", "N weeks ago", and a M/D/YYYY date from 30
// days on. Timestamps after now read as "today".
func FormatRelative(t, now time.Time) string {
	days := int(math.Floor(now.Sub(t).Hours() / 24))

	switch {
	case days <= 0:
		return "today"
	case days == 1:
		return "yesterday"
	case days < 7:
		return fmt.Sprintf("%d days ago", days)
	case days < 30:
		return fmt.Sprintf("%d weeks ago", days/7)
	}
	return t.Format("1/2/2006")
}
