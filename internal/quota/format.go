package quota

import (
	"fmt"
	"time"
)

// FormatTimeUntilReset renders the wait until resetsAt as a short human
// string: "now" when the reset is not in the future, whole hours when at
// least an hour remains, otherwise whole minutes.
func FormatTimeUntilReset(resetsAt, now time.Time) string {
	if !resetsAt.After(now) {
		return "now"
	}

	remaining := resetsAt.Sub(now)
	hours := int(remaining / time.Hour)
	if hours > 0 {
		if hours == 1 {
			return "1 hour"
		}
		return fmt.Sprintf("%d hours", hours)
	}

	minutes := int(remaining / time.Minute)
	if minutes > 0 {
		if minutes == 1 {
			return "1 minute"
		}
		return fmt.Sprintf("%d minutes", minutes)
	}
	return "less than a minute"
}

// LimitMessage builds the user-facing message shown when the daily limit is
// reached. Deterministic for a given status and instant.
func LimitMessage(status Status, now time.Time) string {
	wait := FormatTimeUntilReset(status.ResetsAt, now)
	if wait == "now" {
		return fmt.Sprintf("You've used %d/%d free analyses today. Your limit resets now. Upgrade to Pro for unlimited analyses.",
			status.Count, status.Limit)
	}
	return fmt.Sprintf("You've used %d/%d free analyses today. Your limit resets in %s. Upgrade to Pro for unlimited analyses.",
		status.Count, status.Limit, wait)
}
