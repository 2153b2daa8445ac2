package notification

import (
	"context"
	"fmt"
	"strings"

	"github.com/stanstork/crewdispatch/internal/models"
)

// Notifier delivers a stored dispatch event to one outside channel. The
// event is already in the feed, so a delivery error is logged and dropped.
type Notifier interface {
	Notify(ctx context.Context, notification models.Notification) error
}

// isAlert reports whether an event needs someone at the dispatch desk.
func isAlert(notif models.Notification) bool {
	return notif.Severity == models.NotificationSeverityWarning || notif.Severity == models.NotificationSeverityError
}

// alertRecipients trims the configured addresses and drops blanks and
// repeats, keeping the configured order.
func alertRecipients(configured []string) []string {
	seen := make(map[string]bool, len(configured))
	var out []string
	for _, addr := range configured {
		addr = strings.TrimSpace(addr)
		key := strings.ToLower(addr)
		if addr == "" || seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, addr)
	}
	return out
}

func channelName(n Notifier) string {
	if v, ok := n.(fmt.Stringer); ok {
		return v.String()
	}
	return fmt.Sprintf("%T", n)
}
