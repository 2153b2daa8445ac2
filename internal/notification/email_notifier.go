package notification

import (
	"context"
	"encoding/json"
	"fmt"
	"net/smtp"
	"strings"

	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
)

type sendMailFunc func(addr string, a smtp.Auth, from string, to []string, msg []byte) error

// EmailNotifier mails dispatch alerts (unfilled installer positions and
// aborted batches) to the dispatch desk. Info events stay in the feed.
type EmailNotifier struct {
	addr   string
	auth   smtp.Auth
	from   string
	desk   []string
	send   sendMailFunc
	logger zerolog.Logger
}

func NewEmailNotifier(cfg config.EmailConfig, logger zerolog.Logger) (*EmailNotifier, error) {
	host := strings.TrimSpace(cfg.SMTPHost)
	if host == "" {
		return nil, fmt.Errorf("smtp_host is required for email notifier")
	}
	from := strings.TrimSpace(cfg.From)
	if from == "" {
		return nil, fmt.Errorf("from is required for email notifier")
	}
	port := cfg.SMTPPort
	if port == 0 {
		port = 587
	}

	n := &EmailNotifier{
		addr:   fmt.Sprintf("%s:%d", host, port),
		from:   from,
		desk:   alertRecipients(cfg.AlertRecipients),
		send:   smtp.SendMail,
		logger: logger.With().Str("notifier", "email").Logger(),
	}
	if user := strings.TrimSpace(cfg.Username); user != "" {
		n.auth = smtp.PlainAuth("", user, cfg.Password, host)
	}
	return n, nil
}

func (n *EmailNotifier) Notify(_ context.Context, notif models.Notification) error {
	if len(n.desk) == 0 || !isAlert(notif) {
		return nil
	}

	subject, body := composeAlert(notif)
	msg := fmt.Sprintf("From: %s\r\nTo: %s\r\nSubject: %s\r\nMIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"UTF-8\"\r\n\r\n%s",
		n.from, strings.Join(n.desk, ","), subject, body)
	if err := n.send(n.addr, n.auth, n.from, n.desk, []byte(msg)); err != nil {
		return fmt.Errorf("mail %s alert via %s: %w", notif.EventType, n.addr, err)
	}

	n.logger.Info().
		Int64("notification_id", notif.ID).
		Str("event_type", string(notif.EventType)).
		Int("recipients", len(n.desk)).
		Msg("dispatch alert mailed")
	return nil
}

func (n *EmailNotifier) String() string {
	return "EmailNotifier"
}

// alertDetails is the subset of event metadata an alert mail renders.
type alertDetails struct {
	Total      int    `json:"total_assignments"`
	Successful int    `json:"successful_assignments"`
	Failed     int    `json:"failed_assignments"`
	Skipped    int    `json:"skipped_jobs"`
	Reason     string `json:"reason"`
	Failures   []struct {
		JobNumber string       `json:"job_number"`
		Trade     models.Trade `json:"trade"`
		Slot      int          `json:"slot"`
		Reason    string       `json:"reason"`
	} `json:"failures"`
}

func composeAlert(notif models.Notification) (string, string) {
	var d alertDetails
	if len(notif.Metadata) > 0 {
		// Unreadable metadata still mails the title and message.
		_ = json.Unmarshal(notif.Metadata, &d)
	}

	var subject string
	body := strings.Builder{}
	switch notif.EventType {
	case models.NotificationEventAssignmentSlotsUnfilled:
		subject = fmt.Sprintf("[Dispatch] %d installer positions unfilled", d.Failed)
		fmt.Fprintf(&body, "Positions assigned: %d of %d\n", d.Successful, d.Total)
		if d.Skipped > 0 {
			fmt.Fprintf(&body, "Jobs skipped: %d\n", d.Skipped)
		}
		if len(d.Failures) > 0 {
			body.WriteString("\nUnfilled positions:\n")
			for _, f := range d.Failures {
				fmt.Fprintf(&body, "  %s  %s installer %d: %s\n", f.JobNumber, f.Trade, f.Slot, f.Reason)
			}
			if d.Failed > len(d.Failures) {
				fmt.Fprintf(&body, "  ... and %d more\n", d.Failed-len(d.Failures))
			}
		}
	case models.NotificationEventAssignmentBatchFailed:
		subject = "[Dispatch] Scheduling batch aborted"
		body.WriteString("The batch stopped before finishing. Assignments written before the error were kept.\n")
		if d.Reason != "" {
			fmt.Fprintf(&body, "\nCause: %s\n", d.Reason)
		}
	default:
		subject = "[Dispatch] " + strings.TrimSpace(notif.Title)
		body.WriteString(strings.TrimSpace(notif.Message))
		body.WriteString("\n")
	}

	fmt.Fprintf(&body, "\nNotification #%d, raised %s\n", notif.ID, notif.CreatedAt.UTC().Format("Mon 2 Jan 2006 15:04 MST"))
	return subject, body.String()
}
