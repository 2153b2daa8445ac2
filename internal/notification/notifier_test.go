package notification

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/rs/zerolog"
	"github.com/stanstork/crewdispatch/internal/config"
	"github.com/stanstork/crewdispatch/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleNotification(severity models.NotificationSeverity) models.Notification {
	return models.Notification{
		ID:        12,
		EventType: models.NotificationEventAssignmentSlotsUnfilled,
		Severity:  severity,
		Title:     "2 installer positions unfilled",
		Message:   "Assigned installers to 1 positions, 2 positions could not be assigned",
		Metadata:  []byte(`{"failed_assignments":2}`),
		CreatedAt: time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC),
	}
}

func TestStreamNotifier_AppendsToStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamNotifier(client, config.RedisConfig{Stream: "dispatch:test"}, zerolog.Nop())
	require.NoError(t, n.Notify(context.Background(), sampleNotification(models.NotificationSeverityWarning)))

	msgs, err := client.XRange(context.Background(), "dispatch:test", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Equal(t, "12", msgs[0].Values["notification_id"])
	assert.Equal(t, "assignment_slots_unfilled", msgs[0].Values["event_type"])
	assert.Equal(t, "warning", msgs[0].Values["severity"])
	assert.Equal(t, `{"failed_assignments":2}`, msgs[0].Values["metadata"])
	assert.Equal(t, "2024-05-06T08:00:00Z", msgs[0].Values["created_at"])
}

func TestStreamNotifier_DefaultStream(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	defer client.Close()

	n := NewStreamNotifier(client, config.RedisConfig{}, zerolog.Nop())
	require.NoError(t, n.Notify(context.Background(), sampleNotification(models.NotificationSeverityInfo)))

	length, err := client.XLen(context.Background(), "dispatch:events").Result()
	require.NoError(t, err)
	assert.Equal(t, int64(1), length)
}

func TestStreamNotifier_ServerDown(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr(), MaxRetries: -1})
	defer client.Close()
	mr.Close()

	n := NewStreamNotifier(client, config.RedisConfig{}, zerolog.Nop())
	err := n.Notify(context.Background(), sampleNotification(models.NotificationSeverityInfo))
	assert.Error(t, err)
}

func TestNewEmailNotifier_Validation(t *testing.T) {
	_, err := NewEmailNotifier(config.EmailConfig{From: "a@b.c"}, zerolog.Nop())
	assert.Error(t, err)
	_, err = NewEmailNotifier(config.EmailConfig{SMTPHost: "smtp.local"}, zerolog.Nop())
	assert.Error(t, err)
}

func TestEmailNotifier_MailsUnfilledPositions(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost:        "smtp.local",
		From:            "dispatch@example.com",
		AlertRecipients: []string{" ops@example.com ", "", "OPS@example.com", "foreman@example.com"},
	}, zerolog.Nop())
	require.NoError(t, err)

	var (
		gotAddr string
		gotTo   []string
		gotMsg  string
	)
	n.send = func(addr string, _ smtp.Auth, _ string, to []string, msg []byte) error {
		gotAddr, gotTo, gotMsg = addr, to, string(msg)
		return nil
	}

	notif := sampleNotification(models.NotificationSeverityWarning)
	notif.Metadata = []byte(`{"total_assignments":3,"successful_assignments":1,"failed_assignments":2,"skipped_jobs":0,
		"failures":[{"job_number":"J-1042","trade":"trim","slot":2,"reason":"No available installers for this trade (installer 2 of 2)"}]}`)

	require.NoError(t, n.Notify(context.Background(), notif))
	assert.Equal(t, "smtp.local:587", gotAddr)
	assert.Equal(t, []string{"ops@example.com", "foreman@example.com"}, gotTo)
	assert.Contains(t, gotMsg, "Subject: [Dispatch] 2 installer positions unfilled\r\n")
	assert.Contains(t, gotMsg, "Positions assigned: 1 of 3")
	assert.Contains(t, gotMsg, "J-1042  trim installer 2: No available installers for this trade (installer 2 of 2)")
	assert.Contains(t, gotMsg, "... and 1 more")
	assert.Contains(t, gotMsg, "Notification #12, raised Mon 6 May 2024 08:00 UTC")
	assert.NotContains(t, gotMsg, "Jobs skipped")
}

func TestEmailNotifier_MailsAbortedBatch(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "smtp.local", SMTPPort: 2525, From: "dispatch@example.com", AlertRecipients: []string{"ops@example.com"},
	}, zerolog.Nop())
	require.NoError(t, err)

	var gotMsg string
	n.send = func(_ string, _ smtp.Auth, _ string, _ []string, msg []byte) error {
		gotMsg = string(msg)
		return nil
	}

	notif := models.Notification{
		ID:        31,
		EventType: models.NotificationEventAssignmentBatchFailed,
		Severity:  models.NotificationSeverityError,
		Title:     "Scheduling batch failed",
		Metadata:  []byte(`{"reason":"failed to load purchase orders for job J-7: connection reset by peer"}`),
		CreatedAt: time.Date(2024, time.May, 6, 8, 0, 0, 0, time.UTC),
	}
	require.NoError(t, n.Notify(context.Background(), notif))
	assert.True(t, strings.Contains(gotMsg, "Subject: [Dispatch] Scheduling batch aborted"))
	assert.Contains(t, gotMsg, "Cause: failed to load purchase orders for job J-7: connection reset by peer")
}

func TestEmailNotifier_SendFailure(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "smtp.local", From: "dispatch@example.com", AlertRecipients: []string{"ops@example.com"},
	}, zerolog.Nop())
	require.NoError(t, err)
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("421 service not available")
	}

	err = n.Notify(context.Background(), sampleNotification(models.NotificationSeverityWarning))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "assignment_slots_unfilled")
	assert.Contains(t, err.Error(), "421 service not available")
}

func TestEmailNotifier_IgnoresInfo(t *testing.T) {
	n, err := NewEmailNotifier(config.EmailConfig{
		SMTPHost: "smtp.local", From: "dispatch@example.com", AlertRecipients: []string{"ops@example.com"},
	}, zerolog.Nop())
	require.NoError(t, err)
	n.send = func(string, smtp.Auth, string, []string, []byte) error {
		return errors.New("should not send")
	}
	assert.NoError(t, n.Notify(context.Background(), sampleNotification(models.NotificationSeverityInfo)))
}
