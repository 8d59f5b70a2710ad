package reminder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/physia/backend/internal/metrics"
	"github.com/physia/backend/internal/phone"
	"github.com/physia/backend/internal/repo"
	"github.com/physia/backend/internal/schedule"
	"github.com/physia/backend/internal/whatsapp"
)

// Sender delivers one reminder.
type Sender interface {
	SendReminder(ctx context.Context, r whatsapp.Reminder) error
}

// Store lists the appointments to remind and records delivered reminders.
type Store interface {
	ListAppointmentsForReminder(ctx context.Context, date time.Time) ([]repo.AppointmentReminderRow, error)
	MarkReminderSent(ctx context.Context, appointmentID uuid.UUID) error
}

// Result counts what one run did. Skipped covers invalid phones, an unconfigured sender and dry runs.
type Result struct {
	Sent    int
	Skipped int
	Failed  int
}

// Options tune a run.
type Options struct {
	DryRun bool
	Logger zerolog.Logger
}

// SendAppointmentReminders sends one WhatsApp reminder per appointment on date. A failure for
// one recipient is logged and does not stop the rest. Only a failing list query returns an error.
func SendAppointmentReminders(ctx context.Context, store Store, sender Sender, date time.Time, opts Options) (Result, error) {
	logger := opts.Logger.With().Str("component", "reminder").Str("date", date.Format(schedule.DateLayout)).Logger()
	var res Result
	rows, err := store.ListAppointmentsForReminder(ctx, date)
	if err != nil {
		return res, fmt.Errorf("list appointments for reminder: %w", err)
	}
	if sender == nil && !opts.DryRun {
		logger.Warn().Int("appointments", len(rows)).Msg("WhatsApp not configured, skipping reminders")
		res.Skipped = len(rows)
		metrics.RemindersSent.WithLabelValues("skipped").Add(float64(len(rows)))
		return res, nil
	}
	dateStr := date.Format("02/01/2006")
	for _, r := range rows {
		to := phone.E164(r.ClientPhone)
		if to == "" {
			logger.Warn().Str("appointment_id", r.AppointmentID.String()).Msg("client phone is not a valid number")
			res.Skipped++
			metrics.RemindersSent.WithLabelValues("skipped").Inc()
			continue
		}
		msg := whatsapp.Reminder{
			Phone:        to,
			ClientName:   r.ClientName,
			Organization: r.OrganizationName,
			Professional: r.ProfessionalName,
			Date:         dateStr,
			Time:         hhmm(r.StartTime),
		}
		if opts.DryRun {
			logger.Info().Str("appointment_id", r.AppointmentID.String()).Str("time", msg.Time).Msg("dry run, would send reminder")
			res.Skipped++
			continue
		}
		if err := sender.SendReminder(ctx, msg); err != nil {
			logger.Error().Err(err).Str("appointment_id", r.AppointmentID.String()).Msg("send reminder")
			res.Failed++
			metrics.RemindersSent.WithLabelValues("failed").Inc()
			continue
		}
		res.Sent++
		metrics.RemindersSent.WithLabelValues("sent").Inc()
		if err := store.MarkReminderSent(ctx, r.AppointmentID); err != nil {
			logger.Warn().Err(err).Str("appointment_id", r.AppointmentID.String()).Msg("mark reminder sent")
		}
	}
	return res, nil
}

func hhmm(s string) string {
	t, err := schedule.ParseTimeOfDay(s)
	if err != nil {
		return s
	}
	return t.String()
}

// DefaultSender returns an AiSensy client, or nil when it is not configured.
func DefaultSender(apiKey, campaign, url string) Sender {
	if apiKey == "" || campaign == "" {
		return nil
	}
	return whatsapp.NewClient(whatsapp.Config{APIKey: apiKey, Campaign: campaign, URL: url})
}
