package service

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/events"
	"github.com/spec-kit/frontline-service/internal/repository"
)

// NotificationService composes and delivers the citizen-facing
// confirmation. Delivery channels are best-effort; the pipeline treats a
// failed delivery as a degraded stage, not a rollback.
type NotificationService struct {
	appointments repository.AppointmentRepository
	cfg          config.NotificationConfig
	client       *http.Client
	logger       *zap.Logger
}

// NewNotificationService constructs the service.
func NewNotificationService(appointments repository.AppointmentRepository, cfg config.NotificationConfig, logger *zap.Logger) *NotificationService {
	return &NotificationService{
		appointments: appointments,
		cfg:          cfg,
		client:       &http.Client{Timeout: cfg.Timeout()},
		logger:       logger,
	}
}

type webhookMessage struct {
	CaseID       string  `json:"case_id"`
	ReferenceKey string  `json:"reference_key"`
	CitizenName  string  `json:"citizen_name"`
	CitizenEmail string  `json:"citizen_email"`
	Urgency      string  `json:"urgency"`
	ServiceName  string  `json:"service_name,omitempty"`
	ScheduledAt  *string `json:"scheduled_at,omitempty"`
	DurationMins int     `json:"duration_minutes,omitempty"`
	Message      string  `json:"message"`
}

// SendConfirmation delivers the booking confirmation over the configured
// channels and marks the appointment as notified on success.
func (n *NotificationService) SendConfirmation(ctx context.Context, c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment) error {
	message := ComposeConfirmation(c, citizen, svc, appt)

	n.sendEmail(citizen, message)

	if n.cfg.WebhookURL != "" {
		if err := n.postWebhook(ctx, c, citizen, svc, appt, message); err != nil {
			return err
		}
	}

	if appt != nil && !appt.ConfirmationSent {
		appt.ConfirmationSent = true
		if err := n.appointments.Update(ctx, appt); err != nil {
			n.logger.Warn("could not mark confirmation sent",
				zap.String("appointment_id", appt.ID),
				zap.Error(err))
		}
	}
	return nil
}

// sendEmail is a structured-log stub: no SMTP relay is wired, so the
// message is logged where a relay integration would send it.
func (n *NotificationService) sendEmail(citizen *domain.Citizen, message string) {
	n.logger.Info("confirmation email",
		zap.String("from", n.cfg.EmailFrom),
		zap.String("to", citizen.Email),
		zap.String("body", message))
}

func (n *NotificationService) postWebhook(ctx context.Context, c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment, message string) error {
	payload := webhookMessage{
		CaseID:       c.ID,
		ReferenceKey: c.ReferenceKey,
		CitizenName:  citizen.Name,
		CitizenEmail: citizen.Email,
		Urgency:      string(c.Urgency),
		Message:      message,
	}
	if svc != nil {
		payload.ServiceName = svc.Name
	}
	if appt != nil {
		at := appt.ScheduledAt.Format(time.RFC3339)
		payload.ScheduledAt = &at
		payload.DurationMins = appt.DurationMins
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("encode webhook payload: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build webhook request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("deliver webhook: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook returned status %d", resp.StatusCode)
	}
	return nil
}

// RegisterHandlers wires event subscribers that only observe the pipeline.
func (n *NotificationService) RegisterHandlers(dispatcher events.Dispatcher) {
	dispatcher.Subscribe(events.EventCaseEscalated, func(ctx context.Context, event events.Event) error {
		n.logger.Warn("case escalated to a human operator",
			zap.String("case_id", event.CaseID),
			zap.Any("payload", event.Payload))
		return nil
	})
	dispatcher.Subscribe(events.EventCaseFailed, func(ctx context.Context, event events.Event) error {
		n.logger.Error("case failed in pipeline",
			zap.String("case_id", event.CaseID),
			zap.Any("payload", event.Payload))
		return nil
	})
}

// ComposeConfirmation builds the plain-language message a citizen receives.
func ComposeConfirmation(c *domain.Case, citizen *domain.Citizen, svc *domain.Service, appt *domain.Appointment) string {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "Dear %s,\n\n", citizen.Name)
	fmt.Fprintf(&buf, "Your request %q (reference %s) has been processed.\n", c.Title, c.ReferenceKey)
	fmt.Fprintf(&buf, "Assessed urgency: %s.\n", c.Urgency)
	if svc != nil {
		fmt.Fprintf(&buf, "You have been assigned to %s", svc.Name)
		if svc.Location != "" {
			fmt.Fprintf(&buf, " at %s", svc.Location)
		}
		buf.WriteString(".\n")
	}
	if appt != nil {
		fmt.Fprintf(&buf, "Your appointment is scheduled for %s and will take about %d minutes.\n",
			appt.ScheduledAt.Format("Monday, 2 January 2006 at 15:04"), appt.DurationMins)
	}
	if svc != nil && svc.ContactInfo != "" {
		fmt.Fprintf(&buf, "If you have questions, contact us at %s.\n", svc.ContactInfo)
	}
	buf.WriteString("\nThank you for using the citizen service desk.")
	return buf.String()
}
