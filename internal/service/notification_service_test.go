package service

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/frontline-service/internal/config"
	"github.com/spec-kit/frontline-service/internal/domain"
	"github.com/spec-kit/frontline-service/internal/repository/memory"
)

func notificationFixtures() (*domain.Case, *domain.Citizen, *domain.Service, *domain.Appointment) {
	c := &domain.Case{
		ID:           "case-1",
		ReferenceKey: "CSE-ABCD1234",
		Title:        "broken arm",
		Urgency:      domain.UrgencyHigh,
	}
	citizen := &domain.Citizen{ID: "cit-1", Name: "Ada Smith", Email: "ada@example.com"}
	svc := &domain.Service{ID: "svc-1", Name: "City Clinic", Location: "North District", ContactInfo: "clinic@example.com"}
	appt := &domain.Appointment{
		ID:           "appt-1",
		CaseID:       c.ID,
		ServiceID:    svc.ID,
		ScheduledAt:  time.Date(2026, 3, 3, 14, 0, 0, 0, time.UTC),
		DurationMins: 45,
		Status:       domain.AppointmentStatusConfirmed,
	}
	return c, citizen, svc, appt
}

func TestComposeConfirmation(t *testing.T) {
	c, citizen, svc, appt := notificationFixtures()
	message := ComposeConfirmation(c, citizen, svc, appt)

	for _, want := range []string{
		"Dear Ada Smith",
		"CSE-ABCD1234",
		"HIGH",
		"City Clinic",
		"North District",
		"45 minutes",
		"clinic@example.com",
	} {
		if !strings.Contains(message, want) {
			t.Errorf("confirmation missing %q:\n%s", want, message)
		}
	}
}

func TestComposeConfirmationWithoutBooking(t *testing.T) {
	c, citizen, _, _ := notificationFixtures()
	message := ComposeConfirmation(c, citizen, nil, nil)
	if strings.Contains(message, "scheduled for") {
		t.Error("message without a booking must not mention a schedule")
	}
	if !strings.Contains(message, citizen.Name) {
		t.Error("message should address the citizen")
	}
}

func TestSendConfirmationPostsWebhook(t *testing.T) {
	ctx := context.Background()
	received := make(chan webhookMessage, 1)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var msg webhookMessage
		if err := json.NewDecoder(r.Body).Decode(&msg); err != nil {
			t.Errorf("decode webhook: %v", err)
		}
		received <- msg
	}))
	defer server.Close()

	appointments := memory.NewAppointmentRepo()
	c, citizen, svc, appt := notificationFixtures()
	appt.ID = ""
	if err := appointments.Create(ctx, appt); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	notifier := NewNotificationService(appointments, config.NotificationConfig{
		EmailFrom:      "desk@example.com",
		WebhookURL:     server.URL,
		TimeoutSeconds: 2,
	}, zap.NewNop())

	if err := notifier.SendConfirmation(ctx, c, citizen, svc, appt); err != nil {
		t.Fatalf("send confirmation: %v", err)
	}

	msg := <-received
	if msg.CaseID != c.ID || msg.ReferenceKey != c.ReferenceKey {
		t.Errorf("webhook payload %+v missing case identity", msg)
	}
	if msg.ServiceName != svc.Name {
		t.Errorf("webhook service = %q, want %q", msg.ServiceName, svc.Name)
	}

	stored, err := appointments.GetByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if !stored.ConfirmationSent {
		t.Error("delivery should mark the appointment confirmed-sent")
	}
}

func TestSendConfirmationWebhookFailure(t *testing.T) {
	ctx := context.Background()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	appointments := memory.NewAppointmentRepo()
	c, citizen, svc, appt := notificationFixtures()
	appt.ID = ""
	if err := appointments.Create(ctx, appt); err != nil {
		t.Fatalf("seed appointment: %v", err)
	}

	notifier := NewNotificationService(appointments, config.NotificationConfig{
		WebhookURL:     server.URL,
		TimeoutSeconds: 2,
	}, zap.NewNop())

	if err := notifier.SendConfirmation(ctx, c, citizen, svc, appt); err == nil {
		t.Fatal("failed webhook delivery should surface an error")
	}
	stored, err := appointments.GetByID(ctx, appt.ID)
	if err != nil {
		t.Fatalf("reload appointment: %v", err)
	}
	if stored.ConfirmationSent {
		t.Error("failed delivery must not mark the appointment confirmed-sent")
	}
}

func TestSendConfirmationWithoutWebhook(t *testing.T) {
	ctx := context.Background()
	c, citizen, svc, _ := notificationFixtures()

	notifier := NewNotificationService(memory.NewAppointmentRepo(), config.NotificationConfig{
		EmailFrom: "desk@example.com",
	}, zap.NewNop())

	if err := notifier.SendConfirmation(ctx, c, citizen, svc, nil); err != nil {
		t.Fatalf("email-only delivery should succeed: %v", err)
	}
}
