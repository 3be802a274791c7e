package events

import (
	"context"
	"errors"
	"testing"
)

func TestDispatcherDeliversToSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	var got []string
	dispatcher.Subscribe(EventCaseSubmitted, func(ctx context.Context, event Event) error {
		got = append(got, "first:"+event.CaseID)
		return nil
	})
	dispatcher.Subscribe(EventCaseSubmitted, func(ctx context.Context, event Event) error {
		got = append(got, "second:"+event.CaseID)
		return nil
	})
	dispatcher.Subscribe(EventCaseFailed, func(ctx context.Context, event Event) error {
		t.Error("handler for another event type must not fire")
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventCaseSubmitted, CaseID: "case-1"}); err != nil {
		t.Fatalf("publish: %v", err)
	}
	if len(got) != 2 || got[0] != "first:case-1" || got[1] != "second:case-1" {
		t.Errorf("deliveries = %v", got)
	}
}

func TestDispatcherSwallowsHandlerErrors(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()

	delivered := false
	dispatcher.Subscribe(EventCaseEscalated, func(ctx context.Context, event Event) error {
		return errors.New("handler broke")
	})
	dispatcher.Subscribe(EventCaseEscalated, func(ctx context.Context, event Event) error {
		delivered = true
		return nil
	})

	if err := dispatcher.Publish(context.Background(), Event{Type: EventCaseEscalated, CaseID: "case-1"}); err != nil {
		t.Fatalf("publish should not propagate handler errors: %v", err)
	}
	if !delivered {
		t.Error("a failing handler must not block later handlers")
	}
}

func TestDispatcherNoSubscribers(t *testing.T) {
	dispatcher := NewInMemoryDispatcher()
	if err := dispatcher.Publish(context.Background(), Event{Type: EventAppointmentBooked}); err != nil {
		t.Fatalf("publish without subscribers: %v", err)
	}
}
