package events

import (
	"testing"

	"vesync-bridge/internal/types"
)

func TestPublishReachesAllSubscribers(t *testing.T) {
	bus := New()
	a := bus.Subscribe(1)
	b := bus.Subscribe(1)

	event := &types.Event{Source: types.SourceDevice, Type: types.EventStateChange, Device: "cid-1"}
	bus.Publish(event)

	for _, ch := range []chan *types.Event{a, b} {
		select {
		case got := <-ch:
			if got != event {
				t.Fatalf("subscriber got %+v", got)
			}
		default:
			t.Fatal("subscriber did not receive event")
		}
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := New()
	slow := bus.Subscribe(1)
	fast := bus.Subscribe(2)

	first := &types.Event{Type: types.EventStateChange, Device: "cid-1"}
	second := &types.Event{Type: types.EventStateChange, Device: "cid-2"}

	// Second publish overflows the slow channel; it must not block here.
	bus.Publish(first)
	bus.Publish(second)

	if got := <-slow; got != first {
		t.Fatalf("slow subscriber got %+v, want first event", got)
	}
	select {
	case got := <-slow:
		t.Fatalf("slow subscriber got extra event %+v", got)
	default:
	}

	if got := <-fast; got != first {
		t.Fatalf("fast subscriber first = %+v", got)
	}
	if got := <-fast; got != second {
		t.Fatalf("fast subscriber second = %+v", got)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := New()
	ch := bus.Subscribe(1)
	bus.Unsubscribe(ch)

	if _, open := <-ch; open {
		t.Fatal("channel still open after unsubscribe")
	}

	// Publishing after unsubscribe must not panic on the closed channel
	bus.Publish(&types.Event{Type: types.EventStateChange})
}
