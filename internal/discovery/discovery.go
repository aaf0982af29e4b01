// Package discovery watches the cloud account for supported devices and
// emits them on a channel; the bridge consumes the channel and owns the
// resulting entities.
package discovery

import (
	"context"
	"time"

	"vesync-bridge/internal/entity"
	"vesync-bridge/internal/logger"
	"vesync-bridge/internal/vesync"
)

// Event types
const (
	EventFound   = "found"
	EventRemoved = "removed"
)

// Event reports one device appearing or disappearing from the account
type Event struct {
	Type   string
	ID     string
	Device *vesync.Humidifier // set for EventFound
}

// Watcher polls the device list and diffs it against the known set
type Watcher struct {
	client   *vesync.Client
	interval time.Duration
	events   chan Event
	known    map[string]bool
}

// NewWatcher creates a watcher that rescans the account every interval
func NewWatcher(client *vesync.Client, interval time.Duration) *Watcher {
	return &Watcher{
		client:   client,
		interval: interval,
		events:   make(chan Event, 16),
		known:    make(map[string]bool),
	}
}

// Events returns the discovery event channel
func (w *Watcher) Events() <-chan Event {
	return w.events
}

// Run scans immediately, then on every tick, until ctx is cancelled.
// The event channel is closed on return.
func (w *Watcher) Run(ctx context.Context) {
	defer close(w.events)

	w.scan(ctx)

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.scan(ctx)
		}
	}
}

func (w *Watcher) scan(ctx context.Context) {
	infos, err := w.client.Devices(ctx)
	if err != nil {
		logger.Warn("Device list scan failed: %v", err)
		return
	}

	seen := make(map[string]bool, len(infos))

	for _, info := range infos {
		if _, ok := entity.Lookup(info.DeviceType); !ok {
			logger.Debug("%s - Unknown device type - %s", info.DeviceName, info.DeviceType)
			continue
		}

		seen[info.CID] = true
		if w.known[info.CID] {
			continue
		}

		w.known[info.CID] = true
		logger.Info("Discovered %s (%s)", info.DeviceName, info.DeviceType)
		w.emit(ctx, Event{Type: EventFound, ID: info.CID, Device: w.client.Humidifier(info)})
	}

	for cid := range w.known {
		if seen[cid] {
			continue
		}
		delete(w.known, cid)
		logger.Info("Device %s no longer registered", cid)
		w.emit(ctx, Event{Type: EventRemoved, ID: cid})
	}
}

func (w *Watcher) emit(ctx context.Context, event Event) {
	select {
	case w.events <- event:
	case <-ctx.Done():
	}
}
