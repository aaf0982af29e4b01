// Package bridge owns the bridged entities. One goroutine consumes
// discovery events, command requests, and the poll ticker, so each
// entity's state is only ever touched from that loop.
package bridge

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"vesync-bridge/internal/discovery"
	"vesync-bridge/internal/entity"
	"vesync-bridge/internal/events"
	"vesync-bridge/internal/hass"
	"vesync-bridge/internal/logger"
	"vesync-bridge/internal/mqtt"
	"vesync-bridge/internal/storage"
	"vesync-bridge/internal/types"
)

// Options holds bridge configuration
type Options struct {
	// TopicPrefix is the root of the bridge's own state/command topics
	TopicPrefix string
	// DiscoveryPrefix is where Home Assistant listens for config payloads
	DiscoveryPrefix string
	// PollInterval is the per-cycle snapshot cadence
	PollInterval time.Duration
	// NameOverrides maps device IDs to names from devices.yaml
	NameOverrides map[string]string
}

func (o Options) withDefaults() Options {
	if o.TopicPrefix == "" {
		o.TopicPrefix = "vesync"
	}
	if o.DiscoveryPrefix == "" {
		o.DiscoveryPrefix = hass.DefaultPrefix
	}
	if o.PollInterval <= 0 {
		o.PollInterval = 30 * time.Second
	}
	return o
}

// Publisher is the MQTT surface the bridge needs. *mqtt.Client
// satisfies it; tests substitute a recorder.
type Publisher interface {
	Publish(topic string, payload interface{}) error
	PublishRetained(topic string, payload interface{}) error
	Subscribe(topic string, handler mqtt.MessageHandler) error
}

// Bridge connects discovered devices to their MQTT entity surface
type Bridge struct {
	mqtt     Publisher
	store    *storage.Storage
	bus      *events.Bus
	opts     Options
	entities map[string]*entity.Entity
	commands chan command
}

// command is a deferred entity mutation handed from an MQTT callback to
// the run loop
type command struct {
	id    string
	kind  string
	apply func(ctx context.Context) error
}

// New creates a bridge. store and bus may be nil for tests.
func New(client Publisher, store *storage.Storage, bus *events.Bus, opts Options) *Bridge {
	return &Bridge{
		mqtt:     client,
		store:    store,
		bus:      bus,
		opts:     opts.withDefaults(),
		entities: make(map[string]*entity.Entity),
		commands: make(chan command, 32),
	}
}

// Run processes discovery events, commands, and polls until ctx is
// cancelled
func (b *Bridge) Run(ctx context.Context, discoveries <-chan discovery.Event) {
	ticker := time.NewTicker(b.opts.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			logger.Debug("Bridge loop stopped")
			return
		case event, ok := <-discoveries:
			if !ok {
				discoveries = nil
				continue
			}
			b.handleDiscovery(ctx, event)
		case cmd := <-b.commands:
			b.runCommand(ctx, cmd)
		case <-ticker.C:
			for _, ent := range b.entities {
				b.poll(ctx, ent)
			}
		}
	}
}

func (b *Bridge) handleDiscovery(ctx context.Context, event discovery.Event) {
	switch event.Type {
	case discovery.EventFound:
		b.addDevice(ctx, event)
	case discovery.EventRemoved:
		b.removeDevice(event.ID)
	}
}

func (b *Bridge) addDevice(ctx context.Context, event discovery.Event) {
	if _, exists := b.entities[event.ID]; exists {
		return
	}

	ent, err := entity.New(event.Device)
	if err != nil {
		logger.Warn("Skipping device %s: %v", event.ID, err)
		return
	}

	b.restore(ent)
	ent.Humidifier.SetNotify(func() {
		b.publishState(ent)
		b.persist(ent)
	})

	b.entities[ent.ID()] = ent
	entitiesGauge.Set(float64(len(b.entities)))

	b.publishDiscovery(ent)
	if err := b.subscribeCommands(ent); err != nil {
		logger.Error("Command subscription for %s failed: %v", ent.ID(), err)
	}

	// First poll before the ticker so HA sees real state immediately
	b.poll(ctx, ent)

	b.publishEvent(&types.Event{
		Source:    types.SourceDiscovery,
		Type:      types.EventDeviceFound,
		Device:    ent.ID(),
		Data:      map[string]interface{}{"name": b.displayName(ent), "model": ent.Handle.Model()},
		Timestamp: time.Now(),
	})
}

func (b *Bridge) removeDevice(id string) {
	ent, ok := b.entities[id]
	if !ok {
		return
	}

	delete(b.entities, id)
	entitiesGauge.Set(float64(len(b.entities)))

	// An empty retained config payload deletes the entity from HA
	uid := b.uniqueID(ent)
	b.publishRetained(hass.ConfigTopic(b.opts.DiscoveryPrefix, "humidifier", uid), "")
	for _, sensor := range ent.Sensors {
		b.publishRetained(hass.ConfigTopic(b.opts.DiscoveryPrefix, "binary_sensor", uid+"_"+string(sensor.Kind())), "")
	}

	if b.store != nil {
		if err := b.store.Delete(id); err != nil {
			logger.Error("Failed to drop stored state for %s: %v", id, err)
		}
	}

	b.publishEvent(&types.Event{
		Source:    types.SourceDiscovery,
		Type:      types.EventDeviceRemoved,
		Device:    id,
		Timestamp: time.Now(),
	})
}

func (b *Bridge) poll(ctx context.Context, ent *entity.Entity) {
	pollsTotal.Inc()

	status, err := ent.Handle.Status(ctx)
	if err != nil {
		// Stale-read tolerance: cached state stands until the next
		// successful poll
		pollErrorsTotal.Inc()
		logger.Debug("Poll for %s failed, keeping cached state: %v", ent.ID(), err)
		return
	}

	ent.Refresh(status)
	b.persist(ent)
	b.publishState(ent)

	b.publishEvent(&types.Event{
		Source:    types.SourceDevice,
		Type:      types.EventStateChange,
		Device:    ent.ID(),
		Data:      map[string]interface{}{"mode": ent.Humidifier.Mode(), "power": ent.State.PowerOn},
		Timestamp: time.Now(),
	})
}

func (b *Bridge) runCommand(ctx context.Context, cmd command) {
	commandsTotal.WithLabelValues(cmd.kind).Inc()

	err := cmd.apply(ctx)
	if err == nil {
		return
	}

	if errors.Is(err, entity.ErrUnsupportedMode) {
		commandRejectionsTotal.Inc()
		logger.Warn("Rejected %s for %s: %v", cmd.kind, cmd.id, err)
		return
	}

	logger.Error("Command %s for %s failed: %v", cmd.kind, cmd.id, err)
}

func (b *Bridge) subscribeCommands(ent *entity.Entity) error {
	base := b.topicBase(ent)

	err := b.mqtt.Subscribe(base+"/set", func(_ string, payload []byte) {
		on := strings.EqualFold(strings.TrimSpace(string(payload)), "ON")
		b.enqueue(command{id: ent.ID(), kind: "set_power", apply: func(ctx context.Context) error {
			return ent.Humidifier.SetPower(ctx, on)
		}})
	})
	if err != nil {
		return err
	}

	err = b.mqtt.Subscribe(base+"/mode/set", func(_ string, payload []byte) {
		mode := strings.TrimSpace(string(payload))
		b.enqueue(command{id: ent.ID(), kind: "set_mode", apply: func(ctx context.Context) error {
			return ent.Humidifier.SetMode(ctx, mode)
		}})
	})
	if err != nil {
		return err
	}

	return b.mqtt.Subscribe(base+"/target/set", func(_ string, payload []byte) {
		value, err := strconv.Atoi(strings.TrimSpace(string(payload)))
		if err != nil {
			logger.Warn("Ignoring non-numeric target for %s: %q", ent.ID(), payload)
			return
		}
		b.enqueue(command{id: ent.ID(), kind: "set_target_humidity", apply: func(ctx context.Context) error {
			return ent.Humidifier.SetTargetHumidity(ctx, value)
		}})
	})
}

func (b *Bridge) enqueue(cmd command) {
	select {
	case b.commands <- cmd:
	default:
		logger.Warn("Command queue full, dropping %s for %s", cmd.kind, cmd.id)
	}
}

func (b *Bridge) publishDiscovery(ent *entity.Entity) {
	base := b.topicBase(ent)
	uid := b.uniqueID(ent)

	device := hass.Device{
		Identifiers:  []string{uid},
		Name:         b.displayName(ent),
		Model:        ent.Handle.Model(),
		Manufacturer: "Levoit",
	}

	// Static range is the wide auto-mode one; the reconciler clamps to
	// the mode-specific range on every command
	cfg := hass.HumidifierConfig{
		Name:                       b.displayName(ent),
		UniqueID:                   uid,
		DeviceClass:                "humidifier",
		StateTopic:                 base + "/state",
		CommandTopic:               base + "/set",
		ModeStateTopic:             base + "/mode",
		ModeCommandTopic:           base + "/mode/set",
		TargetHumidityStateTopic:   base + "/target",
		TargetHumidityCommandTopic: base + "/target/set",
		CurrentHumidityTopic:       base + "/humidity",
		Modes:                      ent.Humidifier.Presets(),
		MinHumidity:                entity.MinHumidity,
		MaxHumidity:                entity.MaxHumidity,
		Device:                     device,
	}
	b.publishRetained(hass.ConfigTopic(b.opts.DiscoveryPrefix, "humidifier", uid), cfg)

	for _, sensor := range ent.Sensors {
		sensorCfg := hass.BinarySensorConfig{
			Name:        b.displayName(ent) + " " + sensor.Name(),
			UniqueID:    uid + "_" + string(sensor.Kind()),
			DeviceClass: "problem",
			StateTopic:  base + "/" + string(sensor.Kind()),
			PayloadOn:   "ON",
			PayloadOff:  "OFF",
			Device:      device,
		}
		b.publishRetained(hass.ConfigTopic(b.opts.DiscoveryPrefix, "binary_sensor", sensorCfg.UniqueID), sensorCfg)
	}
}

func (b *Bridge) publishState(ent *entity.Entity) {
	base := b.topicBase(ent)

	b.publish(base+"/state", onOff(ent.State.PowerOn))
	b.publish(base+"/mode", ent.Humidifier.Mode())
	b.publish(base+"/target", strconv.Itoa(ent.Humidifier.TargetHumidity()))
	b.publish(base+"/humidity", strconv.Itoa(ent.State.Humidity))

	for _, sensor := range ent.Sensors {
		b.publish(base+"/"+string(sensor.Kind()), onOff(sensor.IsOn()))
	}
}

func (b *Bridge) restore(ent *entity.Entity) {
	if b.store == nil {
		return
	}

	record, ok, err := b.store.Get(ent.ID())
	if err != nil {
		logger.Error("Failed to load stored state for %s: %v", ent.ID(), err)
		return
	}
	if !ok {
		return
	}

	if ent.SKU.Supports(record.Mode) {
		ent.State.Mode = record.Mode
	}
	if record.LastKnownFanSpeed >= entity.MinFanSpeed && record.LastKnownFanSpeed <= entity.MaxFanSpeed {
		ent.State.LastKnownFanSpeed = record.LastKnownFanSpeed
	}
}

func (b *Bridge) persist(ent *entity.Entity) {
	if b.store == nil {
		return
	}

	record := storage.EntityRecord{
		Mode:              ent.State.Mode,
		LastKnownFanSpeed: ent.State.LastKnownFanSpeed,
	}
	if err := b.store.Put(ent.ID(), record); err != nil {
		logger.Error("Failed to persist state for %s: %v", ent.ID(), err)
	}
}

func (b *Bridge) publish(topic string, payload interface{}) {
	if err := b.mqtt.Publish(topic, payload); err != nil {
		logger.Error("Publish to %s failed: %v", topic, err)
	}
}

func (b *Bridge) publishRetained(topic string, payload interface{}) {
	if err := b.mqtt.PublishRetained(topic, payload); err != nil {
		logger.Error("Publish to %s failed: %v", topic, err)
	}
}

func (b *Bridge) publishEvent(event *types.Event) {
	if b.bus != nil {
		b.bus.Publish(event)
	}
}

func (b *Bridge) topicBase(ent *entity.Entity) string {
	return fmt.Sprintf("%s/%s", b.opts.TopicPrefix, ent.ID())
}

func (b *Bridge) uniqueID(ent *entity.Entity) string {
	return "vesync_" + ent.ID()
}

func (b *Bridge) displayName(ent *entity.Entity) string {
	if name, ok := b.opts.NameOverrides[ent.ID()]; ok && name != "" {
		return name
	}
	return ent.Name()
}

func onOff(v bool) string {
	if v {
		return "ON"
	}
	return "OFF"
}
