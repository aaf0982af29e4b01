// ha-test is a small manual check tool: it publishes a sample humidifier
// discovery config the way the bridge does, or tails the bridge's state
// and command topics, so broker and Home Assistant wiring can be
// verified without real devices.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"vesync-bridge/internal/hass"
)

func main() {
	broker := flag.String("broker", "tcp://localhost:1883", "MQTT broker URL")
	action := flag.String("action", "publish", "Action: publish or subscribe")
	prefix := flag.String("prefix", "vesync", "Bridge topic prefix")
	flag.Parse()

	opts := mqtt.NewClientOptions()
	opts.AddBroker(*broker)
	opts.SetClientID("vesync_bridge_test_tool")

	client := mqtt.NewClient(opts)
	token := client.Connect()
	if token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to connect: %v", token.Error())
	}
	defer client.Disconnect(250)

	switch *action {
	case "publish":
		publishSample(client, *prefix)
	case "subscribe":
		subscribeAll(client, *prefix)
	default:
		log.Fatalf("Unknown action: %s", *action)
	}
}

func publishSample(client mqtt.Client, prefix string) {
	base := prefix + "/test-humidifier"

	cfg := hass.HumidifierConfig{
		Name:                       "Test Humidifier",
		UniqueID:                   "vesync_test_humidifier",
		DeviceClass:                "humidifier",
		StateTopic:                 base + "/state",
		CommandTopic:               base + "/set",
		ModeStateTopic:             base + "/mode",
		ModeCommandTopic:           base + "/mode/set",
		TargetHumidityStateTopic:   base + "/target",
		TargetHumidityCommandTopic: base + "/target/set",
		Modes:                      []string{"auto", "manual", "sleep"},
		MinHumidity:                0,
		MaxHumidity:                100,
		Device: hass.Device{
			Identifiers:  []string{"vesync_test_humidifier"},
			Name:         "Test Humidifier",
			Model:        "Classic300S",
			Manufacturer: "Levoit",
		},
	}

	payload, err := json.Marshal(cfg)
	if err != nil {
		log.Fatalf("Failed to marshal config: %v", err)
	}

	topic := hass.ConfigTopic(hass.DefaultPrefix, "humidifier", "vesync_test_humidifier")
	fmt.Printf("Publishing to %s...\n", topic)
	token := client.Publish(topic, 1, true, payload)
	token.Wait()
	if token.Error() != nil {
		log.Fatalf("Failed to publish: %v", token.Error())
	}
	fmt.Println("✓ Published discovery config (retained)")

	for topic, value := range map[string]string{
		base + "/state":  "ON",
		base + "/mode":   "auto",
		base + "/target": "45",
	} {
		stateToken := client.Publish(topic, 0, false, value)
		stateToken.Wait()
		fmt.Printf("✓ Published %s: %s\n", topic, value)
	}
}

func subscribeAll(client mqtt.Client, prefix string) {
	topic := prefix + "/#"
	token := client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		fmt.Printf("%s: %s\n", msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		log.Fatalf("Failed to subscribe: %v", token.Error())
	}

	fmt.Printf("Subscribed to %s, Ctrl+C to stop\n", topic)

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan
}
