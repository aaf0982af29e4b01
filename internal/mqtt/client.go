package mqtt

import (
	"encoding/json"
	"fmt"
	"io"
	"log"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"

	"vesync-bridge/internal/logger"
)

// Config holds MQTT connection configuration
type Config struct {
	Broker   string
	ClientID string
	Username string
	Password string
}

// Client wraps the paho client with connection handling and payload
// marshaling
type Client struct {
	client mqtt.Client
}

// MessageHandler receives a raw payload for a subscribed topic
type MessageHandler func(topic string, payload []byte)

// NewClient connects to the broker
func NewClient(cfg Config) (*Client, error) {
	// Disable MQTT library internal logging (we'll handle it ourselves)
	mqtt.ERROR = log.New(io.Discard, "", 0)
	mqtt.CRITICAL = log.New(io.Discard, "", 0)
	mqtt.WARN = log.New(io.Discard, "", 0)

	opts := mqtt.NewClientOptions()

	// Ensure broker URL has tcp:// prefix
	brokerURL := cfg.Broker
	if !strings.HasPrefix(brokerURL, "tcp://") && !strings.HasPrefix(brokerURL, "ssl://") {
		brokerURL = "tcp://" + brokerURL
	}

	logger.Debug("Connecting to MQTT broker at %s...", brokerURL)
	opts.AddBroker(brokerURL)
	opts.SetClientID(cfg.ClientID)

	if cfg.Username != "" {
		opts.SetUsername(cfg.Username)
		opts.SetPassword(cfg.Password)
	}

	opts.SetAutoReconnect(true)
	opts.SetConnectRetryInterval(5 * time.Second)
	opts.SetConnectTimeout(10 * time.Second)
	opts.SetWriteTimeout(10 * time.Second)
	opts.SetPingTimeout(10 * time.Second)
	opts.SetKeepAlive(60 * time.Second)

	opts.OnConnect = func(c mqtt.Client) {
		logger.Debug("MQTT connected to %s", brokerURL)
	}

	opts.OnConnectionLost = func(c mqtt.Client, err error) {
		logger.Error("MQTT connection lost: %v", err)
	}

	client := mqtt.NewClient(opts)
	token := client.Connect()

	if !token.WaitTimeout(15 * time.Second) {
		return nil, fmt.Errorf("connection timeout after 15 seconds")
	}

	if token.Error() != nil {
		return nil, fmt.Errorf("failed to connect to MQTT: %w", token.Error())
	}

	logger.Debug("MQTT connection established successfully")

	return &Client{client: client}, nil
}

// Publish publishes a message to a topic
func (c *Client) Publish(topic string, payload interface{}) error {
	return c.publish(topic, payload, false)
}

// PublishRetained publishes a retained message, used for discovery
// configs that must survive broker reconnects
func (c *Client) PublishRetained(topic string, payload interface{}) error {
	return c.publish(topic, payload, true)
}

func (c *Client) publish(topic string, payload interface{}, retained bool) error {
	var data []byte
	var err error

	switch v := payload.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		data, err = json.Marshal(payload)
		if err != nil {
			return fmt.Errorf("failed to marshal payload: %w", err)
		}
	}

	token := c.client.Publish(topic, 0, retained, data)
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish: %w", token.Error())
	}

	return nil
}

// Subscribe subscribes to a topic and forwards payloads to handler
func (c *Client) Subscribe(topic string, handler MessageHandler) error {
	token := c.client.Subscribe(topic, 0, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Topic(), msg.Payload())
	})
	if token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to %s: %w", topic, token.Error())
	}

	logger.Debug("Subscribed to topic: %s", topic)
	return nil
}

// IsConnected reports broker connectivity
func (c *Client) IsConnected() bool {
	return c.client.IsConnected()
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	c.client.Disconnect(250)
	logger.Debug("MQTT disconnected")
}
