package mqtt

import (
	"encoding/json"
	"fmt"
	"log"
	"strconv"
	"strings"
	"time"

	"github.com/HydroTrack-Team/hydrotrack_backend/internal/models"
	"github.com/HydroTrack-Team/hydrotrack_backend/internal/services"
	mqtt "github.com/eclipse/paho.mqtt.golang"
)

// Client wraps the MQTT client with water monitoring specific functionality
type Client struct {
	client       mqtt.Client
	parser       *services.TelemetryParser
	dataHandler  func(*models.RawReading)
	errorHandler func(error)
	isConnected  bool

	telemetryTopic string
	processedTopic string // printf-style, sensor id substituted per publish
}

// Config holds MQTT connection configuration
type Config struct {
	BrokerURL      string
	ClientID       string
	Username       string
	Password       string
	KeepAlive      time.Duration
	PingTimeout    time.Duration
	ConnectRetry   bool
	TopicTelemetry string
	TopicProcessed string
}

// DefaultConfig returns default MQTT configuration
func DefaultConfig() *Config {
	return &Config{
		BrokerURL:      "tcp://localhost:1883",
		ClientID:       "hydrotrack_backend",
		Username:       "",
		Password:       "",
		KeepAlive:      30 * time.Second,
		PingTimeout:    10 * time.Second,
		ConnectRetry:   true,
		TopicTelemetry: "hydrotrack/stations/+/raw",
		TopicProcessed: "hydrotrack/stations/%d/processed",
	}
}

// NewClient creates a new MQTT client for station telemetry
func NewClient(config *Config) *Client {
	opts := mqtt.NewClientOptions()
	opts.AddBroker(config.BrokerURL)
	opts.SetClientID(config.ClientID)
	opts.SetKeepAlive(config.KeepAlive)
	opts.SetPingTimeout(config.PingTimeout)
	opts.SetCleanSession(true)

	if config.Username != "" {
		opts.SetUsername(config.Username)
	}
	if config.Password != "" {
		opts.SetPassword(config.Password)
	}

	client := &Client{
		parser:         services.NewTelemetryParser(),
		isConnected:    false,
		telemetryTopic: config.TopicTelemetry,
		processedTopic: config.TopicProcessed,
	}

	// Set connection handlers
	opts.SetDefaultPublishHandler(client.defaultMessageHandler)
	opts.SetOnConnectHandler(client.onConnect)
	opts.SetConnectionLostHandler(client.onConnectionLost)

	client.client = mqtt.NewClient(opts)

	return client
}

// Connect establishes connection to MQTT broker
func (c *Client) Connect() error {
	log.Println("Connecting to MQTT broker...")

	if token := c.client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to connect to MQTT broker: %w", token.Error())
	}

	log.Println("Successfully connected to MQTT broker")
	c.isConnected = true
	return nil
}

// Disconnect closes the MQTT connection
func (c *Client) Disconnect() {
	if c.isConnected {
		c.client.Disconnect(250)
		c.isConnected = false
		log.Println("Disconnected from MQTT broker")
	}
}

// IsConnected returns the connection status
func (c *Client) IsConnected() bool {
	return c.isConnected && c.client.IsConnected()
}

// SubscribeToTelemetry subscribes to the station telemetry topic. The topic
// wildcard segment carries the numeric sensor id.
func (c *Client) SubscribeToTelemetry() error {
	if token := c.client.Subscribe(c.telemetryTopic, 1, c.telemetryHandler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to subscribe to topic %s: %w", c.telemetryTopic, token.Error())
	}
	log.Printf("Subscribed to topic: %s", c.telemetryTopic)

	return nil
}

// SetDataHandler sets the callback function for parsed raw readings
func (c *Client) SetDataHandler(handler func(*models.RawReading)) {
	c.dataHandler = handler
}

// SetErrorHandler sets the callback function for errors
func (c *Client) SetErrorHandler(handler func(error)) {
	c.errorHandler = handler
}

// telemetryHandler processes incoming station telemetry messages
func (c *Client) telemetryHandler(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received telemetry on topic %s: %s", msg.Topic(), string(msg.Payload()))

	sensorID, err := sensorIDFromTopic(msg.Topic())
	if err != nil {
		log.Printf("Failed to extract sensor id: %v", err)
		if c.errorHandler != nil {
			c.errorHandler(fmt.Errorf("telemetry topic parsing failed: %w", err))
		}
		return
	}

	// Try parsing as JSON first (preferred format)
	reading, err := c.parser.ParseTelemetryJSON(msg.Payload(), sensorID)
	if err != nil {
		// Fallback to comma-separated format
		reading, err = c.parser.ParseTelemetryString(string(msg.Payload()), sensorID)
		if err != nil {
			log.Printf("Failed to parse telemetry: %v", err)
			if c.errorHandler != nil {
				c.errorHandler(fmt.Errorf("telemetry parsing failed: %w", err))
			}
			return
		}
	}

	log.Printf("Parsed raw reading: %s", c.parser.FormatRawReading(reading))

	// Call the data handler if set
	if c.dataHandler != nil {
		c.dataHandler(reading)
	}
}

// sensorIDFromTopic extracts the numeric sensor id from a telemetry topic
// like "hydrotrack/stations/42/raw"
func sensorIDFromTopic(topic string) (int, error) {
	parts := strings.Split(topic, "/")
	if len(parts) < 2 {
		return 0, fmt.Errorf("unexpected topic shape: %s", topic)
	}

	sensorID, err := strconv.Atoi(parts[len(parts)-2])
	if err != nil || sensorID <= 0 {
		return 0, fmt.Errorf("invalid sensor id in topic %s", topic)
	}

	return sensorID, nil
}

// defaultMessageHandler handles messages on unsubscribed topics
func (c *Client) defaultMessageHandler(client mqtt.Client, msg mqtt.Message) {
	log.Printf("Received message on unhandled topic %s: %s", msg.Topic(), string(msg.Payload()))
}

// onConnect callback when connection is established
func (c *Client) onConnect(client mqtt.Client) {
	log.Println("MQTT client connected")
	c.isConnected = true
}

// onConnectionLost callback when connection is lost
func (c *Client) onConnectionLost(client mqtt.Client, err error) {
	log.Printf("MQTT connection lost: %v", err)
	c.isConnected = false

	if c.errorHandler != nil {
		c.errorHandler(fmt.Errorf("MQTT connection lost: %w", err))
	}
}

// PublishProcessedReading publishes a processed reading to the station's
// outbound topic so external consumers can follow the processed stream
func (c *Client) PublishProcessedReading(reading *models.ProcessedReading) error {
	payload, err := json.Marshal(reading)
	if err != nil {
		return fmt.Errorf("failed to marshal processed reading: %w", err)
	}

	topic := fmt.Sprintf(c.processedTopic, reading.SensorID)
	if token := c.client.Publish(topic, 1, false, payload); token.Wait() && token.Error() != nil {
		return fmt.Errorf("failed to publish processed reading: %w", token.Error())
	}

	log.Printf("Published processed reading to %s", topic)
	return nil
}
