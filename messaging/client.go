package messaging

import (
	"context"
	"fmt"
	"log"
	"sync"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	kafkago "github.com/segmentio/kafka-go"

	"warebot/config"
)

// backend is the transport-specific half of the client. Implementations
// wrap one broker library each.
type backend interface {
	connect() error
	publish(topic string, payload []byte) error
	subscribe(topic string, handler func(payload []byte)) error
	connected() bool
	close()
}

// Client is the broker client. The backend is picked once at construction;
// an unknown backend name fails there instead of on every call.
type Client struct {
	mu   sync.RWMutex
	b    backend
	name string
}

func NewClient(cfg *config.MessagingConfig) (*Client, error) {
	c := &Client{name: cfg.Backend}
	switch cfg.Backend {
	case "mqtt":
		c.b = &mqttBackend{cfg: &cfg.MQTT}
	case "kafka":
		c.b = &kafkaBackend{cfg: &cfg.Kafka, stop: make(chan struct{})}
	default:
		return nil, fmt.Errorf("unknown messaging backend: %s", cfg.Backend)
	}
	return c, nil
}

// Backend returns the configured backend name, for log lines.
func (c *Client) Backend() string { return c.name }

// Connect establishes the broker connection.
func (c *Client) Connect() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.b.connect(); err != nil {
		return fmt.Errorf("%s connect: %w", c.name, err)
	}
	return nil
}

// Publish sends a message to the given topic.
func (c *Client) Publish(topic string, payload []byte) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if err := c.b.publish(topic, payload); err != nil {
		return fmt.Errorf("%s publish %s: %w", c.name, topic, err)
	}
	return nil
}

// PublishEnvelope encodes and publishes an envelope to the given topic.
func (c *Client) PublishEnvelope(topic string, env *Envelope) error {
	data, err := env.Encode()
	if err != nil {
		return fmt.Errorf("encode envelope: %w", err)
	}
	return c.Publish(topic, data)
}

// Subscribe registers a handler for messages on a topic.
func (c *Client) Subscribe(topic string, handler func(payload []byte)) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.b.subscribe(topic, handler); err != nil {
		return fmt.Errorf("%s subscribe %s: %w", c.name, topic, err)
	}
	return nil
}

// IsConnected reports whether the client is usable.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.b.connected()
}

// Close shuts down the broker connection and any consumer loops.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.b.close()
}

// --- MQTT ---

type mqttBackend struct {
	cfg  *config.MQTTConfig
	conn mqtt.Client
}

func (m *mqttBackend) connect() error {
	opts := mqtt.NewClientOptions().
		AddBroker(fmt.Sprintf("tcp://%s:%d", m.cfg.Broker, m.cfg.Port)).
		SetClientID(m.cfg.ClientID).
		SetConnectTimeout(10 * time.Second).
		SetAutoReconnect(true).
		SetConnectRetry(true).
		SetConnectRetryInterval(5 * time.Second)

	conn := mqtt.NewClient(opts)
	token := conn.Connect()
	token.Wait()
	if err := token.Error(); err != nil {
		return err
	}
	m.conn = conn
	return nil
}

func (m *mqttBackend) publish(topic string, payload []byte) error {
	if !m.connected() {
		return fmt.Errorf("not connected")
	}
	token := m.conn.Publish(topic, 1, false, payload)
	token.Wait()
	return token.Error()
}

func (m *mqttBackend) subscribe(topic string, handler func(payload []byte)) error {
	if m.conn == nil {
		return fmt.Errorf("not connected")
	}
	token := m.conn.Subscribe(topic, 1, func(_ mqtt.Client, msg mqtt.Message) {
		handler(msg.Payload())
	})
	token.Wait()
	return token.Error()
}

func (m *mqttBackend) connected() bool {
	return m.conn != nil && m.conn.IsConnected()
}

func (m *mqttBackend) close() {
	if m.conn != nil {
		m.conn.Disconnect(1000)
		m.conn = nil
	}
}

// --- Kafka ---

type kafkaBackend struct {
	cfg     *config.KafkaConfig
	writer  *kafkago.Writer
	readers []*kafkago.Reader
	stop    chan struct{}
}

func (k *kafkaBackend) connect() error {
	k.writer = &kafkago.Writer{
		Addr:         kafkago.TCP(k.cfg.Brokers...),
		Balancer:     &kafkago.LeastBytes{},
		RequiredAcks: kafkago.RequireOne,
	}
	return nil
}

func (k *kafkaBackend) publish(topic string, payload []byte) error {
	if k.writer == nil {
		return fmt.Errorf("writer not initialized")
	}
	return k.writer.WriteMessages(context.Background(), kafkago.Message{
		Topic: topic,
		Value: payload,
	})
}

// subscribe starts one consumer loop per topic. Loops exit when the backend
// closes (reader.Close unblocks ReadMessage) or on a terminal read error.
func (k *kafkaBackend) subscribe(topic string, handler func(payload []byte)) error {
	reader := kafkago.NewReader(kafkago.ReaderConfig{
		Brokers: k.cfg.Brokers,
		Topic:   topic,
		GroupID: k.cfg.GroupID,
	})
	k.readers = append(k.readers, reader)

	go func() {
		for {
			msg, err := reader.ReadMessage(context.Background())
			if err != nil {
				select {
				case <-k.stop:
					// shutting down, silent exit
				default:
					log.Printf("kafka read %s: %v", topic, err)
				}
				return
			}
			handler(msg.Value)
		}
	}()
	return nil
}

func (k *kafkaBackend) connected() bool {
	return k.writer != nil
}

func (k *kafkaBackend) close() {
	close(k.stop)
	if k.writer != nil {
		k.writer.Close()
		k.writer = nil
	}
	for _, r := range k.readers {
		r.Close()
	}
	k.readers = nil
}
