package edge

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
)

// ConnState is the subscriber's connection state machine. Transitions:
// Disconnected → Connecting on a connect attempt, Connecting → Subscribed
// once the topic subscription is acknowledged, any → Disconnected on a
// connection loss.
type ConnState int32

const (
	StateDisconnected ConnState = iota
	StateConnecting
	StateSubscribed
)

func (s ConnState) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateSubscribed:
		return "subscribed"
	default:
		return "disconnected"
	}
}

// Delivery is one raw message handed from the broker to the pipeline.
type Delivery struct {
	Topic     string
	Payload   []byte
	Duplicate bool
}

// Subscriber maintains the subscription to the telemetry topic and feeds
// raw deliveries into a bounded queue. The paho client invokes handlers on
// its own network goroutine; the handler only enqueues, so the pipeline
// goroutine stays the sole store writer no matter how the client schedules
// callbacks internally. When the queue is full the message is dropped and
// counted rather than blocking the client's receive loop.
type Subscriber struct {
	client  mqtt.Client
	broker  string
	topic   string
	queue   chan Delivery
	state   atomic.Int32
	backoff time.Duration
	maxWait time.Duration
}

// NewSubscriber builds the MQTT client. The configured client id gets a
// uuid suffix so a restarted or duplicate process never steals the live
// session on the broker.
func NewSubscriber(cfg config.Edge) *Subscriber {
	s := &Subscriber{
		broker:  cfg.BrokerURL,
		topic:   cfg.Topic,
		queue:   make(chan Delivery, cfg.QueueSize),
		backoff: cfg.ConnectBackoff,
		maxWait: cfg.ConnectMaxWait,
	}

	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true).
		SetMaxReconnectInterval(cfg.ConnectMaxWait).
		SetOrderMatters(true).
		SetOnConnectHandler(s.onConnect).
		SetConnectionLostHandler(s.onConnectionLost)

	s.client = mqtt.NewClient(opts)
	return s
}

// Start connects to the broker, retrying indefinitely with capped
// exponential backoff until the first connection succeeds or ctx is
// cancelled. After Start returns nil, reconnects and resubscribes are
// handled by the client's handlers and never surface as errors.
func (s *Subscriber) Start(ctx context.Context) error {
	delay := s.backoff

	for {
		s.state.Store(int32(StateConnecting))
		slog.Info("connecting to broker", "broker", s.broker)

		token := s.client.Connect()
		token.Wait()
		if token.Error() == nil {
			return nil
		}

		cerr := &ConnectError{Broker: s.broker, Err: token.Error()}
		s.state.Store(int32(StateDisconnected))
		slog.Warn("broker connect failed, backing off", "error", cerr, "retry_in", delay)

		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return ctx.Err()
		}
		if delay *= 2; delay > s.maxWait {
			delay = s.maxWait
		}
	}
}

// Deliveries returns the bounded queue feeding the pipeline loop.
func (s *Subscriber) Deliveries() <-chan Delivery {
	return s.queue
}

// State returns the current connection state.
func (s *Subscriber) State() ConnState {
	return ConnState(s.state.Load())
}

// Close disconnects from the broker, allowing in-flight handler work a
// short grace period to finish.
func (s *Subscriber) Close() {
	s.client.Disconnect(250)
	s.state.Store(int32(StateDisconnected))
	slog.Info("disconnected from broker", "broker", s.broker)
}

// onConnect runs on every connect and reconnect. The subscription is
// re-established here: until it is acknowledged the subscriber does not
// claim to be delivering, so a reconnect without a resubscribe can never
// silently drop the topic.
func (s *Subscriber) onConnect(client mqtt.Client) {
	token := client.Subscribe(s.topic, 1, s.onMessage)
	token.Wait()
	if err := token.Error(); err != nil {
		slog.Error("subscribe failed, forcing reconnect", "topic", s.topic, "error", err)
		// Drop the connection; auto-reconnect drives us through onConnect again.
		client.Disconnect(0)
		return
	}

	s.state.Store(int32(StateSubscribed))
	slog.Info("subscribed", "topic", s.topic, "broker", s.broker)
}

// onConnectionLost is observability only — the paho client reconnects on
// its own and onConnect restores the subscription.
func (s *Subscriber) onConnectionLost(_ mqtt.Client, err error) {
	s.state.Store(int32(StateConnecting))
	reconnectsTotal.Inc()
	slog.Warn("broker connection lost, reconnecting", "broker", s.broker, "error", err)
}

// onMessage enqueues one raw delivery in broker order.
func (s *Subscriber) onMessage(_ mqtt.Client, msg mqtt.Message) {
	d := Delivery{
		Topic:     msg.Topic(),
		Payload:   msg.Payload(),
		Duplicate: msg.Duplicate(),
	}

	select {
	case s.queue <- d:
	default:
		droppedTotal.WithLabelValues("queue_full").Inc()
		slog.Warn("delivery queue full, dropping message",
			"topic", d.Topic,
			"payload", snippet(d.Payload),
		)
	}
}
