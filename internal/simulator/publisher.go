package simulator

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/google/uuid"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// Publisher abstracts the broker so the replay loop can be tested with a
// mock.
type Publisher interface {
	Publish(topic string, payload []byte) error
}

// mqttPublisher is the real Publisher backed by a paho client.
type mqttPublisher struct {
	client mqtt.Client
	qos    byte
}

// Connect dials the broker and returns a Publisher plus a close function.
func Connect(cfg config.Simulator) (Publisher, func(), error) {
	opts := mqtt.NewClientOptions().
		AddBroker(cfg.BrokerURL).
		SetClientID(fmt.Sprintf("%s-%s", cfg.ClientID, uuid.NewString()[:8])).
		SetKeepAlive(60 * time.Second).
		SetAutoReconnect(true)

	client := mqtt.NewClient(opts)
	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return nil, nil, fmt.Errorf("broker connect %s: %w", cfg.BrokerURL, token.Error())
	}

	slog.Info("connected to broker", "broker", cfg.BrokerURL)
	return &mqttPublisher{client: client, qos: 1}, func() { client.Disconnect(250) }, nil
}

func (p *mqttPublisher) Publish(topic string, payload []byte) error {
	token := p.client.Publish(topic, p.qos, false, payload)
	token.Wait()
	return token.Error()
}

// Run replays rows one message per interval until MaxRows messages have
// been sent or ctx is cancelled. With Loop set the dataset restarts from
// the top when exhausted. Rows without a usable timestamp are stamped with
// the current UTC time at publish.
func Run(ctx context.Context, cfg config.Simulator, pub Publisher, rows []SensorRow) int {
	enc := NewLabelEncoder()
	sent := 0

	slog.Info("replay started",
		"rows", len(rows),
		"topic", cfg.Topic,
		"device_id", cfg.DeviceID,
		"interval", cfg.Interval,
		"max_rows", cfg.MaxRows,
		"loop", cfg.Loop,
	)

	for sent < cfg.MaxRows {
		for _, row := range rows {
			if sent >= cfg.MaxRows {
				break
			}

			msg := models.WireMessage{
				TS:       normalizeTS(row.TS),
				DeviceID: cfg.DeviceID,
				Metrics: map[string]float64{
					"temperature":   row.Temperature,
					"humidity":      row.Humidity,
					"soil_moisture": row.SoilMoisture,
					"light_level":   row.LightLevel,
				},
				Class: enc.Encode(row.Label),
			}

			payload, err := json.Marshal(msg)
			if err != nil {
				slog.Error("marshal message", "error", err)
				continue
			}

			if err := pub.Publish(cfg.Topic, payload); err != nil {
				slog.Error("publish failed", "topic", cfg.Topic, "error", err)
			} else {
				sent++
				if sent <= 20 || sent%1000 == 0 {
					slog.Info("published", "sent", sent, "max_rows", cfg.MaxRows)
				}
			}

			select {
			case <-time.After(cfg.Interval):
			case <-ctx.Done():
				slog.Info("replay stopped", "sent", sent)
				return sent
			}
		}

		if !cfg.Loop {
			break
		}
		slog.Info("dataset exhausted, looping")
	}

	slog.Info("replay done", "sent", sent)
	return sent
}

// normalizeTS coerces a dataset timestamp to RFC3339 UTC. Unparseable or
// absent values get the current time, mirroring a live sensor stamping at
// capture.
func normalizeTS(ts string) string {
	if ts == "" {
		return time.Now().UTC().Format(time.RFC3339)
	}

	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02 15:04:05"} {
		if t, err := time.Parse(layout, ts); err == nil {
			return t.UTC().Format(time.RFC3339)
		}
	}
	return time.Now().UTC().Format(time.RFC3339)
}
