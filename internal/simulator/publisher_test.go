package simulator

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/config"
	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

type mockPublisher struct {
	topics   []string
	payloads [][]byte
}

func (m *mockPublisher) Publish(topic string, payload []byte) error {
	m.topics = append(m.topics, topic)
	m.payloads = append(m.payloads, payload)
	return nil
}

func testRows() []SensorRow {
	return []SensorRow{
		{TS: "2025-01-01 08:00:00", Temperature: 21.4, Humidity: 48.2, SoilMoisture: 31.5, LightLevel: 412.0, Label: "healthy"},
		{TS: "2025-01-01 08:01:00", Temperature: 23.2, Humidity: 61.0, SoilMoisture: 28.3, LightLevel: 455.3, Label: "stressed"},
	}
}

func testCfg(maxRows int, loop bool) config.Simulator {
	return config.Simulator{
		Topic:    "greenhouse/telemetry",
		DeviceID: "gh_01",
		Interval: time.Millisecond,
		MaxRows:  maxRows,
		Loop:     loop,
	}
}

func TestRun_PublishesWireMessages(t *testing.T) {
	pub := &mockPublisher{}
	sent := Run(context.Background(), testCfg(2, false), pub, testRows())

	if sent != 2 {
		t.Fatalf("sent: got %d, want 2", sent)
	}
	if pub.topics[0] != "greenhouse/telemetry" {
		t.Errorf("topic: got %q", pub.topics[0])
	}

	var msg models.WireMessage
	if err := json.Unmarshal(pub.payloads[0], &msg); err != nil {
		t.Fatalf("unmarshal published payload: %v", err)
	}
	if msg.DeviceID != "gh_01" {
		t.Errorf("device_id: got %q", msg.DeviceID)
	}
	if msg.Metrics["humidity"] != 48.2 || msg.Metrics["light_level"] != 412.0 {
		t.Errorf("metrics: got %v", msg.Metrics)
	}
	if msg.TS != "2025-01-01T08:00:00Z" {
		t.Errorf("ts not normalized to RFC3339 UTC: got %q", msg.TS)
	}
	if msg.Class != 0 {
		t.Errorf("class for first-seen label: got %d, want 0", msg.Class)
	}

	var second models.WireMessage
	if err := json.Unmarshal(pub.payloads[1], &second); err != nil {
		t.Fatalf("unmarshal second payload: %v", err)
	}
	if second.Class != 1 {
		t.Errorf("class for second label: got %d, want 1", second.Class)
	}
}

func TestRun_StopsAtMaxRowsWithoutLoop(t *testing.T) {
	pub := &mockPublisher{}
	sent := Run(context.Background(), testCfg(10, false), pub, testRows())

	if sent != 2 {
		t.Errorf("dataset has 2 rows, loop off: sent %d, want 2", sent)
	}
}

func TestRun_LoopReplaysUntilMaxRows(t *testing.T) {
	pub := &mockPublisher{}
	sent := Run(context.Background(), testCfg(5, true), pub, testRows())

	if sent != 5 {
		t.Errorf("loop on: sent %d, want 5", sent)
	}
}

func TestRun_CancelStopsReplay(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pub := &mockPublisher{}
	sent := Run(ctx, testCfg(100, true), pub, testRows())

	// Cancellation lands on the inter-message wait, so at most one
	// message goes out.
	if sent > 1 {
		t.Errorf("cancelled context: sent %d, want at most 1", sent)
	}
}

func TestNormalizeTS(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"2025-01-01 08:00:00", "2025-01-01T08:00:00Z"},
		{"2025-01-01T08:00:00", "2025-01-01T08:00:00Z"},
		{"2025-01-01T08:00:00Z", "2025-01-01T08:00:00Z"},
	}
	for _, tt := range tests {
		if got := normalizeTS(tt.in); got != tt.want {
			t.Errorf("normalizeTS(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	if got := normalizeTS("not a time"); got == "" {
		t.Error("unparseable ts should fall back to now, got empty")
	}
}
