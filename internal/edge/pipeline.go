package edge

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/YusufAkyuz/IoT-Project/internal/models"
)

// writeTimeout bounds a single insert including its retries. It is
// deliberately generous: the retry budget, not this timeout, is what
// normally decides a reading's fate.
const writeTimeout = 30 * time.Second

// Pipeline wires decode → validate → evaluate → write into one loop. It is
// the process's only store writer; messages are processed strictly one at
// a time in delivery order, which is the whole concurrency design — no
// locks, no parallel inserts against the store file.
type Pipeline struct {
	eval       Evaluator
	writer     RecordWriter
	deliveries <-chan Delivery

	now func() time.Time
}

// NewPipeline creates a Pipeline consuming the given delivery queue.
func NewPipeline(eval Evaluator, writer RecordWriter, deliveries <-chan Delivery) *Pipeline {
	return &Pipeline{
		eval:       eval,
		writer:     writer,
		deliveries: deliveries,
		now:        time.Now,
	}
}

// Run processes deliveries until ctx is cancelled. Cancellation is
// cooperative: it is honored between messages, so the in-flight message
// always completes or explicitly fails before Run returns. Per-message
// errors are contained here — a malformed payload or an exhausted write
// budget is logged and counted, never propagated.
func (p *Pipeline) Run(ctx context.Context) {
	slog.Info("pipeline started", "alert_rule", p.eval.Describe())

	for {
		select {
		case <-ctx.Done():
			slog.Info("pipeline stopped")
			return
		case d, ok := <-p.deliveries:
			if !ok {
				slog.Info("delivery queue closed, pipeline stopped")
				return
			}
			p.processOne(d)
		}
	}
}

// processOne runs a single decode → validate → evaluate → write cycle.
// It uses its own timeout context, not Run's, so shutdown never cuts an
// insert in half.
func (p *Pipeline) processOne(d Delivery) {
	reading, err := Decode(d.Payload)
	if err != nil {
		p.logDropped(d, err)
		return
	}

	rec := models.Record{
		DeviceID:     reading.DeviceID,
		TS:           reading.TS,
		Temperature:  reading.Temperature,
		Humidity:     reading.Humidity,
		SoilMoisture: reading.SoilMoisture,
		LightLevel:   reading.LightLevel,
		ClassCode:    reading.ClassCode,
		AlertFlag:    p.eval.Alert(reading),
		IngestedAt:   p.now().UTC(),
	}

	ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
	defer cancel()

	rowID, outcome, err := p.writer.Insert(ctx, rec)
	if err != nil {
		droppedTotal.WithLabelValues("write").Inc()
		slog.Error("reading dropped, store write failed",
			"device_id", rec.DeviceID,
			"ts", rec.TS,
			"error", err,
		)
		return
	}

	ingestedTotal.Inc()
	if rec.AlertFlag {
		alertsTotal.Inc()
	}

	slog.Info("reading ingested",
		"row_id", rowID,
		"device_id", rec.DeviceID,
		"ts", rec.TS,
		"alert", rec.AlertFlag,
		"retried", outcome == WriteRetried,
	)
}

// logDropped records a rejected message with enough context to debug it:
// the error kind, the topic, and a payload snippet.
func (p *Pipeline) logDropped(d Delivery, err error) {
	var decodeErr *DecodeError
	var validationErr *ValidationError

	reason := "decode"
	switch {
	case errors.As(err, &validationErr):
		reason = "validation"
	case errors.As(err, &decodeErr):
		reason = "decode"
	}

	droppedTotal.WithLabelValues(reason).Inc()
	slog.Warn("message dropped",
		"reason", reason,
		"topic", d.Topic,
		"payload", snippet(d.Payload),
		"error", err,
	)
}
