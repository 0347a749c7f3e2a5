package kafka

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/couchcryptid/metar-minima/internal/config"
	"github.com/couchcryptid/metar-minima/internal/domain"
	kafkago "github.com/segmentio/kafka-go"
)

// Writer produces verdict messages to a Kafka topic.
// It implements pipeline.BatchLoader.
type Writer struct {
	writer *kafkago.Writer
	logger *slog.Logger
}

// NewWriter creates a Kafka producer for the configured sink topic.
func NewWriter(cfg *config.Config, logger *slog.Logger) *Writer {
	w := &kafkago.Writer{
		Addr:         kafkago.TCP(cfg.KafkaBrokers...),
		Topic:        cfg.KafkaSinkTopic,
		Balancer:     &kafkago.Hash{},
		RequiredAcks: kafkago.RequireAll,
	}
	return &Writer{writer: w, logger: logger}
}

// LoadBatch serializes and publishes analyzed reports to the sink topic in
// a single WriteMessages call. Messages are keyed by station so one
// station's reports stay ordered within a partition.
func (w *Writer) LoadBatch(ctx context.Context, reports []domain.AnalyzedReport) error {
	if len(reports) == 0 {
		return nil
	}
	msgs := make([]kafkago.Message, len(reports))
	for i := range reports {
		msg, err := serializeToMessage(reports[i])
		if err != nil {
			return err
		}
		msgs[i] = msg
	}
	if err := w.writer.WriteMessages(ctx, msgs...); err != nil {
		return fmt.Errorf("write verdicts: %w", err)
	}
	w.logger.Debug("verdicts published", "topic", w.writer.Topic, "count", len(msgs))
	return nil
}

func (w *Writer) Close() error {
	return w.writer.Close()
}

// verdictMessage is the wire form of an analyzed report.
type verdictMessage struct {
	Station    string                `json:"station"`
	ObservedAt time.Time             `json:"observed_at"`
	Visibility int                   `json:"visibility"`
	Clouds     []domain.CloudLayer   `json:"clouds"`
	Raw        string                `json:"raw"`
	Verdicts   []domain.LimitVerdict `json:"verdicts"`
}

// MessageKey returns the partition key for an observation: its station code.
// The hash balancer maps equal keys to one partition.
func MessageKey(obs domain.Observation) string {
	return obs.Station
}

// serializeToMessage marshals an AnalyzedReport into a Kafka message.
func serializeToMessage(report domain.AnalyzedReport) (kafkago.Message, error) {
	obs := report.Observation
	verdicts := report.Verdicts
	if verdicts == nil {
		verdicts = []domain.LimitVerdict{}
	}
	clouds := obs.Clouds
	if clouds == nil {
		clouds = []domain.CloudLayer{}
	}

	data, err := json.Marshal(verdictMessage{
		Station:    obs.Station,
		ObservedAt: obs.Time.UTC(),
		Visibility: obs.Visibility,
		Clouds:     clouds,
		Raw:        obs.Raw,
		Verdicts:   verdicts,
	})
	if err != nil {
		return kafkago.Message{}, fmt.Errorf("serialize verdict: %w", err)
	}
	return kafkago.Message{
		Key:   []byte(MessageKey(obs)),
		Value: data,
		Headers: []kafkago.Header{
			{Key: "station", Value: []byte(obs.Station)},
			{Key: "observed_at", Value: []byte(obs.Time.UTC().Format(time.RFC3339))},
		},
	}, nil
}

// DecodeMessage is the inverse of the writer's encoding, for consumers of
// the verdict topic.
func DecodeMessage(msg kafkago.Message) (domain.AnalyzedReport, error) {
	var m verdictMessage
	if err := json.Unmarshal(msg.Value, &m); err != nil {
		return domain.AnalyzedReport{}, fmt.Errorf("decode verdict: %w", err)
	}
	return domain.AnalyzedReport{
		Observation: domain.Observation{
			Station:    m.Station,
			Time:       m.ObservedAt,
			Visibility: m.Visibility,
			Clouds:     m.Clouds,
			Raw:        m.Raw,
		},
		Verdicts: m.Verdicts,
	}, nil
}
