// FilePath: internal/ingest/ingest.go
package ingest

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"

	mqtt "github.com/eclipse/paho.mqtt.golang"
	"github.com/itsatony/senser/internal/config"
	"github.com/itsatony/senser/internal/errors"
	"github.com/itsatony/senser/internal/models"
	nuts "github.com/vaudience/go-nuts"
)

// ReadingRecorder is the write path a message feeds into.
type ReadingRecorder interface {
	RecordReading(ctx context.Context, sensorID int64, reading *models.Reading) (*models.Reading, error)
}

// Counter counts handled messages by result.
type Counter interface {
	RecordIngest(result string)
}

// Subscriber feeds readings published on MQTT into the recorder. Failed
// messages are logged and counted, never retried.
type Subscriber struct {
	cfg      config.MQTTConfig
	recorder ReadingRecorder
	counter  Counter
	timeout  time.Duration
}

func New(cfg config.MQTTConfig, recorder ReadingRecorder, counter Counter, timeout time.Duration) *Subscriber {
	return &Subscriber{cfg: cfg, recorder: recorder, counter: counter, timeout: timeout}
}

// Run connects, subscribes and handles messages until ctx is done.
func (s *Subscriber) Run(ctx context.Context) error {
	opts := mqtt.NewClientOptions().
		AddBroker(s.cfg.Broker).
		SetClientID(s.cfg.ClientID).
		SetAutoReconnect(true).
		SetOrderMatters(false)
	client := mqtt.NewClient(opts)

	if token := client.Connect(); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt connect: %w", token.Error())
	}
	defer client.Disconnect(250)

	handler := func(_ mqtt.Client, msg mqtt.Message) {
		_ = s.HandleMessage(ctx, msg.Topic(), msg.Payload())
	}
	if token := client.Subscribe(s.cfg.Topic, s.cfg.QoS, handler); token.Wait() && token.Error() != nil {
		return fmt.Errorf("mqtt subscribe %s: %w", s.cfg.Topic, token.Error())
	}
	nuts.L.Infof("[Ingest] Subscribed to %s on %s", s.cfg.Topic, s.cfg.Broker)

	<-ctx.Done()
	if token := client.Unsubscribe(s.cfg.Topic); token.WaitTimeout(time.Second) && token.Error() != nil {
		nuts.L.Warnf("[Ingest] Unsubscribe failed: %v", token.Error())
	}
	nuts.L.Infof("[Ingest] Stopped")
	return nil
}

// HandleMessage decodes one message and records it.
func (s *Subscriber) HandleMessage(ctx context.Context, topic string, payload []byte) error {
	err := s.handle(ctx, topic, payload)
	if err != nil {
		nuts.L.Errorf("[Ingest] Message on %s dropped: %v", topic, err)
		s.counter.RecordIngest("error")
		return err
	}
	s.counter.RecordIngest("ok")
	return nil
}

func (s *Subscriber) handle(ctx context.Context, topic string, payload []byte) error {
	sensorID, err := SensorIDFromTopic(s.cfg.Topic, topic)
	if err != nil {
		return errors.NewValidationError(err.Error(), err)
	}

	reading := &models.Reading{}
	if err := json.Unmarshal(payload, reading); err != nil {
		return errors.NewValidationError("invalid reading payload", err)
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()
	_, err = s.recorder.RecordReading(ctx, sensorID, reading)
	return err
}

// SensorIDFromTopic extracts the sensor id from the segment of topic that the
// single-level wildcard of filter matches.
func SensorIDFromTopic(filter, topic string) (int64, error) {
	filterParts := strings.Split(filter, "/")
	topicParts := strings.Split(topic, "/")
	if len(filterParts) != len(topicParts) {
		return 0, fmt.Errorf("topic %q does not match %q", topic, filter)
	}

	idx := -1
	for i, part := range filterParts {
		switch {
		case part == "+":
			if idx < 0 {
				idx = i
			}
		case part != topicParts[i]:
			return 0, fmt.Errorf("topic %q does not match %q", topic, filter)
		}
	}
	if idx < 0 {
		return 0, fmt.Errorf("filter %q has no sensor id wildcard", filter)
	}

	id, err := strconv.ParseInt(topicParts[idx], 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid sensor id %q in topic %q", topicParts[idx], topic)
	}
	return id, nil
}
