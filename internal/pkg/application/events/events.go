package events

import (
	"context"
	"errors"
	"fmt"
	"io"

	cloudevents "github.com/cloudevents/sdk-go/v2"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	yaml "gopkg.in/yaml.v2"
)

const AlertEventType string = "aquavise.alert"

type EventSender interface {
	Send(ctx context.Context, alert types.AlertRecord) error
}

type eventSender struct {
	subscribers map[string][]SubscriberConfig
	newClient   func() (cloudevents.Client, error)
}

func New(cfg *Config) EventSender {
	e := &eventSender{
		subscribers: make(map[string][]SubscriberConfig),
		newClient: func() (cloudevents.Client, error) {
			return cloudevents.NewClientHTTP()
		},
	}

	if cfg != nil {
		for _, s := range cfg.Notifications {
			e.subscribers[s.Type] = append(e.subscribers[s.Type], s.Subscribers...)
		}
	}

	return e
}

func (e *eventSender) Send(ctx context.Context, alert types.AlertRecord) error {
	if s, ok := e.subscribers[AlertEventType]; !ok || len(s) == 0 {
		return nil
	}

	c, err := e.newClient()
	if err != nil {
		return err
	}

	event := cloudevents.NewEvent()
	event.SetID(fmt.Sprintf("%s:%d", alert.Variable, alert.ObservedAt.Unix()))
	event.SetTime(alert.ObservedAt)
	event.SetSource("github.com/diwise/aquavise-dashboard")
	event.SetType(AlertEventType)

	err = event.SetData(cloudevents.ApplicationJSON, alert)
	if err != nil {
		return err
	}

	logger := logging.GetLoggerFromContext(ctx)

	for _, s := range e.subscribers[AlertEventType] {
		ctxWithTarget := cloudevents.ContextWithTarget(ctx, s.Endpoint)

		result := c.Send(ctxWithTarget, event)
		if cloudevents.IsUndelivered(result) {
			logger.Error().Err(result).Msgf("failed to send event to %s", s.Endpoint)
			err = errors.Join(err, fmt.Errorf("%s: %w", s.Endpoint, result))
		}
	}

	return err
}

type SubscriberConfig struct {
	Endpoint string `yaml:"endpoint"`
}

type Notification struct {
	ID          string             `yaml:"id"`
	Name        string             `yaml:"name"`
	Type        string             `yaml:"type"`
	Subscribers []SubscriberConfig `yaml:"subscribers"`
}

type Config struct {
	Notifications []Notification `yaml:"notifications"`
}

func LoadConfiguration(data io.Reader) (*Config, error) {
	buf, err := io.ReadAll(data)
	if err != nil {
		return nil, err
	}

	cfg := Config{}
	if err := yaml.Unmarshal(buf, &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}
