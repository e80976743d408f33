package alerting

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/diwise/aquavise-dashboard/internal/pkg/application/events"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/google/uuid"
	"github.com/samber/lo"
)

type AlertService interface {
	Handle(ctx context.Context, alerts []types.Alert, observedAt time.Time) error
	History(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error)
}

type AlertRepository interface {
	GetActive(ctx context.Context) ([]types.AlertRecord, error)
	Query(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error)
	Add(ctx context.Context, alert types.AlertRecord) error
	Touch(ctx context.Context, alertID string, value float64, observedAt time.Time) error
	Clear(ctx context.Context, alertID string, clearedAt time.Time) error
}

type Publisher interface {
	PublishOnTopic(ctx context.Context, message messaging.TopicMessage) error
}

type alertSvc struct {
	storage   AlertRepository
	messenger Publisher
	sender    events.EventSender
}

// NewAlertService keeps a history of alert episodes. Both messenger and
// sender may be nil.
func NewAlertService(r AlertRepository, m Publisher, s events.EventSender) AlertService {
	return &alertSvc{
		storage:   r,
		messenger: m,
		sender:    s,
	}
}

func key(v types.Variable, d types.Direction) string {
	return fmt.Sprintf("%s:%s", v, d)
}

// Handle reconciles the alerts of the latest reading with the active
// episodes. New conditions open an episode, repeated ones refresh it and
// conditions that are gone close it.
func (svc *alertSvc) Handle(ctx context.Context, alerts []types.Alert, observedAt time.Time) error {
	log := logging.GetLoggerFromContext(ctx)

	active, err := svc.storage.GetActive(ctx)
	if err != nil {
		return fmt.Errorf("could not fetch active alerts: %w", err)
	}

	activeByKey := lo.KeyBy(active, func(a types.AlertRecord) string {
		return key(a.Variable, a.Direction)
	})

	var errs []error
	seen := map[string]bool{}

	for _, a := range alerts {
		k := key(a.Variable, a.Direction)
		seen[k] = true

		if existing, ok := activeByKey[k]; ok {
			if err := svc.storage.Touch(ctx, existing.ID, a.Value, observedAt); err != nil {
				errs = append(errs, err)
			}
			continue
		}

		record := types.AlertRecord{
			ID:         uuid.NewString(),
			Variable:   a.Variable,
			Direction:  a.Direction,
			Message:    a.Message,
			Value:      a.Value,
			Active:     true,
			RaisedAt:   observedAt,
			ObservedAt: observedAt,
		}

		if err := svc.storage.Add(ctx, record); err != nil {
			errs = append(errs, err)
			continue
		}

		log.Info().Str("variable", string(a.Variable)).Str("direction", string(a.Direction)).Msg(a.Message)

		svc.publish(ctx, &types.AlertRaised{Alert: record, Timestamp: observedAt})

		if svc.sender != nil {
			if err := svc.sender.Send(ctx, record); err != nil {
				log.Error().Err(err).Msg("failed to notify subscribers")
			}
		}
	}

	for k, a := range activeByKey {
		if seen[k] {
			continue
		}

		if err := svc.storage.Clear(ctx, a.ID, observedAt); err != nil {
			errs = append(errs, err)
			continue
		}

		log.Info().Str("variable", string(a.Variable)).Str("direction", string(a.Direction)).Msg("alert cleared")

		svc.publish(ctx, &types.AlertCleared{ID: a.ID, Variable: a.Variable, Timestamp: observedAt})
	}

	return errors.Join(errs...)
}

func (svc *alertSvc) History(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error) {
	return svc.storage.Query(ctx, onlyActive)
}

func (svc *alertSvc) publish(ctx context.Context, msg messaging.TopicMessage) {
	if svc.messenger == nil {
		return
	}

	if err := svc.messenger.PublishOnTopic(ctx, msg); err != nil {
		log := logging.GetLoggerFromContext(ctx)
		log.Error().Err(err).Msgf("failed to publish %s", msg.TopicName())
	}
}
