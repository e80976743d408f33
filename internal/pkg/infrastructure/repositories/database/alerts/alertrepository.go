package alerts

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/samber/lo"
	"gorm.io/gorm"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	. "github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/repositories/database"
	"github.com/diwise/aquavise-dashboard/pkg/types"
)

var ErrAlertNotFound = fmt.Errorf("alert not found")

type AlertRepository interface {
	GetActive(ctx context.Context) ([]types.AlertRecord, error)
	Query(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error)
	Add(ctx context.Context, alert types.AlertRecord) error
	Touch(ctx context.Context, alertID string, value float64, observedAt time.Time) error
	Clear(ctx context.Context, alertID string, clearedAt time.Time) error
}

type alertRepository struct {
	db *gorm.DB
}

func NewAlertRepository(connect ConnectorFunc) (AlertRepository, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(&Alert{})
	if err != nil {
		return nil, err
	}

	return &alertRepository{
		db: impl,
	}, nil
}

func (d *alertRepository) GetActive(ctx context.Context) ([]types.AlertRecord, error) {
	return d.Query(ctx, true)
}

// Query returns stored alerts, most recently raised first.
func (d *alertRepository) Query(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error) {
	alerts := []Alert{}

	tx := d.db.WithContext(ctx)
	if onlyActive {
		tx = tx.Where("active = ?", true)
	}

	err := tx.Order("raised_at desc").Find(&alerts).Error
	if err != nil {
		return []types.AlertRecord{}, err
	}

	return lo.Map(alerts, func(a Alert, _ int) types.AlertRecord {
		return a.toRecord()
	}), nil
}

func (d *alertRepository) Add(ctx context.Context, alert types.AlertRecord) error {
	logger := logging.GetLoggerFromContext(ctx)

	if alert.ID == "" {
		return fmt.Errorf("alert must have an id")
	}

	logger.Debug().Msgf("add new alert, id: %s, variable: %s, direction: %s", alert.ID, alert.Variable, alert.Direction)

	a := fromRecord(alert)
	return d.db.WithContext(ctx).Create(&a).Error
}

func (d *alertRepository) Touch(ctx context.Context, alertID string, value float64, observedAt time.Time) error {
	a, err := d.getByID(ctx, alertID)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Model(&a).Updates(map[string]any{
		"value":       value,
		"observed_at": observedAt.UTC(),
	}).Error
}

func (d *alertRepository) Clear(ctx context.Context, alertID string, clearedAt time.Time) error {
	a, err := d.getByID(ctx, alertID)
	if err != nil {
		return err
	}

	return d.db.WithContext(ctx).Model(&a).Updates(map[string]any{
		"active":     false,
		"cleared_at": clearedAt.UTC(),
	}).Error
}

func (d *alertRepository) getByID(ctx context.Context, alertID string) (Alert, error) {
	a := Alert{}

	err := d.db.WithContext(ctx).Where(&Alert{ID: alertID}).First(&a).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return Alert{}, ErrAlertNotFound
		}
		return Alert{}, err
	}

	return a, nil
}
