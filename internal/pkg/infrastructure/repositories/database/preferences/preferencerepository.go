package preferences

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	. "github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/repositories/database"
)

var ErrPreferenceNotFound = fmt.Errorf("preference not found")

type Preference struct {
	Key       string `gorm:"primarykey"`
	Value     string
	UpdatedAt time.Time
}

type PreferenceRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type preferenceRepository struct {
	db *gorm.DB
}

func NewPreferenceRepository(connect ConnectorFunc) (PreferenceRepository, error) {
	impl, err := connect()
	if err != nil {
		return nil, err
	}

	err = impl.AutoMigrate(&Preference{})
	if err != nil {
		return nil, err
	}

	return &preferenceRepository{
		db: impl,
	}, nil
}

func (d *preferenceRepository) Get(ctx context.Context, key string) (string, error) {
	p := Preference{}

	err := d.db.WithContext(ctx).Where(&Preference{Key: key}).First(&p).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", ErrPreferenceNotFound
		}
		return "", err
	}

	return p.Value, nil
}

func (d *preferenceRepository) Set(ctx context.Context, key, value string) error {
	p := Preference{Key: key, Value: value}

	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&p).Error
}
