package preferences

import (
	"context"
	"errors"
	"fmt"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/go-playground/validator/v10"
)

const (
	ThemeKey    = "aquavise-theme"
	LanguageKey = "aquavise-language"
)

var (
	ErrUnknownPreference = errors.New("unknown preference")
	ErrInvalidPreference = errors.New("invalid preference value")
)

type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
}

type Preferences interface {
	Get(ctx context.Context) types.Preferences
	Set(ctx context.Context, key, value string) (types.Preferences, error)
}

func Defaults() types.Preferences {
	return types.Preferences{
		Theme:    "light",
		Language: "en",
	}
}

type preferenceSvc struct {
	store    Store
	validate *validator.Validate
}

func New(s Store) Preferences {
	return &preferenceSvc{
		store:    s,
		validate: validator.New(),
	}
}

// Get reads the stored preferences. Missing or unrecognised values fall back
// to their defaults.
func (svc *preferenceSvc) Get(ctx context.Context) types.Preferences {
	log := logging.GetLoggerFromContext(ctx)

	p := Defaults()

	for _, key := range []string{ThemeKey, LanguageKey} {
		value, err := svc.store.Get(ctx, key)
		if err != nil {
			continue
		}

		candidate := p
		apply(&candidate, key, value)

		if err := svc.validate.Struct(candidate); err != nil {
			log.Debug().Str("key", key).Str("value", value).Msg("ignoring invalid stored preference")
			continue
		}

		p = candidate
	}

	return p
}

func (svc *preferenceSvc) Set(ctx context.Context, key, value string) (types.Preferences, error) {
	p := svc.Get(ctx)

	if !apply(&p, key, value) {
		return p, ErrUnknownPreference
	}

	if err := svc.validate.Struct(p); err != nil {
		return svc.Get(ctx), fmt.Errorf("%w: %q is not a valid value for %s", ErrInvalidPreference, value, key)
	}

	if err := svc.store.Set(ctx, key, value); err != nil {
		return svc.Get(ctx), err
	}

	return p, nil
}

func apply(p *types.Preferences, key, value string) bool {
	switch key {
	case ThemeKey:
		p.Theme = value
	case LanguageKey:
		p.Language = value
	default:
		return false
	}
	return true
}
