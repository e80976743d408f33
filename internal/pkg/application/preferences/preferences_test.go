package preferences

import (
	"context"
	"errors"
	"testing"

	"github.com/matryer/is"
)

func TestDefaultsWhenNothingIsStored(t *testing.T) {
	is, ctx, store := testSetup(t)

	p := New(store).Get(ctx)

	is.Equal(p.Theme, "light")
	is.Equal(p.Language, "en")
}

func TestSetValidPreference(t *testing.T) {
	is, ctx, store := testSetup(t)
	svc := New(store)

	p, err := svc.Set(ctx, ThemeKey, "blue")
	is.NoErr(err)
	is.Equal(p.Theme, "blue")
	is.Equal(store.values[ThemeKey], "blue")

	p, err = svc.Set(ctx, LanguageKey, "yo")
	is.NoErr(err)
	is.Equal(p.Language, "yo")
	is.Equal(p.Theme, "blue")

	is.Equal(svc.Get(ctx), p)
}

func TestSetInvalidPreference(t *testing.T) {
	is, ctx, store := testSetup(t)
	svc := New(store)

	p, err := svc.Set(ctx, ThemeKey, "purple")
	is.True(errors.Is(err, ErrInvalidPreference))
	is.Equal(p.Theme, "light")
	is.Equal(len(store.values), 0)
}

func TestSetUnknownPreference(t *testing.T) {
	is, ctx, store := testSetup(t)

	_, err := New(store).Set(ctx, "aquavise-font", "serif")
	is.Equal(err, ErrUnknownPreference)
}

func TestMalformedStoredValueFallsBackToDefault(t *testing.T) {
	is, ctx, store := testSetup(t)
	store.values[ThemeKey] = "neon"
	store.values[LanguageKey] = "ig"

	p := New(store).Get(ctx)

	is.Equal(p.Theme, "light")
	is.Equal(p.Language, "ig")
}

func TestStoreFailureFallsBackToDefault(t *testing.T) {
	is, ctx, store := testSetup(t)
	store.err = errors.New("connection refused")

	p := New(store).Get(ctx)

	is.Equal(p, Defaults())
}

func testSetup(t *testing.T) (*is.I, context.Context, *storeMock) {
	return is.New(t), context.Background(), &storeMock{values: map[string]string{}}
}

type storeMock struct {
	values map[string]string
	err    error
}

func (s *storeMock) Get(ctx context.Context, key string) (string, error) {
	if s.err != nil {
		return "", s.err
	}
	v, ok := s.values[key]
	if !ok {
		return "", errors.New("not found")
	}
	return v, nil
}

func (s *storeMock) Set(ctx context.Context, key, value string) error {
	if s.err != nil {
		return s.err
	}
	s.values[key] = value
	return nil
}
