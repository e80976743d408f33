package config

import (
	"strings"
	"testing"
	"time"

	"github.com/matryer/is"
)

func TestEmptyDocumentYieldsDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(""))
	is.NoErr(err)
	is.Equal(cfg, Default())
}

func TestPartialOverride(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadConfiguration(strings.NewReader(partialYaml))
	is.NoErr(err)

	is.Equal(cfg.Simulator.Interval, 5*time.Second)
	is.Equal(cfg.Simulator.Start.Temperature, 28.5)
	is.Equal(cfg.Simulator.Limits.Temperature.Max, 31.0)
	is.Equal(cfg.Thresholds.Alerts.Turbidity.Max, 55.0)
	is.Equal(cfg.Thresholds.Alerts.Turbidity.Min, 10.0)
	is.Equal(cfg.Thresholds.Classifier, Default().Thresholds.Classifier)

	ec := cfg.Events()
	is.Equal(len(ec.Notifications), 1)
	is.Equal(ec.Notifications[0].Type, "aquavise.alert")
	is.Equal(ec.Notifications[0].Subscribers[0].Endpoint, "http://localhost:8080/hooks")
}

func TestInvalidIntervalIsRejected(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(strings.NewReader("simulator:\n  interval: 0s\n"))
	is.True(err != nil)
}

func TestInvertedRangeIsRejected(t *testing.T) {
	is := is.New(t)

	_, err := LoadConfiguration(strings.NewReader("thresholds:\n  classifier:\n    ph:\n      min: 9\n      max: 6\n"))
	is.True(err != nil)
	is.True(strings.Contains(err.Error(), "thresholds.classifier.ph"))
}

func TestMissingFileYieldsDefaults(t *testing.T) {
	is := is.New(t)

	cfg, err := LoadFile("/does/not/exist.yaml")
	is.NoErr(err)
	is.Equal(cfg, Default())
}

const partialYaml string = `
simulator:
  interval: 5s
thresholds:
  alerts:
    turbidity:
      min: 10
      max: 55
notifications:
  - id: alerts
    name: Aquavise alerts
    type: aquavise.alert
    subscribers:
      - endpoint: http://localhost:8080/hooks
`
