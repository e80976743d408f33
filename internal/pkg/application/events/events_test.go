package events

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/matryer/is"
)

func TestConfig(t *testing.T) {
	is := setupTest(t)
	config := strings.NewReader(`
notifications:
  - id: alerts
    name: Water quality alerts
    type: aquavise.alert
    subscribers:
    - endpoint: http://api-notification:8990
`)
	cfg, err := LoadConfiguration(config)

	is.NoErr(err)
	is.Equal(len(cfg.Notifications), 1)
	is.Equal(cfg.Notifications[0].ID, "alerts")
	is.Equal(cfg.Notifications[0].Subscribers[0].Endpoint, "http://api-notification:8990")
}

func TestThatSendWithoutSubscribersIsANoop(t *testing.T) {
	is := setupTest(t)

	err := New(nil).Send(context.Background(), types.AlertRecord{ID: "a"})
	is.NoErr(err)
}

func TestThatAlertIsDeliveredToSubscriber(t *testing.T) {
	is := setupTest(t)

	var ceType, body string
	s := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ceType = r.Header.Get("Ce-Type")
		b, _ := io.ReadAll(r.Body)
		body = string(b)
		w.WriteHeader(http.StatusAccepted)
	}))
	defer s.Close()

	sender := New(&Config{
		Notifications: []Notification{
			{ID: "alerts", Type: AlertEventType, Subscribers: []SubscriberConfig{{Endpoint: s.URL}}},
		},
	})

	err := sender.Send(context.Background(), types.AlertRecord{
		ID:         "a1",
		Variable:   types.VariableTemperature,
		Direction:  types.DirectionHigh,
		Message:    "Temperature too high (>32°C)",
		Value:      33,
		Active:     true,
		ObservedAt: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	})

	is.NoErr(err)
	is.Equal(ceType, AlertEventType)
	is.True(strings.Contains(body, `"variable":"temperature"`))
}

func setupTest(t *testing.T) *is.I {
	is := is.New(t)

	return is
}
