package client

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/matryer/is"
)

func TestGetDashboard(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Path, "/api/v0/dashboard")
		is.Equal(r.Method, http.MethodGet)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(dashboardResponse))
	}))
	defer server.Close()

	snapshot, err := New(server.URL).GetDashboard(context.Background())
	is.NoErr(err)
	is.Equal(snapshot.Reading.Temperature, 28.5)
	is.Equal(snapshot.Reading.Turbidity, 25)
	is.Equal(snapshot.Insights[0], "All parameters within optimal ranges - system performing well")
}

func TestGetTrendsSendsSession(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Header.Get("X-Session-ID"), "session-1")
		w.Write([]byte(`{"daily":[{"time":"14:00","temperature":28.1,"ph":7.2,"turbidity":20}],"weekly":[]}`))
	}))
	defer server.Close()

	trends, err := New(server.URL).GetTrends(context.Background(), "session-1")
	is.NoErr(err)
	is.Equal(len(trends.Daily), 1)
	is.Equal(trends.Daily[0].Label, "14:00")
}

func TestGetActiveAlertHistory(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.URL.Query().Get("active"), "true")
		w.Write([]byte(`[{"id":"a","variable":"ph","direction":"low","message":"pH too low (<6.5)","value":6.4,"active":true}]`))
	}))
	defer server.Close()

	alerts, err := New(server.URL).GetAlertHistory(context.Background(), true)
	is.NoErr(err)
	is.Equal(len(alerts), 1)
	is.Equal(alerts[0].Message, "pH too low (<6.5)")
}

func TestSetPreference(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		is.Equal(r.Method, http.MethodPut)
		is.Equal(r.URL.Path, "/api/v0/preferences/aquavise-theme")
		is.Equal(r.Header.Get("Content-Type"), "application/json")

		body, _ := io.ReadAll(r.Body)
		is.Equal(string(body), `{"value":"blue"}`)

		w.Write([]byte(`{"theme":"blue","language":"en"}`))
	}))
	defer server.Close()

	prefs, err := New(server.URL).SetPreference(context.Background(), "aquavise-theme", "blue")
	is.NoErr(err)
	is.Equal(prefs.Theme, "blue")
}

func TestSetInvalidPreference(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
	}))
	defer server.Close()

	_, err := New(server.URL).SetPreference(context.Background(), "aquavise-theme", "purple")
	is.True(errors.Is(err, ErrBadRequest))
}

func TestGetPreferencesFromMissingService(t *testing.T) {
	is := is.New(t)

	server := httptest.NewServer(http.NotFoundHandler())
	defer server.Close()

	_, err := New(server.URL).GetPreferences(context.Background())
	is.True(errors.Is(err, ErrNotFound))
}

const dashboardResponse string = `{
	"reading": {"temperature": 28.5, "ph": 7.2, "turbidity": 25, "timestamp": "2024-03-01T12:00:00Z"},
	"statuses": {
		"temperature": {"status": "optimal", "label": "Optimal"},
		"ph": {"status": "optimal", "label": "Optimal"},
		"turbidity": {"status": "optimal", "label": "Clear"}
	},
	"alerts": [],
	"insights": ["All parameters within optimal ranges - system performing well"],
	"lastUpdate": "2024-03-01T12:00:00Z"
}`
