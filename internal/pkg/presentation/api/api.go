package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/diwise/aquavise-dashboard/internal/pkg/application/alerting"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/dashboard"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/preferences"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/webevents"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/metrics"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/router"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/tracing"
	"github.com/diwise/aquavise-dashboard/internal/pkg/presentation/livestream"
	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"
)

var tracer = otel.Tracer("aquavise-dashboard/api")

const SessionHeader string = router.SessionHeader

type Services struct {
	Dashboard   dashboard.Dashboard
	Alerts      alerting.AlertService
	Preferences preferences.Preferences
	WebEvents   webevents.WebEvents
	Livestream  *livestream.Hub
	Metrics     *metrics.Metrics
}

func RegisterHandlers(log zerolog.Logger, mux *chi.Mux, svc Services) *chi.Mux {

	mux.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	})

	if svc.Metrics != nil {
		mux.Method(http.MethodGet, "/metrics", svc.Metrics.Handler())
	}

	mux.Route("/api/v0", func(r chi.Router) {
		r.Get("/dashboard", getDashboardHandler(log, svc.Dashboard))
		r.Get("/readings/current", getCurrentReadingHandler(log, svc.Dashboard))
		r.Get("/insights", getInsightsHandler(log, svc.Dashboard))
		r.Get("/trends", getTrendsHandler(log, svc.Dashboard))

		r.Route("/alerts", func(r chi.Router) {
			r.Get("/", getAlertsHandler(log, svc.Dashboard))
			r.Get("/history", getAlertHistoryHandler(log, svc.Alerts))
		})

		r.Route("/equipment", func(r chi.Router) {
			r.Get("/", getEquipmentHandler(log, svc.Dashboard))
			r.Patch("/{device}", patchEquipmentHandler(log, svc.Dashboard))
		})

		r.Route("/preferences", func(r chi.Router) {
			r.Get("/", getPreferencesHandler(log, svc.Preferences))
			r.Put("/{key}", putPreferenceHandler(log, svc.Preferences))
		})

		if svc.WebEvents != nil {
			r.Get("/events", eventsHandler(log, svc.Dashboard, svc.WebEvents, svc.Metrics))
		}

		if svc.Livestream != nil {
			r.Get("/ws", livestreamHandler(log, svc.Dashboard, svc.Livestream, svc.Metrics))
		}
	})

	return mux
}

func requestLogger(ctx context.Context, log zerolog.Logger) (context.Context, zerolog.Logger) {
	if traceID, ok := tracing.ExtractTraceID(ctx); ok {
		log = log.With().Str("traceID", traceID).Logger()
	}
	return logging.NewContextWithLogger(ctx, log), log
}

func startSpan(r *http.Request, log zerolog.Logger, name string) (context.Context, trace.Span, zerolog.Logger) {
	ctx, span := tracer.Start(r.Context(), name)
	ctx, requestLogger := requestLogger(ctx, log)
	return ctx, span, requestLogger
}

func writeJSON(w http.ResponseWriter, status int, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return err
	}

	w.Header().Add("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(b)
	return err
}

func getDashboardHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-dashboard")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Current(ctx))
	}
}

func getCurrentReadingHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-current-reading")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Current(ctx).Reading)
	}
}

func getAlertsHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-alerts")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Current(ctx).Alerts)
	}
}

func getInsightsHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-insights")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Current(ctx).Insights)
	}
}

func getTrendsHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-trends")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Trends(ctx, r.Header.Get(SessionHeader)))
	}
}

func getAlertHistoryHandler(log zerolog.Logger, svc alerting.AlertService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, requestLogger := startSpan(r, log, "get-alert-history")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		onlyActive := false
		if active := r.URL.Query().Get("active"); active != "" {
			onlyActive, err = strconv.ParseBool(active)
			if err != nil {
				requestLogger.Debug().Str("active", active).Msg("bad query parameter")
				w.WriteHeader(http.StatusBadRequest)
				return
			}
		}

		history, err := svc.History(ctx, onlyActive)
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to fetch alert history")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		err = writeJSON(w, http.StatusOK, history)
	}
}

func getEquipmentHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-equipment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, dash.Equipment(ctx, r.Header.Get(SessionHeader)))
	}
}

type equipmentPatch struct {
	On *bool `json:"on"`
}

func patchEquipmentHandler(log zerolog.Logger, dash dashboard.Dashboard) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span, requestLogger := startSpan(r, log, "patch-equipment")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		device := chi.URLParam(r, "device")

		patch := equipmentPatch{}
		err = json.NewDecoder(r.Body).Decode(&patch)
		if err != nil || patch.On == nil {
			requestLogger.Debug().Str("device", device).Msg("unable to decode equipment patch")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		equipment, err := dash.SetEquipment(ctx, r.Header.Get(SessionHeader), device, *patch.On)
		if errors.Is(err, dashboard.ErrUnknownDevice) {
			requestLogger.Debug().Str("device", device).Msg("unknown device")
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to toggle equipment")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		err = writeJSON(w, http.StatusOK, equipment)
	}
}

func getPreferencesHandler(log zerolog.Logger, prefs preferences.Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		ctx, span, _ := startSpan(r, log, "get-preferences")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		err = writeJSON(w, http.StatusOK, prefs.Get(ctx))
	}
}

type preferenceValue struct {
	Value string `json:"value"`
}

func putPreferenceHandler(log zerolog.Logger, prefs preferences.Preferences) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var err error
		defer r.Body.Close()

		ctx, span, requestLogger := startSpan(r, log, "put-preference")
		defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

		key := chi.URLParam(r, "key")

		value := preferenceValue{}
		err = json.NewDecoder(r.Body).Decode(&value)
		if err != nil {
			requestLogger.Debug().Str("key", key).Msg("unable to decode preference")
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		p, err := prefs.Set(ctx, key, value.Value)
		if errors.Is(err, preferences.ErrUnknownPreference) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		if errors.Is(err, preferences.ErrInvalidPreference) {
			requestLogger.Debug().Str("key", key).Str("value", value.Value).Msg("invalid preference value")
			w.WriteHeader(http.StatusBadRequest)
			return
		}
		if err != nil {
			requestLogger.Error().Err(err).Msg("unable to store preference")
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		err = writeJSON(w, http.StatusOK, p)
	}
}

// viewer keeps the simulation running for as long as a live connection is
// open.
func viewer(dash dashboard.Dashboard, m *metrics.Metrics) (func(), func()) {
	connect := func() {
		dash.Activate()
		if m != nil {
			m.SetViewers(dash.Viewers())
		}
	}

	disconnect := func() {
		dash.Deactivate()
		if m != nil {
			m.SetViewers(dash.Viewers())
		}
	}

	return connect, disconnect
}

func eventsHandler(log zerolog.Logger, dash dashboard.Dashboard, we webevents.WebEvents, m *metrics.Metrics) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, requestLogger := requestLogger(r.Context(), log)
		requestLogger.Debug().Msg("event stream opened")

		connect, disconnect := viewer(dash, m)
		connect()
		defer disconnect()

		we.ServeWithSnapshot(w, r.WithContext(ctx), dash.Current(ctx))

		requestLogger.Debug().Msg("event stream closed")
	}
}

func livestreamHandler(log zerolog.Logger, dash dashboard.Dashboard, hub *livestream.Hub, m *metrics.Metrics) http.HandlerFunc {
	connect, disconnect := viewer(dash, m)

	handler := hub.Handler(
		func(ctx context.Context) any {
			connect()
			return dash.Current(ctx)
		},
		disconnect,
	)

	return func(w http.ResponseWriter, r *http.Request) {
		ctx, _ := requestLogger(r.Context(), log)
		handler.ServeHTTP(w, r.WithContext(ctx))
	}
}
