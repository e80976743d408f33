package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"runtime/debug"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/diwise/aquavise-dashboard/internal/pkg/application/alerting"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/config"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/dashboard"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/events"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/preferences"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/simulator"
	"github.com/diwise/aquavise-dashboard/internal/pkg/application/webevents"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/metrics"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/repositories/database"
	alertsdb "github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/repositories/database/alerts"
	prefsdb "github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/repositories/database/preferences"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/router"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/tracing"
	"github.com/diwise/aquavise-dashboard/internal/pkg/presentation/api"
	"github.com/diwise/aquavise-dashboard/internal/pkg/presentation/livestream"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"github.com/diwise/messaging-golang/pkg/messaging"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

const serviceName string = "aquavise-dashboard"

func defaultFlags() flagMap {
	return flagMap{
		listenAddress:     "0.0.0.0",
		servicePort:       "8080",
		corsOrigins:       "",
		logLevel:          "info",
		configurationFile: "/opt/diwise/config/aquavise.yaml",

		dbType:     "sqlite",
		sqlitePath: "",
		dbHost:     "",
		dbUser:     "",
		dbPassword: "",
		dbPort:     "5432",
		dbName:     "aquavise",
		dbSSLMode:  "disable",

		enableMessaging: "false",
		randomSeed:      "",
	}
}

func main() {
	flags := parseExternalConfig(defaultFlags())

	serviceVersion := version()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	ctx, logger := logging.NewLogger(ctx, serviceName, serviceVersion, flags[logLevel])
	logger.Info().Msg("starting up ...")

	cleanup, err := tracing.Init(ctx, serviceName, serviceVersion)
	exitIf(err, logger, "failed to init tracing")
	defer cleanup()

	cfg, err := config.LoadFile(flags[configurationFile])
	exitIf(err, logger, "could not load configuration file")

	var messenger messaging.MsgContext
	if flags[enableMessaging] == "true" {
		messenger, err = messaging.Initialize(messaging.LoadConfiguration(serviceName, logger))
		exitIf(err, logger, "failed to init messenger")
		defer messenger.Close()
	}

	var publisher alerting.Publisher
	if messenger != nil {
		publisher = messenger
	}

	handler, shutdown, err := initialize(ctx, flags, cfg, publisher)
	exitIf(err, logger, "failed to initialize service")
	defer shutdown()

	server := &http.Server{
		Addr:              flags[listenAddress] + ":" + flags[servicePort],
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		logger.Info().Msg("shutting down ...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()

		if err := server.Shutdown(shutdownCtx); err != nil {
			logger.Error().Err(err).Msg("failed to shut down http server")
		}
	}()

	logger.Info().Str("address", server.Addr).Msg("listening for requests")

	err = server.ListenAndServe()
	if !errors.Is(err, http.ErrServerClosed) {
		exitIf(err, logger, "failed to start request router")
	}
}

func initialize(ctx context.Context, flags flagMap, cfg config.Config, publisher alerting.Publisher) (http.Handler, func(), error) {
	log := logging.GetLoggerFromContext(ctx)

	connect, err := newConnector(ctx, flags)
	if err != nil {
		return nil, nil, err
	}

	alertRepo, err := alertsdb.NewAlertRepository(connect)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create or connect to alert database: %w", err)
	}

	prefRepo, err := prefsdb.NewPreferenceRepository(connect)
	if err != nil {
		return nil, nil, fmt.Errorf("could not create or connect to preference database: %w", err)
	}

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())

	m := metrics.NewMetrics(registry)
	hub := livestream.NewHub()
	we := webevents.New()

	alertSvc := alerting.NewAlertService(alertRepo, publisher, events.New(cfg.Events()))

	handleAlerts := func(ctx context.Context, s types.Snapshot) {
		if err := alertSvc.Handle(ctx, s.Alerts, s.LastUpdate); err != nil {
			log := logging.GetLoggerFromContext(ctx)
			log.Error().Err(err).Msg("failed to update alert history")
		}
	}

	dash := dashboard.New(ctx,
		simulator.New(cfg.Simulator, newRandomSource(flags[randomSeed])),
		cfg.Thresholds,
		newRandomSource(""),
		dashboard.WithListener(handleAlerts),
		dashboard.WithListener(m.Observe),
		dashboard.WithListener(we.Observe),
		dashboard.WithListener(hub.Observe),
	)

	r := router.New(serviceName, allowedOrigins(flags[corsOrigins])...)
	api.RegisterHandlers(log, r, api.Services{
		Dashboard:   dash,
		Alerts:      alertSvc,
		Preferences: preferences.New(prefRepo),
		WebEvents:   we,
		Livestream:  hub,
		Metrics:     m,
	})

	shutdown := func() {
		dash.Close()
		hub.Close()
		we.Shutdown()
	}

	return r, shutdown, nil
}

func newConnector(ctx context.Context, flags flagMap) (database.ConnectorFunc, error) {
	switch flags[dbType] {
	case "sqlite":
		return database.NewSQLiteConnector(ctx, flags[sqlitePath]), nil
	case "postgres":
		return database.NewPostgreSQLConnector(ctx, database.ConnectorConfig{
			Host:     flags[dbHost],
			Port:     flags[dbPort],
			Username: flags[dbUser],
			DbName:   flags[dbName],
			Password: flags[dbPassword],
			SslMode:  flags[dbSSLMode],
		}), nil
	}

	return nil, fmt.Errorf("unsupported database type %q", flags[dbType])
}

// allowedOrigins splits a comma separated origin list. Blank entries are skipped.
func allowedOrigins(origins string) []string {
	return lo.Compact(lo.Map(strings.Split(origins, ","), func(o string, _ int) string {
		return strings.TrimSpace(o)
	}))
}

// newRandomSource seeds from the clock unless a numeric seed is given.
func newRandomSource(seed string) simulator.RandomSource {
	if s, err := strconv.ParseInt(seed, 10, 64); err == nil {
		return simulator.NewRandomSource(s)
	}
	return simulator.NewRandomSource(time.Now().UnixNano())
}

func parseExternalConfig(flags flagMap) flagMap {
	// Allow environment variables to override certain defaults
	envOrDef := func(name, def string) string {
		if value, ok := os.LookupEnv(name); ok {
			return value
		}
		return def
	}

	flags[listenAddress] = envOrDef("LISTEN_ADDRESS", flags[listenAddress])
	flags[servicePort] = envOrDef("SERVICE_PORT", flags[servicePort])
	flags[corsOrigins] = envOrDef("CORS_ALLOWED_ORIGINS", flags[corsOrigins])
	flags[logLevel] = envOrDef("LOG_LEVEL", flags[logLevel])
	flags[configurationFile] = envOrDef("CONFIG_FILE", flags[configurationFile])

	flags[dbType] = envOrDef("DB_TYPE", flags[dbType])
	flags[sqlitePath] = envOrDef("SQLITE_PATH", flags[sqlitePath])
	flags[dbHost] = envOrDef("POSTGRES_HOST", flags[dbHost])
	flags[dbPort] = envOrDef("POSTGRES_PORT", flags[dbPort])
	flags[dbName] = envOrDef("POSTGRES_DBNAME", flags[dbName])
	flags[dbUser] = envOrDef("POSTGRES_USER", flags[dbUser])
	flags[dbPassword] = envOrDef("POSTGRES_PASSWORD", flags[dbPassword])
	flags[dbSSLMode] = envOrDef("POSTGRES_SSLMODE", flags[dbSSLMode])

	flags[enableMessaging] = envOrDef("ENABLE_MESSAGING", flags[enableMessaging])
	flags[randomSeed] = envOrDef("RANDOM_SEED", flags[randomSeed])

	apply := func(f flagType) func(string) error {
		return func(value string) error {
			flags[f] = value
			return nil
		}
	}

	// Allow command line arguments to override defaults and environment variables
	flag.Func("config", "dashboard configuration file", apply(configurationFile))
	flag.Func("db", "database type, sqlite or postgres", apply(dbType))
	flag.Func("seed", "seed for the simulated sensor readings", apply(randomSeed))
	flag.Func("messaging", "publish alert events on the message bus", apply(enableMessaging))
	flag.Parse()

	return flags
}

func version() string {
	buildInfo, ok := debug.ReadBuildInfo()
	if !ok {
		return "unknown"
	}

	buildSettings := buildInfo.Settings
	infoMap := map[string]string{}
	for _, s := range buildSettings {
		infoMap[s.Key] = s.Value
	}

	sha := infoMap["vcs.revision"]
	if infoMap["vcs.modified"] == "true" {
		sha += "+"
	}

	return sha
}

func exitIf(err error, logger zerolog.Logger, msg string) {
	if err != nil {
		logger.Error().Err(err).Msg(msg)
		time.Sleep(2 * time.Second)
		os.Exit(1)
	}
}
