package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/logging"
	"github.com/diwise/aquavise-dashboard/internal/pkg/infrastructure/tracing"
	"github.com/diwise/aquavise-dashboard/pkg/types"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
	"go.opentelemetry.io/otel"
)

var (
	ErrNotFound   = errors.New("not found")
	ErrBadRequest = errors.New("bad request")
)

type AquaviseClient interface {
	GetDashboard(ctx context.Context) (types.Snapshot, error)
	GetTrends(ctx context.Context, session string) (types.Trends, error)
	GetAlertHistory(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error)
	GetPreferences(ctx context.Context) (types.Preferences, error)
	SetPreference(ctx context.Context, key, value string) (types.Preferences, error)
}

type aquaviseClient struct {
	url        string
	httpClient http.Client
}

var tracer = otel.Tracer("aquavise-dashboard-client")

func New(url string) AquaviseClient {
	return &aquaviseClient{
		url: strings.TrimSuffix(url, "/"),
		httpClient: http.Client{
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
	}
}

func (c *aquaviseClient) GetDashboard(ctx context.Context) (types.Snapshot, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-dashboard")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.Snapshot{}
	err = c.do(ctx, http.MethodGet, "/api/v0/dashboard", "", nil, &result)

	return result, err
}

func (c *aquaviseClient) GetTrends(ctx context.Context, session string) (types.Trends, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-trends")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.Trends{}
	err = c.do(ctx, http.MethodGet, "/api/v0/trends", session, nil, &result)

	return result, err
}

func (c *aquaviseClient) GetAlertHistory(ctx context.Context, onlyActive bool) ([]types.AlertRecord, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-alert-history")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	path := "/api/v0/alerts/history"
	if onlyActive {
		path += "?active=true"
	}

	result := []types.AlertRecord{}
	err = c.do(ctx, http.MethodGet, path, "", nil, &result)

	return result, err
}

func (c *aquaviseClient) GetPreferences(ctx context.Context) (types.Preferences, error) {
	var err error
	ctx, span := tracer.Start(ctx, "get-preferences")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	result := types.Preferences{}
	err = c.do(ctx, http.MethodGet, "/api/v0/preferences", "", nil, &result)

	return result, err
}

func (c *aquaviseClient) SetPreference(ctx context.Context, key, value string) (types.Preferences, error) {
	var err error
	ctx, span := tracer.Start(ctx, "set-preference")
	defer func() { tracing.RecordAnyErrorAndEndSpan(err, span) }()

	body, err := json.Marshal(struct {
		Value string `json:"value"`
	}{value})
	if err != nil {
		return types.Preferences{}, err
	}

	result := types.Preferences{}
	err = c.do(ctx, http.MethodPut, "/api/v0/preferences/"+key, "", body, &result)

	return result, err
}

func (c *aquaviseClient) do(ctx context.Context, method, path, session string, body []byte, result any) error {
	log := logging.GetLoggerFromContext(ctx)

	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create http request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if session != "" {
		req.Header.Set("X-Session-ID", session)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request to %s failed: %w", path, err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		return fmt.Errorf("%s %s: %w", method, path, ErrNotFound)
	case resp.StatusCode == http.StatusBadRequest:
		return fmt.Errorf("%s %s: %w", method, path, ErrBadRequest)
	case resp.StatusCode != http.StatusOK:
		log.Error().Msgf("request failed with status code %d", resp.StatusCode)
		return fmt.Errorf("request failed with status code %d", resp.StatusCode)
	}

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if err = json.Unmarshal(respBody, result); err != nil {
		return fmt.Errorf("failed to unmarshal response body: %w", err)
	}

	return nil
}
