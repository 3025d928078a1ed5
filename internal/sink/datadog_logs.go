package sink

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/tinyvector/tinyvector/internal/buildinfo"
	"github.com/tinyvector/tinyvector/internal/event"
	"github.com/tinyvector/tinyvector/internal/stringorenv"
	"github.com/tinyvector/tinyvector/internal/topology"
)

const (
	datadogDefaultURL = "https://http-intake.logs.datadoghq.com/api/v2/logs"
	datadogBatchSize  = 20
)

// DatadogLogs batches received log events (metrics are dropped) and
// POSTs them to the Datadog logs intake API.
type DatadogLogs struct {
	url      string
	apiToken string
	logger   *slog.Logger
}

// BuildDatadogLogs decodes {url?, api_token} where api_token is a
// StringOrEnv (literal string or {key, default_value?}). The token
// must resolve at build time; an unresolvable reference is a
// configuration error, not a runtime one.
func BuildDatadogLogs(raw map[string]any, logger *slog.Logger) (*DatadogLogs, error) {
	url, err := stringField(raw, "url", datadogDefaultURL)
	if err != nil {
		return nil, err
	}

	tokenRaw, ok := raw["api_token"]
	if !ok {
		return nil, fmt.Errorf("datadog_logs: missing required field %q", "api_token")
	}
	var token stringorenv.Value
	if err := token.UnmarshalTOML(tokenRaw); err != nil {
		return nil, fmt.Errorf("datadog_logs: api_token: %w", err)
	}
	resolved, ok := token.Resolve()
	if !ok {
		return nil, fmt.Errorf("datadog_logs: api token not provided")
	}

	if logger == nil {
		logger = slog.Default()
	}
	return &DatadogLogs{url: url, apiToken: resolved, logger: logger}, nil
}

func (d *DatadogLogs) Prepare(context.Context) (topology.PreparedSink, error) {
	client := &http.Client{Timeout: 10 * time.Second}
	return &preparedDatadogLogs{
		client:   client,
		url:      d.url,
		apiToken: d.apiToken,
		logger:   d.logger,
	}, nil
}

type preparedDatadogLogs struct {
	client   *http.Client
	url      string
	apiToken string
	logger   *slog.Logger
}

func (p *preparedDatadogLogs) sendMany(logs []event.Log) error {
	if len(logs) == 0 {
		return nil
	}
	body, err := json.Marshal(logs)
	if err != nil {
		return fmt.Errorf("invalid payload: %w", err)
	}
	req, err := http.NewRequest(http.MethodPost, p.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("DD-API-KEY", p.apiToken)
	req.Header.Set("User-Agent", buildinfo.UserAgent())

	res, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer res.Body.Close()
	if res.StatusCode == http.StatusBadRequest {
		return fmt.Errorf("invalid payload")
	}
	p.logger.Debug("events sent", "status", res.StatusCode)
	return nil
}

// Execute batches up to datadogBatchSize logs before flushing, same as
// the reference recv_many(20) loop, but also flushes on a short ticker
// so a slow trickle of events doesn't sit in the buffer indefinitely.
func (p *preparedDatadogLogs) Execute(receiver <-chan event.Event) error {
	p.logger.Info("starting")
	buffer := make([]event.Log, 0, datadogBatchSize)
	flush := func() {
		if len(buffer) == 0 {
			return
		}
		if err := p.sendMany(buffer); err != nil {
			p.logger.Error("unable to send logs", "error", err)
		}
		buffer = buffer[:0]
	}

	ticker := time.NewTicker(time.Second)
	defer ticker.Stop()
	for {
		select {
		case e, ok := <-receiver:
			if !ok {
				flush()
				p.logger.Info("stopping")
				return nil
			}
			if l, ok := e.Log(); ok {
				buffer = append(buffer, *l)
			}
			if len(buffer) >= datadogBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}
