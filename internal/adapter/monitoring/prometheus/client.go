package prometheus

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/CasperJasper/OS-Scheduling-Simulator/internal/core/port"
)

// linkQuery averages the measured throughput of one wireless profile in MB per time unit
const linkQuery = `avg(avg_over_time(wireless_link_throughput_megabytes{profile="%s"}[5m]))`

type linkMonitor struct {
	prometheusURL string
	client        *http.Client
	log           *zap.Logger
}

// NewLinkMonitor creates a LinkMonitor reading measured link speeds from Prometheus
func NewLinkMonitor(promURL string, log *zap.Logger) port.LinkMonitor {
	return &linkMonitor{
		prometheusURL: promURL,
		client:        &http.Client{Timeout: 5 * time.Second},
		log:           log,
	}
}

// Prometheus API response structure
type prometheusResponse struct {
	Status string `json:"status"`
	Data   struct {
		ResultType string `json:"resultType"`
		Result     []struct {
			Metric map[string]string `json:"metric"`
			Value  any               `json:"value"`
		} `json:"result"`
	} `json:"data"`
	Error     string `json:"error"`
	ErrorType string `json:"errorType"`
}

func (m *linkMonitor) WirelessSpeed(ctx context.Context, profile string) (float64, error) {
	speed, err := m.queryPrometheus(ctx, fmt.Sprintf(linkQuery, profile))
	if err != nil {
		m.log.Debug("Link speed query failed", zap.String("profile", profile), zap.Error(err))
		return 0, err
	}
	if speed <= 0 {
		return 0, fmt.Errorf("non-positive link speed %v for profile %q", speed, profile)
	}
	return speed, nil
}

func (m *linkMonitor) queryPrometheus(ctx context.Context, query string) (float64, error) {
	reqURL := fmt.Sprintf("%s/api/v1/query?query=%s", m.prometheusURL, url.QueryEscape(query))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to create request: %w", err)
	}

	resp, err := m.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return 0, fmt.Errorf("prometheus returned status %d: %s", resp.StatusCode, string(body))
	}

	var result prometheusResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return 0, fmt.Errorf("JSON decode failed: %w", err)
	}

	if result.Status != "success" {
		return 0, fmt.Errorf("prometheus error: %s (%s)", result.Error, result.ErrorType)
	}

	if len(result.Data.Result) == 0 {
		return 0, fmt.Errorf("no data returned for query: %s", query)
	}

	return parseSample(result.Data.Result[0].Value)
}

// parseSample accepts the standard [timestamp, "value"] pair as well as bare numbers
func parseSample(value any) (float64, error) {
	switch v := value.(type) {
	case []any:
		if len(v) < 2 {
			return 0, fmt.Errorf("unexpected value array length: %d", len(v))
		}
		switch raw := v[1].(type) {
		case string:
			return strconv.ParseFloat(raw, 64)
		case float64:
			return raw, nil
		default:
			return 0, fmt.Errorf("unexpected value type in array: %T", raw)
		}
	case float64:
		return v, nil
	case string:
		return strconv.ParseFloat(v, 64)
	}
	return 0, fmt.Errorf("unexpected value format: %T (%v)", value, value)
}
