package prometheus

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"go.uber.org/zap/zaptest"
)

func newPrometheus(t *testing.T, status int, body string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/v1/query" {
			t.Errorf("unexpected path %s", r.URL.Path)
		}
		if q := r.URL.Query().Get("query"); !strings.Contains(q, `profile="slow"`) {
			t.Errorf("query does not select the profile: %s", q)
		}
		w.WriteHeader(status)
		w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestWirelessSpeed(t *testing.T) {
	srv := newPrometheus(t, http.StatusOK,
		`{"status":"success","data":{"resultType":"vector","result":[{"metric":{},"value":[1700000000.1,"12.5"]}]}}`)
	m := NewLinkMonitor(srv.URL, zaptest.NewLogger(t))

	speed, err := m.WirelessSpeed(context.Background(), "slow")
	if err != nil {
		t.Fatal(err)
	}
	if speed != 12.5 {
		t.Fatalf("speed = %v, want 12.5", speed)
	}
}

func TestWirelessSpeedErrors(t *testing.T) {
	cases := map[string]struct {
		status int
		body   string
	}{
		"server error": {http.StatusInternalServerError, "boom"},
		"query error":  {http.StatusOK, `{"status":"error","error":"bad query","errorType":"bad_data"}`},
		"no samples":   {http.StatusOK, `{"status":"success","data":{"resultType":"vector","result":[]}}`},
		"zero speed":   {http.StatusOK, `{"status":"success","data":{"result":[{"value":[1,"0"]}]}}`},
		"garbage":      {http.StatusOK, `{`},
	}
	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			srv := newPrometheus(t, tc.status, tc.body)
			m := NewLinkMonitor(srv.URL, zaptest.NewLogger(t))
			if _, err := m.WirelessSpeed(context.Background(), "slow"); err == nil {
				t.Fatalf("expected error")
			}
		})
	}
}

func TestParseSample(t *testing.T) {
	for _, v := range []any{[]any{1.0, "3.5"}, []any{1.0, 3.5}, 3.5, "3.5"} {
		got, err := parseSample(v)
		if err != nil || got != 3.5 {
			t.Fatalf("parseSample(%v) = %v, %v", v, got, err)
		}
	}
	if _, err := parseSample([]any{1.0}); err == nil {
		t.Fatalf("expected error for short array")
	}
	if _, err := parseSample(true); err == nil {
		t.Fatalf("expected error for bool")
	}
}
