package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestFollowPrettifiesSchedulerLogs(t *testing.T) {
	in := strings.Join([]string{
		`{"level":"DEBUG","msg":"Task routed","scenario_id":1,"strategy":"intelligent","task_id":3,"resource":"EdgeServer2"}`,
		`{"level":"WARN","msg":"Could not route task","scenario_id":1,"strategy":"static","task_id":0,"target":"mars","reason":"no resource matches target"}`,
		`{"level":"INFO","msg":"Scenario completed","scenario_id":4,"strategy":"static","makespan":12.5,"energy":30,"offloaded_pct":40,"dropped":0}`,
		`{"level":"INFO","msg":"Heartbeat"}`,
		`not json but printed`,
	}, "\n")

	var out bytes.Buffer
	if err := follow(strings.NewReader(in), &out); err != nil {
		t.Fatal(err)
	}

	got := out.String()
	for _, want := range []string{"task 3 -> EdgeServer2", `target "mars"`, "makespan=12.50", "not json but printed"} {
		if !strings.Contains(got, want) {
			t.Fatalf("output misses %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "Heartbeat") {
		t.Fatalf("unknown messages should be skipped:\n%s", got)
	}
}
