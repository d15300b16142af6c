package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// LogEntry matches the Zap JSON structure of the simulator binaries
type LogEntry struct {
	Level      string  `json:"level"`
	Msg        string  `json:"msg"`
	Logger     string  `json:"logger"`
	ScenarioID int     `json:"scenario_id"`
	Strategy   string  `json:"strategy"`
	TaskID     *int    `json:"task_id"`
	Resource   string  `json:"resource"`
	Target     string  `json:"target"`
	Reason     string  `json:"reason"`
	Makespan   float64 `json:"makespan"`
	Energy     float64 `json:"energy"`
	Offloaded  float64 `json:"offloaded_pct"`
	Dropped    int     `json:"dropped"`
	RunID      string  `json:"run_id"`
}

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorPurple = "\033[35m"
	colorCyan   = "\033[36m"
	colorGray   = "\033[37m"
)

// usage: scheduler | monitor
func main() {
	fmt.Println(colorCyan + "🚀 Offloading Activity Monitor Starting..." + colorReset)
	fmt.Println(colorGray + "Reading JSON logs from stdin..." + colorReset)
	fmt.Println("-------------------------------------------------------------------------")

	if err := follow(os.Stdin, os.Stdout); err != nil {
		fmt.Printf("Error reading logs: %v\n", err)
		os.Exit(1)
	}
}

func follow(r io.Reader, w io.Writer) error {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if !strings.HasPrefix(line, "{") {
			// summary tables and other plain output pass through
			if line != "" {
				fmt.Fprintln(w, colorGray+line+colorReset)
			}
			continue
		}

		var entry LogEntry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			continue
		}
		if out := prettify(entry); out != "" {
			fmt.Fprintln(w, out)
		}
	}
	return scanner.Err()
}

func strategyLabel(strategy string) string {
	switch strategy {
	case "static":
		return colorBlue + "STATIC" + colorReset
	case "intelligent":
		return colorPurple + "INTELLIGENT" + colorReset
	case "":
		return "-"
	}
	return strings.ToUpper(strategy)
}

func prettify(entry LogEntry) string {
	label := fmt.Sprintf("[S%d %s]", entry.ScenarioID, strategyLabel(entry.Strategy))
	taskID := -1
	if entry.TaskID != nil {
		taskID = *entry.TaskID
	}

	switch {
	case entry.Msg == "Task routed":
		return fmt.Sprintf("%s 📥 "+colorYellow+"Routed:"+colorReset+" task %d -> %s", label, taskID, entry.Resource)
	case entry.Msg == "Could not route task":
		return fmt.Sprintf("%s 🚫 "+colorRed+"Dropped:"+colorReset+" task %d (target %q: %s)", label, taskID, entry.Target, entry.Reason)
	case strings.HasPrefix(entry.Msg, "Task scheduled locally without enough energy"):
		return fmt.Sprintf("%s 🔋 "+colorRed+"Energy shortfall:"+colorReset+" task %d", label, taskID)
	case entry.Msg == "Scenario completed":
		return fmt.Sprintf("%s ✅ "+colorGreen+"Completed:"+colorReset+" makespan=%.2f energy=%.2f offloaded=%.1f%% dropped=%d",
			label, entry.Makespan, entry.Energy, entry.Offloaded, entry.Dropped)
	case entry.Msg == "Reusing cached run":
		return fmt.Sprintf("%s ♻️  "+colorCyan+"Cached:"+colorReset+" %s", label, entry.RunID)
	case strings.EqualFold(entry.Level, "error"):
		return fmt.Sprintf("%s ❌ "+colorRed+"ERROR:"+colorReset+" %s", label, entry.Msg)
	}
	return ""
}
