package audit

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"time"

	"github.com/google/uuid"
)

const timeFormat = "2006-01-02T15:04:05.000000Z"

// Event represents a single audit log entry.
type Event struct {
	ID        string `json:"id"`
	Timestamp string `json:"ts"` // RFC3339 with microseconds, UTC
	Operation string `json:"op"`
	Vault     string `json:"vault,omitempty"`
	Key       string `json:"key,omitempty"` // Entry key for add/delete-key
	Count     int    `json:"count,omitempty"`
	Success   bool   `json:"success"`
	Error     string `json:"error,omitempty"`
}

// Log appends events to a file. A nil *Log discards everything.
type Log struct {
	path string
	now  func() time.Time
}

// New returns a Log writing to path
func New(path string) *Log {
	return &Log{path: path, now: time.Now}
}

// Path returns the log file location, or "" for a nil Log
func (l *Log) Path() string {
	if l == nil {
		return ""
	}
	return l.path
}

// Record appends ev, filling ID and Timestamp when empty
func (l *Log) Record(ev Event) error {
	if l == nil {
		return nil
	}

	if ev.ID == "" {
		ev.ID = uuid.NewString()
	}
	if ev.Timestamp == "" {
		ev.Timestamp = l.now().UTC().Format(timeFormat)
	}

	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode audit event: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create audit directory: %w", err)
	}
	f, err := os.OpenFile(l.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return fmt.Errorf("failed to open audit log: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(append(data, '\n')); err != nil {
		return fmt.Errorf("failed to write audit log: %w", err)
	}
	return f.Close()
}

// ReadEvents reads all events from the log at path.
// Returns an empty slice if the log doesn't exist.
func ReadEvents(path string) ([]Event, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read audit log: %w", err)
	}
	return ParseEvents(data), nil
}

// ParseEvents parses JSON Lines data. Malformed lines are skipped.
func ParseEvents(data []byte) []Event {
	var events []Event
	for _, line := range bytes.Split(data, []byte("\n")) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}
		var ev Event
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	return events
}

// Time parses the event timestamp
func (e Event) Time() (time.Time, error) {
	return time.Parse(time.RFC3339Nano, e.Timestamp)
}

// Filter selects events for display. Zero fields match everything.
type Filter struct {
	Vault      string
	Operations []string
	Since      time.Time // Inclusive
	Until      time.Time // Exclusive
	FailedOnly bool

	Limit   int  // Keep only the last Limit matches
	Reverse bool // Most recent first
}

// Apply returns the events matching f, oldest first unless Reverse is set
func (f Filter) Apply(events []Event) []Event {
	matched := make([]Event, 0, len(events))
	for _, ev := range events {
		if f.matches(ev) {
			matched = append(matched, ev)
		}
	}

	if f.Limit > 0 && len(matched) > f.Limit {
		matched = matched[len(matched)-f.Limit:]
	}
	if f.Reverse {
		slices.Reverse(matched)
	}
	return matched
}

func (f Filter) matches(ev Event) bool {
	if f.Vault != "" && ev.Vault != f.Vault {
		return false
	}
	if len(f.Operations) > 0 && !slices.Contains(f.Operations, ev.Operation) {
		return false
	}
	if f.FailedOnly && ev.Success {
		return false
	}

	if f.Since.IsZero() && f.Until.IsZero() {
		return true
	}
	ts, err := ev.Time()
	if err != nil {
		return false
	}
	if !f.Since.IsZero() && ts.Before(f.Since) {
		return false
	}
	if !f.Until.IsZero() && !ts.Before(f.Until) {
		return false
	}
	return true
}
