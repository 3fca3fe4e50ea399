package logs

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"strings"
	"time"

	"aromasheet/internal/logging"
)

// Entry is one decoded line of the JSON log.
type Entry struct {
	Time      time.Time
	Level     slog.Level
	Message   string
	Component string
	SheetID   string
	Action    string
	// Attrs holds every other key, rendered as text.
	Attrs map[string]string
}

var reservedKeys = map[string]bool{
	"ts": true, "level": true, "msg": true, "source": true,
	logging.FieldComponent: true, logging.FieldSheetID: true, logging.FieldAction: true,
}

// ParseEntry decodes a line produced by the JSON handler of package logging.
func ParseEntry(line string) (Entry, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(line), &raw); err != nil {
		return Entry{}, fmt.Errorf("decode log line: %w", err)
	}
	e := Entry{
		Message:   text(raw["msg"]),
		Component: text(raw[logging.FieldComponent]),
		SheetID:   text(raw[logging.FieldSheetID]),
		Action:    text(raw[logging.FieldAction]),
		Attrs:     map[string]string{},
	}
	if ts := text(raw["ts"]); ts != "" {
		if parsed, err := time.Parse(time.RFC3339, ts); err == nil {
			e.Time = parsed
		}
	}
	if lvl := text(raw["level"]); lvl != "" {
		e.Level = logging.ParseLevel(lvl)
	}
	for key, value := range raw {
		if !reservedKeys[key] {
			e.Attrs[key] = text(value)
		}
	}
	return e, nil
}

func text(v any) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return val
	case float64, bool:
		return fmt.Sprint(val)
	default:
		b, err := json.Marshal(val)
		if err != nil {
			return fmt.Sprint(val)
		}
		return string(b)
	}
}

// Filter keeps entries at or above MinLevel whose sheet id starts with
// SheetID. An empty SheetID matches every entry; the zero MinLevel is info.
type Filter struct {
	SheetID  string
	MinLevel slog.Level
}

// Match reports whether e passes the filter.
func (f Filter) Match(e Entry) bool {
	if e.Level < f.MinLevel {
		return false
	}
	return f.SheetID == "" || strings.HasPrefix(e.SheetID, f.SheetID)
}

// Select parses lines and keeps the entries f matches. Lines that are not
// JSON are skipped.
func Select(lines []string, f Filter) []Entry {
	out := make([]Entry, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		e, err := ParseEntry(line)
		if err != nil || !f.Match(e) {
			continue
		}
		out = append(out, e)
	}
	return out
}

// Format renders e on one line: time, level, component, message, then the
// remaining attributes sorted by key.
func (e Entry) Format() string {
	var b strings.Builder
	if !e.Time.IsZero() {
		b.WriteString(e.Time.Local().Format("2006-01-02 15:04:05"))
		b.WriteByte(' ')
	}
	fmt.Fprintf(&b, "%-5s ", strings.ToUpper(e.Level.String()))
	if e.Component != "" {
		b.WriteString(e.Component)
		b.WriteString(": ")
	}
	b.WriteString(e.Message)
	if e.Action != "" {
		b.WriteString(" action=")
		b.WriteString(e.Action)
	}
	keys := make([]string, 0, len(e.Attrs))
	for k := range e.Attrs {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		fmt.Fprintf(&b, " %s=%s", k, e.Attrs[k])
	}
	return b.String()
}
