package logutil

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// MaxLoggedValueBytes caps how much editor content or script text goes
// into a single log attribute. Editor bodies can be arbitrarily large.
const MaxLoggedValueBytes = 512

// TruncateForLog shortens a value for logging, marking the cut.
func TruncateForLog(value string) string {
	if len(value) <= MaxLoggedValueBytes {
		return value
	}
	return value[:MaxLoggedValueBytes] + " [truncated]"
}

// FormatScriptForLog collapses a script body to a single trimmed line.
func FormatScriptForLog(script string) string {
	fields := strings.Fields(script)
	return TruncateForLog(strings.Join(fields, " "))
}

// FormatArgsForLog returns stable JSON text for script arguments. HTML
// escaping is off so editor markup stays readable in the log.
func FormatArgsForLog(args []any) string {
	if len(args) == 0 {
		return "[]"
	}
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode(args); err != nil {
		return fmt.Sprintf("[unencodable: %v]", err)
	}
	return TruncateForLog(strings.TrimSuffix(buf.String(), "\n"))
}
