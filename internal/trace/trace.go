// Package trace appends one redacted record per parsed utterance to a
// JSONL audit sink. Redaction happens here, before anything leaves
// the pipeline: downstream log collectors are never trusted with
// secrets.
package trace

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/google/uuid"

	"github.com/Ronaldozero7/HeyQ/internal/intent"
)

// Mask replaces every sensitive value verbatim.
const Mask = "***"

// sensitiveKeys are entity keys whose values never reach the sink.
var sensitiveKeys = map[string]struct{}{
	"password":    {},
	"passcode":    {},
	"card_number": {},
	"card_cvv":    {},
	"cvv":         {},
}

// Record is one audit entry.
type Record struct {
	ID       string         `json:"id"`
	Time     time.Time      `json:"time"`
	RawText  string         `json:"raw_text"`
	Intent   string         `json:"intent"`
	Entities map[string]any `json:"entities,omitempty"`
}

// Redact returns a masked copy of entities. The input is not
// modified; nested maps are masked recursively.
func Redact(entities map[string]any) map[string]any {
	if entities == nil {
		return nil
	}
	out := make(map[string]any, len(entities))
	for k, v := range entities {
		if _, sensitive := sensitiveKeys[k]; sensitive {
			out[k] = Mask
			continue
		}
		if nested, ok := v.(map[string]any); ok {
			out[k] = Redact(nested)
			continue
		}
		out[k] = v
	}
	return out
}

// NewRecord builds a redacted audit record for one utterance.
func NewRecord(rawText string, it intent.Intent) Record {
	return Record{
		ID:       uuid.NewString(),
		Time:     time.Now().UTC(),
		RawText:  rawText,
		Intent:   string(it.Name),
		Entities: Redact(it.Entities),
	}
}

// Writer appends records to one sink. Not safe for concurrent use:
// like the selector cache, it belongs to one session.
type Writer struct {
	enc    *json.Encoder
	closer io.Closer
}

// NewWriter writes JSONL to w.
func NewWriter(w io.Writer) *Writer {
	return &Writer{enc: json.NewEncoder(w)}
}

// Open appends to a JSONL file, creating it when absent.
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("open trace sink: %w", err)
	}
	return &Writer{enc: json.NewEncoder(f), closer: f}, nil
}

// Append records one utterance. The record is redacted before
// encoding.
func (w *Writer) Append(rawText string, it intent.Intent) error {
	if err := w.enc.Encode(NewRecord(rawText, it)); err != nil {
		return fmt.Errorf("append trace: %w", err)
	}
	return nil
}

func (w *Writer) Close() error {
	if w.closer == nil {
		return nil
	}
	return w.closer.Close()
}
