package actions

import "time"

// ActionResult is the one record produced per executed operation.
// Failures are values: nothing in this package panics or propagates an
// interaction error past the operation boundary.
type ActionResult struct {
	Name         string         `json:"name"`
	OK           bool           `json:"ok"`
	Data         map[string]any `json:"data,omitempty"`
	Error        string         `json:"error,omitempty"`
	SelectorUsed string         `json:"selector_used,omitempty"`
	ElapsedMS    int64          `json:"elapsed_ms"`
}

func succeeded(name string, started time.Time, data map[string]any) ActionResult {
	return ActionResult{
		Name:      name,
		OK:        true,
		Data:      data,
		ElapsedMS: time.Since(started).Milliseconds(),
	}
}

func failed(name string, started time.Time, err error) ActionResult {
	return ActionResult{
		Name:      name,
		OK:        false,
		Error:     err.Error(),
		ElapsedMS: time.Since(started).Milliseconds(),
	}
}
