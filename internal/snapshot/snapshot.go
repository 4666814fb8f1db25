// Package snapshot captures a compact view of the current page for
// diagnostics: where the run was when something failed, plus an
// optional screenshot.
package snapshot

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
)

// Summary is a compact view of the current page.
type Summary struct {
	URL        string    `json:"url"`
	Title      string    `json:"title"`
	Screenshot string    `json:"screenshot,omitempty"`
	TakenAt    time.Time `json:"taken_at"`
}

// ToMap returns the summary as a JSON-friendly map.
func (s Summary) ToMap() map[string]any {
	m := map[string]any{
		"url":      s.URL,
		"title":    s.Title,
		"taken_at": s.TakenAt,
	}
	if s.Screenshot != "" {
		m["screenshot"] = s.Screenshot
	}
	return m
}

// Collect records the page's URL and title. Title failures are
// tolerated: a half-loaded page still yields a useful summary.
func Collect(ctx context.Context, page browser.Page) (Summary, error) {
	if err := ctx.Err(); err != nil {
		return Summary{}, err
	}
	title, _ := page.Title()
	return Summary{
		URL:     page.URL(),
		Title:   title,
		TakenAt: time.Now().UTC(),
	}, nil
}

// CollectWithScreenshot is Collect plus a screenshot written under
// dir. A failed screenshot degrades to a plain summary, not an error.
func CollectWithScreenshot(ctx context.Context, page browser.Page, dir string) (Summary, error) {
	s, err := Collect(ctx, page)
	if err != nil {
		return s, err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return s, fmt.Errorf("snapshot dir: %w", err)
	}
	path := filepath.Join(dir, uuid.NewString()+".png")
	if err := page.Screenshot(path); err == nil {
		s.Screenshot = path
	}
	return s, nil
}
