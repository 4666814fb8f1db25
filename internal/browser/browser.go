// Package browser owns the driver boundary: a narrow Page/Locator
// surface over playwright plus the launcher that produces sessions.
// One session maps to one browser context and one active page; the
// pipeline never mutates a page from more than one goroutine.
package browser

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/playwright-community/playwright-go"
)

const (
	DefaultNavTimeout    = 60 * time.Second
	DefaultActionTimeout = 20 * time.Second
	headedSlowMo         = 250 * time.Millisecond
)

// Options controls how the browser is launched.
type Options struct {
	Name    string // chromium|firefox|webkit|chrome|edge|safari
	Channel string // e.g. "chrome", "msedge"
	Headed  bool
	SlowMo  time.Duration
}

// Launcher owns the playwright lifecycle.
type Launcher struct {
	pw      *playwright.Playwright
	browser playwright.Browser
	opts    Options
}

// Session is one browser context with its active page. Sessions are
// independent; parallel runs each own one.
type Session struct {
	context playwright.BrowserContext
	page    Page
}

func NewLauncher(ctx context.Context, opts Options) (*Launcher, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	pw, err := playwright.Run()
	if err != nil {
		return nil, fmt.Errorf("start playwright: %w", err)
	}
	name, channel := normalize(opts.Name, opts.Channel)
	slowMo := opts.SlowMo
	if slowMo == 0 && opts.Headed {
		slowMo = headedSlowMo
	}
	launchOpts := playwright.BrowserTypeLaunchOptions{
		Headless: playwright.Bool(!opts.Headed),
	}
	if slowMo > 0 {
		launchOpts.SlowMo = playwright.Float(ms(slowMo))
	}
	if channel != "" {
		launchOpts.Channel = playwright.String(channel)
	}
	var bt playwright.BrowserType
	switch name {
	case "firefox":
		bt = pw.Firefox
	case "webkit":
		bt = pw.WebKit
	default:
		bt = pw.Chromium
	}
	b, err := bt.Launch(launchOpts)
	if err != nil {
		_ = pw.Stop()
		return nil, fmt.Errorf("launch %s: %w", name, err)
	}
	return &Launcher{pw: pw, browser: b, opts: opts}, nil
}

func (l *Launcher) NewSession(ctx context.Context) (*Session, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	bctx, err := l.browser.NewContext()
	if err != nil {
		return nil, fmt.Errorf("new context: %w", err)
	}
	page, err := bctx.NewPage()
	if err != nil {
		_ = bctx.Close()
		return nil, fmt.Errorf("new page: %w", err)
	}
	page.SetDefaultTimeout(ms(DefaultNavTimeout))
	return &Session{context: bctx, page: NewPage(page)}, nil
}

func (s *Session) Page() Page { return s.page }

func (s *Session) Close() error {
	if s.context != nil {
		return wrap(s.context.Close())
	}
	return nil
}

func (l *Launcher) Close() error {
	if l.browser != nil {
		_ = l.browser.Close()
	}
	if l.pw != nil {
		return l.pw.Stop()
	}
	return nil
}

// normalize maps vendor names onto playwright engine plus channel.
func normalize(name, channel string) (string, string) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "chrome", "google-chrome":
		return "chromium", pick(channel, "chrome")
	case "edge", "msedge":
		return "chromium", pick(channel, "msedge")
	case "safari":
		return "webkit", channel
	case "firefox":
		return "firefox", channel
	case "webkit":
		return "webkit", channel
	default:
		return "chromium", channel
	}
}

func pick(val, def string) string {
	if val != "" {
		return val
	}
	return def
}

func wrap(err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("playwright: %w", err)
}
