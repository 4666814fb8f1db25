package browser

import (
	"time"

	"github.com/playwright-community/playwright-go"
)

// Load states accepted by WaitForLoadState.
const (
	StateLoad             = "load"
	StateDOMContentLoaded = "domcontentloaded"
	StateNetworkIdle      = "networkidle"
)

// Locator is a lazy handle to zero or more elements matched by one
// selector. Methods that act resolve to the underlying element at call
// time, mirroring the driver's auto-waiting locators.
type Locator interface {
	Count() (int, error)
	First() Locator
	Nth(i int) Locator
	IsVisible() (bool, error)
	Click(timeout time.Duration) error
	Fill(text string, timeout time.Duration) error
	InnerText(timeout time.Duration) (string, error)
	WaitFor(timeout time.Duration) error
	ScrollIntoView(timeout time.Duration) error
}

// Page is the live page handle the pipeline operates on. It is the
// narrow boundary to the browser driver: the pipeline never manages
// browser process lifecycle through it.
type Page interface {
	Goto(url string, timeout time.Duration) error
	URL() string
	Title() (string, error)
	Locator(selector string) Locator
	GetByText(text string, exact bool) Locator
	GetByRole(role, name string, exact bool) Locator
	WaitForLoadState(state string, timeout time.Duration) error
	WaitForURL(pattern string, timeout time.Duration) error
	// ExpectPopup runs trigger and waits up to timeout for a popup
	// page opened by it. A timeout is reported as an error; the caller
	// decides whether same-tab navigation happened instead.
	ExpectPopup(trigger func() error, timeout time.Duration) (Page, error)
	Screenshot(path string) error
	Press(key string) error
	// WaitTimeout is the explicit settle delay for dynamic pages. Use
	// sparingly; prefer load-state or locator waits.
	WaitTimeout(d time.Duration)
}

type pwPage struct {
	page playwright.Page
}

// NewPage wraps a raw playwright page in the pipeline's Page boundary.
func NewPage(page playwright.Page) Page {
	return &pwPage{page: page}
}

func (p *pwPage) Goto(url string, timeout time.Duration) error {
	_, err := p.page.Goto(url, playwright.PageGotoOptions{
		WaitUntil: playwright.WaitUntilStateDomcontentloaded,
		Timeout:   playwright.Float(ms(timeout)),
	})
	return wrap(err)
}

func (p *pwPage) URL() string { return p.page.URL() }

func (p *pwPage) Title() (string, error) {
	title, err := p.page.Title()
	return title, wrap(err)
}

func (p *pwPage) Locator(selector string) Locator {
	return &pwLocator{loc: p.page.Locator(selector)}
}

func (p *pwPage) GetByText(text string, exact bool) Locator {
	return &pwLocator{loc: p.page.GetByText(text, playwright.PageGetByTextOptions{
		Exact: playwright.Bool(exact),
	})}
}

func (p *pwPage) GetByRole(role, name string, exact bool) Locator {
	aria := playwright.AriaRole(role)
	return &pwLocator{loc: p.page.GetByRole(aria, playwright.PageGetByRoleOptions{
		Name:  name,
		Exact: playwright.Bool(exact),
	})}
}

func (p *pwPage) WaitForLoadState(state string, timeout time.Duration) error {
	var st *playwright.LoadState
	switch state {
	case StateNetworkIdle:
		st = playwright.LoadStateNetworkidle
	case StateLoad:
		st = playwright.LoadStateLoad
	default:
		st = playwright.LoadStateDomcontentloaded
	}
	return wrap(p.page.WaitForLoadState(playwright.PageWaitForLoadStateOptions{
		State:   st,
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (p *pwPage) WaitForURL(pattern string, timeout time.Duration) error {
	return wrap(p.page.WaitForURL(pattern, playwright.PageWaitForURLOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (p *pwPage) ExpectPopup(trigger func() error, timeout time.Duration) (Page, error) {
	popup, err := p.page.ExpectPopup(trigger, playwright.PageExpectPopupOptions{
		Timeout: playwright.Float(ms(timeout)),
	})
	if err != nil {
		return nil, wrap(err)
	}
	return &pwPage{page: popup}, nil
}

func (p *pwPage) Screenshot(path string) error {
	_, err := p.page.Screenshot(playwright.PageScreenshotOptions{
		Path: playwright.String(path),
	})
	return wrap(err)
}

func (p *pwPage) Press(key string) error {
	return wrap(p.page.Keyboard().Press(key))
}

func (p *pwPage) WaitTimeout(d time.Duration) {
	p.page.WaitForTimeout(ms(d))
}

type pwLocator struct {
	loc playwright.Locator
}

func (l *pwLocator) Count() (int, error) {
	n, err := l.loc.Count()
	return n, wrap(err)
}

func (l *pwLocator) First() Locator { return &pwLocator{loc: l.loc.First()} }

func (l *pwLocator) Nth(i int) Locator { return &pwLocator{loc: l.loc.Nth(i)} }

func (l *pwLocator) IsVisible() (bool, error) {
	ok, err := l.loc.IsVisible()
	return ok, wrap(err)
}

func (l *pwLocator) Click(timeout time.Duration) error {
	return wrap(l.loc.Click(playwright.LocatorClickOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (l *pwLocator) Fill(text string, timeout time.Duration) error {
	return wrap(l.loc.Fill(text, playwright.LocatorFillOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (l *pwLocator) InnerText(timeout time.Duration) (string, error) {
	text, err := l.loc.InnerText(playwright.LocatorInnerTextOptions{
		Timeout: playwright.Float(ms(timeout)),
	})
	return text, wrap(err)
}

func (l *pwLocator) WaitFor(timeout time.Duration) error {
	return wrap(l.loc.WaitFor(playwright.LocatorWaitForOptions{
		State:   playwright.WaitForSelectorStateVisible,
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func (l *pwLocator) ScrollIntoView(timeout time.Duration) error {
	return wrap(l.loc.ScrollIntoViewIfNeeded(playwright.LocatorScrollIntoViewIfNeededOptions{
		Timeout: playwright.Float(ms(timeout)),
	}))
}

func ms(d time.Duration) float64 {
	return float64(d.Milliseconds())
}
