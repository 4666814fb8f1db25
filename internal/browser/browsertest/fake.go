// Package browsertest provides a scriptable in-memory Page for tests.
// By default every locator matches one immediately visible element;
// tests mark selectors missing or hidden to exercise fallback paths.
package browsertest

import (
	"fmt"
	"sync"
	"time"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
)

// FakePage implements browser.Page without a driver.
type FakePage struct {
	mu sync.Mutex

	CurrentURL string
	PageTitle  string

	// Missing selectors match zero elements; Hidden ones match but are
	// not visible. Everything else matches one visible element.
	Missing map[string]bool
	Hidden  map[string]bool
	// Texts maps a selector to the inner text its element reports.
	Texts map[string]string
	// FailClicks makes Click on a selector return an error.
	FailClicks map[string]bool
	// Popup, when set, is returned by ExpectPopup; otherwise the
	// trigger runs and a timeout error is reported.
	Popup *FakePage

	// Ops records every page operation in call order, e.g.
	// "goto:https://x", "click:#login-button", "fill:#user-name".
	Ops []string
	// Probes counts Count() calls per selector.
	Probes map[string]int
}

func New() *FakePage {
	return &FakePage{
		Missing:    map[string]bool{},
		Hidden:     map[string]bool{},
		Texts:      map[string]string{},
		FailClicks: map[string]bool{},
		Probes:     map[string]int{},
	}
}

func (p *FakePage) record(op string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.Ops = append(p.Ops, op)
}

// OpNames returns the recorded operation verbs only, for order checks.
func (p *FakePage) OpNames() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]string, 0, len(p.Ops))
	for _, op := range p.Ops {
		for i := 0; i < len(op); i++ {
			if op[i] == ':' {
				out = append(out, op[:i])
				break
			}
		}
	}
	return out
}

func (p *FakePage) Goto(url string, _ time.Duration) error {
	p.record("goto:" + url)
	p.mu.Lock()
	p.CurrentURL = url
	p.mu.Unlock()
	return nil
}

func (p *FakePage) URL() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.CurrentURL
}

func (p *FakePage) Title() (string, error) { return p.PageTitle, nil }

func (p *FakePage) Locator(selector string) browser.Locator {
	return &fakeLocator{page: p, selector: selector}
}

func (p *FakePage) GetByText(text string, exact bool) browser.Locator {
	return &fakeLocator{page: p, selector: fmt.Sprintf("text=%s", text)}
}

func (p *FakePage) GetByRole(role, name string, exact bool) browser.Locator {
	return &fakeLocator{page: p, selector: fmt.Sprintf("role=%s[name=%s]", role, name)}
}

func (p *FakePage) WaitForLoadState(state string, _ time.Duration) error {
	p.record("waitload:" + state)
	return nil
}

func (p *FakePage) WaitForURL(pattern string, _ time.Duration) error {
	p.record("waiturl:" + pattern)
	return nil
}

func (p *FakePage) ExpectPopup(trigger func() error, _ time.Duration) (browser.Page, error) {
	if err := trigger(); err != nil {
		return nil, err
	}
	if p.Popup != nil {
		p.record("popup:opened")
		return p.Popup, nil
	}
	return nil, fmt.Errorf("no popup within timeout")
}

func (p *FakePage) Screenshot(path string) error {
	p.record("screenshot:" + path)
	return nil
}

func (p *FakePage) Press(key string) error {
	p.record("press:" + key)
	return nil
}

func (p *FakePage) WaitTimeout(d time.Duration) {
	p.record(fmt.Sprintf("sleep:%s", d))
}

type fakeLocator struct {
	page     *FakePage
	selector string
}

func (l *fakeLocator) Count() (int, error) {
	l.page.mu.Lock()
	defer l.page.mu.Unlock()
	l.page.Probes[l.selector]++
	if l.page.Missing[l.selector] {
		return 0, nil
	}
	return 1, nil
}

func (l *fakeLocator) First() browser.Locator  { return l }
func (l *fakeLocator) Nth(int) browser.Locator { return l }

func (l *fakeLocator) IsVisible() (bool, error) {
	if l.page.Missing[l.selector] || l.page.Hidden[l.selector] {
		return false, nil
	}
	return true, nil
}

func (l *fakeLocator) Click(_ time.Duration) error {
	if l.page.Missing[l.selector] || l.page.FailClicks[l.selector] {
		return fmt.Errorf("click %s: element not found", l.selector)
	}
	l.page.record("click:" + l.selector)
	return nil
}

func (l *fakeLocator) Fill(text string, _ time.Duration) error {
	if l.page.Missing[l.selector] {
		return fmt.Errorf("fill %s: element not found", l.selector)
	}
	l.page.record("fill:" + l.selector)
	return nil
}

func (l *fakeLocator) InnerText(_ time.Duration) (string, error) {
	if l.page.Missing[l.selector] {
		return "", fmt.Errorf("innertext %s: element not found", l.selector)
	}
	return l.page.Texts[l.selector], nil
}

func (l *fakeLocator) WaitFor(_ time.Duration) error {
	if l.page.Missing[l.selector] || l.page.Hidden[l.selector] {
		return fmt.Errorf("wait %s: not visible", l.selector)
	}
	return nil
}

func (l *fakeLocator) ScrollIntoView(_ time.Duration) error {
	if l.page.Missing[l.selector] {
		return fmt.Errorf("scroll %s: element not found", l.selector)
	}
	return nil
}
