// Package selector recovers usable selectors on pages whose markup
// drifts across deployments. Resolution is best-effort and heuristic:
// it tries the declared selector, then structurally generated
// alternatives, and caches what worked for a short window.
package selector

import (
	"net/url"
	"strings"
	"time"

	"github.com/rs/zerolog"

	"github.com/Ronaldozero7/HeyQ/internal/browser"
)

// DefaultTTL bounds how long a recovered selector is trusted without
// re-probing the DOM.
const DefaultTTL = 5 * time.Minute

// Clock is injected so cache expiry is testable without real delays.
type Clock func() time.Time

type cacheEntry struct {
	working    string
	resolvedAt time.Time
}

// Resolver maps declared selectors to ones that currently match the
// page. It is owned by exactly one coordinating task per session; it
// is not safe for concurrent use.
type Resolver struct {
	page   browser.Page
	ttl    time.Duration
	now    Clock
	cache  map[string]cacheEntry
	origin string
	logger zerolog.Logger
}

// Option configures a Resolver.
type Option func(*Resolver)

func WithTTL(ttl time.Duration) Option {
	return func(r *Resolver) {
		if ttl > 0 {
			r.ttl = ttl
		}
	}
}

func WithClock(now Clock) Option {
	return func(r *Resolver) {
		if now != nil {
			r.now = now
		}
	}
}

func WithLogger(logger zerolog.Logger) Option {
	return func(r *Resolver) { r.logger = logger }
}

func New(page browser.Page, opts ...Option) *Resolver {
	r := &Resolver{
		page:   page,
		ttl:    DefaultTTL,
		now:    time.Now,
		cache:  map[string]cacheEntry{},
		logger: zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// Resolve returns a selector that currently matches at least one
// element, preferring the cached recovery, then the input verbatim,
// then generated alternatives. It never fails: when nothing matches it
// returns the input unchanged and the caller handles the miss at
// interaction time.
func (r *Resolver) Resolve(sel string) string {
	if entry, ok := r.cache[sel]; ok && r.now().Sub(entry.resolvedAt) < r.ttl {
		return entry.working
	}

	if r.matches(sel) {
		r.remember(sel, sel)
		return sel
	}

	for _, alt := range Alternatives(sel) {
		if r.matches(alt) {
			r.remember(sel, alt)
			r.logger.Info().
				Str("original", sel).
				Str("working", alt).
				Msg("alternative selector matched")
			return alt
		}
	}

	return sel
}

// FirstVisible returns the first selector in the list whose top match
// is visible. When none are, each input is expanded into alternatives
// and retried. Nothing visible is a legitimate outcome, reported as
// ("", false), not an error.
func (r *Resolver) FirstVisible(selectors []string) (string, bool) {
	for _, sel := range selectors {
		if r.visible(sel) {
			return sel, true
		}
	}
	for _, sel := range selectors {
		for _, alt := range Alternatives(sel) {
			if r.visible(alt) {
				r.logger.Info().
					Str("original", sel).
					Str("working", alt).
					Msg("alternative selector visible")
				return alt, true
			}
		}
	}
	return "", false
}

// ObserveNavigation discards the cache when the page moved to a new
// origin: selectors are not guaranteed valid across sites.
func (r *Resolver) ObserveNavigation(pageURL string) {
	origin := originOf(pageURL)
	if origin != r.origin {
		r.Reset()
		r.origin = origin
	}
}

// Reset drops every cached resolution.
func (r *Resolver) Reset() {
	r.cache = map[string]cacheEntry{}
}

func (r *Resolver) matches(sel string) bool {
	n, err := r.page.Locator(sel).Count()
	return err == nil && n > 0
}

func (r *Resolver) visible(sel string) bool {
	ok, err := r.page.Locator(sel).First().IsVisible()
	return err == nil && ok
}

func (r *Resolver) remember(original, working string) {
	r.cache[original] = cacheEntry{working: working, resolvedAt: r.now()}
}

// Alternatives generates fallback selectors by structural pattern:
// id selectors expand to attribute and tag-qualified forms, class
// selectors to attribute-contains forms, and test-id attributes to
// sibling test-id conventions.
func Alternatives(sel string) []string {
	var alts []string
	switch {
	case strings.HasPrefix(sel, "#"):
		id := sel[1:]
		alts = append(alts,
			"[id='"+id+"']",
			"*[id*='"+id+"']",
			"input[id='"+id+"']",
			"button[id='"+id+"']",
		)
	case strings.HasPrefix(sel, "."):
		class := sel[1:]
		alts = append(alts,
			"[class*='"+class+"']",
			"*[class~='"+class+"']",
		)
	case strings.Contains(sel, "data-test"):
		if v := attrValue(sel); v != "" {
			alts = append(alts,
				"[data-testid='"+v+"']",
				"[data-qa='"+v+"']",
				"[test-id='"+v+"']",
			)
		}
	}
	return alts
}

// attrValue extracts the value part of a simple attribute selector
// like [data-test='login-button'] or [data-test*=add-to-cart].
func attrValue(sel string) string {
	i := strings.IndexByte(sel, '=')
	if i < 0 {
		return ""
	}
	v := sel[i+1:]
	v = strings.TrimRight(v, "]")
	v = strings.Trim(v, `"'`)
	return v
}

func originOf(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		return raw
	}
	return u.Scheme + "://" + u.Host
}
