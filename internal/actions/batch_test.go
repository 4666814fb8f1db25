package actions

import (
	"context"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Ronaldozero7/HeyQ/internal/browser/browsertest"
	"github.com/Ronaldozero7/HeyQ/internal/selector"
)

func newExecutor(page *browsertest.FakePage) *Executor {
	return NewExecutor(page, selector.New(page), zerolog.Nop())
}

func TestExecuteRunsInOrder(t *testing.T) {
	page := browsertest.New()
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "navigate", URL: "https://www.saucedemo.com"},
		{Action: "fill", Selector: "#user-name", Text: "standard_user"},
		{Action: "click", Selector: "#login-button"},
	})

	require.Len(t, results, 3)
	for _, r := range results {
		assert.True(t, r.OK, r.Name)
		assert.GreaterOrEqual(t, r.ElapsedMS, int64(0))
	}
	assert.Equal(t, []string{"goto", "fill", "click"}, page.OpNames())
}

func TestExecuteCriticalFailureHalts(t *testing.T) {
	page := browsertest.New()
	page.Missing["#gone"] = true
	for _, alt := range selector.Alternatives("#gone") {
		page.Missing[alt] = true
	}
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "click", Selector: "#ok"},
		{Action: "click", Selector: "#gone", Critical: true},
		{Action: "click", Selector: "#never-reached"},
	})

	require.Len(t, results, 2)
	assert.True(t, results[0].OK)
	assert.False(t, results[1].OK)
	assert.NotEmpty(t, results[1].Error)
}

func TestExecuteNonCriticalFailureContinues(t *testing.T) {
	page := browsertest.New()
	page.Missing["#gone"] = true
	for _, alt := range selector.Alternatives("#gone") {
		page.Missing[alt] = true
	}
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "click", Selector: "#gone"},
		{Action: "click", Selector: "#ok"},
	})

	require.Len(t, results, 2)
	assert.False(t, results[0].OK)
	assert.True(t, results[1].OK)
}

func TestExecuteExists(t *testing.T) {
	page := browsertest.New()
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "exists", Selector: "#present"},
	})
	require.Len(t, results, 1)
	require.True(t, results[0].OK)
	assert.Equal(t, true, results[0].Data["exists"])
	assert.Equal(t, "#present", results[0].SelectorUsed)
}

func TestExecuteFirstVisible(t *testing.T) {
	page := browsertest.New()
	page.Hidden["#a"] = true
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "first_visible", Selectors: []string{"#a", "#b"}},
	})
	require.Len(t, results, 1)
	assert.Equal(t, "#b", results[0].SelectorUsed)
	assert.Equal(t, true, results[0].Data["found"])
}

func TestExecuteSmartClickTextFallback(t *testing.T) {
	page := browsertest.New()
	page.Missing["#add"] = true
	for _, alt := range selector.Alternatives("#add") {
		page.Missing[alt] = true
	}
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "smart_click", Selector: "#add", Description: "Add to cart"},
	})
	require.Len(t, results, 1)
	require.True(t, results[0].OK)
	assert.Equal(t, "Add to cart", results[0].SelectorUsed)
	assert.Contains(t, page.Ops, "click:text=Add to cart")
}

func TestExecuteUnknownAction(t *testing.T) {
	page := browsertest.New()
	e := newExecutor(page)

	results := e.Execute(context.Background(), []BatchAction{
		{Action: "teleport"},
	})
	require.Len(t, results, 1)
	assert.False(t, results[0].OK)
	assert.Contains(t, results[0].Error, "unknown action")
}
