package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestScoreSubstring(t *testing.T) {
	assert.Equal(t, 1.0, Score("backpack", "Sauce Labs Backpack"))
	assert.Equal(t, 1.0, Score("Sauce Labs Backpack", "backpack"))
}

func TestScoreDisjoint(t *testing.T) {
	assert.Less(t, Score("xyz", "backpack"), 0.5)
}

func TestBestMatch(t *testing.T) {
	catalog := []string{
		"Sauce Labs Backpack",
		"Sauce Labs Bike Light",
		"Sauce Labs Bolt T-Shirt",
		"Sauce Labs Fleece Jacket",
	}
	assert.Equal(t, "Sauce Labs Backpack", BestMatch("backpack", catalog))
	assert.Equal(t, "Sauce Labs Bolt T-Shirt", BestMatch("t-shirt", catalog))
	assert.Equal(t, "Sauce Labs Fleece Jacket", BestMatch("fleece jacket", catalog))
}

func TestBestMatchEmpty(t *testing.T) {
	assert.Equal(t, "", BestMatch("backpack", nil))
	assert.Equal(t, "", BestMatch("", []string{"a"}))
}
