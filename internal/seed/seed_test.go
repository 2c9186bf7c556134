package seed

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

var now = time.Date(2024, 5, 15, 18, 0, 0, 0, time.UTC)

func TestDraftsAreValidAndInRange(t *testing.T) {
	drafts := Drafts(Options{Count: 200, Months: 3, Seed: 7, Now: now})
	require.Len(t, drafts, 200)

	first := core.NewDate(2024, 3, 1)
	last := core.NewDate(2024, 5, 15)
	for _, d := range drafts {
		require.NoError(t, d.Validate())
		assert.Contains(t, Categories, d.Category)
		assert.False(t, d.Date.Before(first.Time), "date %s before range", d.Date)
		assert.False(t, d.Date.After(last.Time), "date %s after range", d.Date)
	}
}

func TestDraftsAreDeterministicForASeed(t *testing.T) {
	a := Drafts(Options{Count: 20, Seed: 42, Now: now})
	b := Drafts(Options{Count: 20, Seed: 42, Now: now})
	assert.Equal(t, a, b)
}

func TestDraftsWithoutCount(t *testing.T) {
	assert.Empty(t, Drafts(Options{}))
}
