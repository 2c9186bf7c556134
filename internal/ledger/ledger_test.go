package ledger

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/core"
)

var fixedNow = time.Date(2024, 5, 10, 9, 30, 0, 0, time.UTC)

func newTestLedger() *Ledger {
	n := 0
	return New(
		WithIDGenerator(func() string { n++; return fmt.Sprintf("id-%d", n) }),
		WithClock(func() time.Time { return fixedNow }),
	)
}

func draft(amount int64, category, date string) core.Draft {
	d, err := core.ParseDate(date)
	if err != nil {
		panic(err)
	}
	return core.Draft{Amount: core.Units(amount), Category: category, Date: d}
}

func TestAdd(t *testing.T) {
	l := newTestLedger()

	e, err := l.Add(core.Draft{Amount: core.Units(100), Category: "  Food ", Date: core.NewDate(2024, 5, 1), Note: " lunch "})
	require.NoError(t, err)
	assert.Equal(t, 1, l.Len())
	assert.Equal(t, "id-1", e.ID)
	assert.Equal(t, "Food", e.Category)
	assert.Equal(t, "lunch", e.Note)
	assert.Equal(t, fixedNow, e.CreatedAt)

	got, ok := l.Get(e.ID)
	require.True(t, ok)
	assert.Equal(t, e, got)
}

func TestAddRejectsInvalidDrafts(t *testing.T) {
	l := newTestLedger()
	_, err := l.Add(draft(10, "Food", "2024-05-01"))
	require.NoError(t, err)
	before := l.Expenses()

	cases := []struct {
		name string
		d    core.Draft
		err  error
	}{
		{"zero amount", core.Draft{Category: "Food", Date: core.NewDate(2024, 5, 1)}, core.ErrInvalidAmount},
		{"negative amount", core.Draft{Amount: core.Money{Cents: -1}, Category: "Food", Date: core.NewDate(2024, 5, 1)}, core.ErrInvalidAmount},
		{"empty category", core.Draft{Amount: core.Units(1), Category: " ", Date: core.NewDate(2024, 5, 1)}, core.ErrEmptyCategory},
		{"missing date", core.Draft{Amount: core.Units(1), Category: "Food"}, core.ErrMissingDate},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := l.Add(tc.d)
			assert.ErrorIs(t, err, tc.err)
			assert.Equal(t, before, l.Expenses())
		})
	}
}

func TestRemove(t *testing.T) {
	l := newTestLedger()
	a, _ := l.Add(draft(10, "Food", "2024-05-01"))
	b, _ := l.Add(draft(20, "Rent", "2024-05-02"))

	require.NoError(t, l.Remove(a.ID))
	assert.Equal(t, []core.Expense{b}, l.Expenses())

	assert.ErrorIs(t, l.Remove(a.ID), ErrNotFound)
	assert.Equal(t, 1, l.Len())
}

func TestEditReplacesWithNewID(t *testing.T) {
	l := newTestLedger()
	a, _ := l.Add(draft(10, "Food", "2024-05-01"))
	b, _ := l.Add(draft(20, "Rent", "2024-05-02"))

	edited, err := l.Edit(a.ID, draft(15, "Groceries", "2024-05-03"))
	require.NoError(t, err)
	assert.NotEqual(t, a.ID, edited.ID)
	assert.Equal(t, []core.Expense{b, edited}, l.Expenses())

	_, err = l.Edit(b.ID, core.Draft{Category: "x", Date: core.NewDate(2024, 5, 1)})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
	assert.Equal(t, []core.Expense{b, edited}, l.Expenses(), "failed edit must not remove the original")

	_, err = l.Edit("missing", draft(1, "x", "2024-05-01"))
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestRestore(t *testing.T) {
	l := newTestLedger()
	existing, _ := l.Add(draft(10, "Food", "2024-05-01"))

	records := []core.Expense{
		{ID: "r1", Amount: core.Units(5), Category: "A", Date: core.NewDate(2024, 4, 1), CreatedAt: fixedNow},
		{ID: "r2", Amount: core.Units(6), Category: "B", Date: core.NewDate(2024, 4, 2), CreatedAt: fixedNow},
	}
	require.NoError(t, l.Restore(records))
	assert.Equal(t, append([]core.Expense{existing}, records...), l.Expenses())

	err := l.Restore([]core.Expense{{ID: "r3", Amount: core.Units(1), Category: "C", Date: core.NewDate(2024, 4, 3)}, records[0]})
	assert.ErrorIs(t, err, ErrDuplicateID)
	assert.Equal(t, 3, l.Len(), "rejected batch must not be partially applied")

	err = l.Restore([]core.Expense{{ID: "bad", Category: "C", Date: core.NewDate(2024, 4, 3)}})
	assert.ErrorIs(t, err, core.ErrInvalidAmount)
}

func TestAddAllSkipsInvalid(t *testing.T) {
	l := newTestLedger()
	added, skipped := l.AddAll([]core.Draft{
		draft(10, "Food", "2024-05-01"),
		{Category: "Food", Date: core.NewDate(2024, 5, 1)},
		draft(20, "Rent", "2024-05-02"),
	})
	assert.Len(t, added, 2)
	assert.Equal(t, 1, skipped)
	assert.Equal(t, 2, l.Len())
}

func TestBudget(t *testing.T) {
	l := newTestLedger()
	assert.Equal(t, DefaultBudget, l.Budget())

	require.NoError(t, l.SetBudget(core.Units(1000)))
	assert.Equal(t, core.Units(1000), l.Budget())

	assert.ErrorIs(t, l.SetBudget(core.Money{}), core.ErrInvalidBudget)
	assert.ErrorIs(t, l.SetBudget(core.Money{Cents: -100}), core.ErrInvalidBudget)
	assert.Equal(t, core.Units(1000), l.Budget())

	l = New(WithBudget(core.Units(5)))
	assert.Equal(t, core.Units(5), l.Budget())
}

func TestExpensesIsACopy(t *testing.T) {
	l := newTestLedger()
	_, _ = l.Add(draft(10, "Food", "2024-05-01"))
	list := l.Expenses()
	list[0].Category = "Changed"
	e, _ := l.Get("id-1")
	assert.Equal(t, "Food", e.Category)

	l.Clear()
	assert.Equal(t, 0, l.Len())
	assert.Equal(t, DefaultBudget, l.Budget())
}

func TestDefaultIDsAreUnique(t *testing.T) {
	l := New()
	seen := map[string]bool{}
	for i := 0; i < 50; i++ {
		e, err := l.Add(draft(1, "x", "2024-05-01"))
		require.NoError(t, err)
		require.False(t, seen[e.ID], "duplicate id %s", e.ID)
		seen[e.ID] = true
	}
}
