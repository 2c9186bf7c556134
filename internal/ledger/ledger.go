// Package ledger holds the expense records and the monthly budget in memory.
//
// A Ledger performs no I/O. Callers persist its state after a successful
// mutation; a failed mutation leaves the ledger exactly as it was.
package ledger

import (
	"errors"
	"fmt"
	"slices"
	"time"

	"github.com/google/uuid"

	"kharcha/internal/core"
)

var (
	ErrNotFound    = errors.New("expense not found")
	ErrDuplicateID = errors.New("duplicate expense id")
)

// DefaultBudget is the monthly budget before the user sets one.
var DefaultBudget = core.Units(30000)

type Ledger struct {
	expenses []core.Expense
	budget   core.Money
	newID    func() string
	now      func() time.Time
}

type Option func(*Ledger)

// WithIDGenerator replaces the uuid generator.
func WithIDGenerator(f func() string) Option {
	return func(l *Ledger) { l.newID = f }
}

// WithClock replaces the creation timestamp source.
func WithClock(f func() time.Time) Option {
	return func(l *Ledger) { l.now = f }
}

// WithBudget sets the starting budget.
func WithBudget(m core.Money) Option {
	return func(l *Ledger) { l.budget = m }
}

func New(opts ...Option) *Ledger {
	l := &Ledger{
		budget: DefaultBudget,
		newID:  uuid.NewString,
		now:    func() time.Time { return time.Now().UTC() },
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Add validates the draft, assigns a fresh id and timestamp, and appends it.
func (l *Ledger) Add(d core.Draft) (core.Expense, error) {
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return core.Expense{}, err
	}
	e := l.create(d)
	l.expenses = append(l.expenses, e)
	return e, nil
}

// AddAll appends every valid draft and returns what was added plus how many were skipped.
func (l *Ledger) AddAll(drafts []core.Draft) ([]core.Expense, int) {
	added := make([]core.Expense, 0, len(drafts))
	skipped := 0
	for _, d := range drafts {
		e, err := l.Add(d)
		if err != nil {
			skipped++
			continue
		}
		added = append(added, e)
	}
	return added, skipped
}

// Remove deletes the expense with the given id.
func (l *Ledger) Remove(id string) error {
	i := l.indexOf(id)
	if i < 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	l.expenses = slices.Delete(l.expenses, i, i+1)
	return nil
}

// Edit removes the expense and re-adds the draft as a new record with its own id.
func (l *Ledger) Edit(id string, d core.Draft) (core.Expense, error) {
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	d = d.Normalize()
	if err := d.Validate(); err != nil {
		return core.Expense{}, err
	}
	l.expenses = slices.Delete(l.expenses, i, i+1)
	e := l.create(d)
	l.expenses = append(l.expenses, e)
	return e, nil
}

// Restore appends records keeping their ids and timestamps.
// The batch is all-or-nothing.
func (l *Ledger) Restore(records []core.Expense) error {
	seen := make(map[string]struct{}, len(l.expenses)+len(records))
	for _, e := range l.expenses {
		seen[e.ID] = struct{}{}
	}
	for i, e := range records {
		if err := e.Validate(); err != nil {
			return fmt.Errorf("record %d: %w", i, err)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("record %d: %w: %s", i, ErrDuplicateID, e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	l.expenses = append(l.expenses, records...)
	return nil
}

// Clear drops every expense; the budget is kept.
func (l *Ledger) Clear() {
	l.expenses = nil
}

func (l *Ledger) Get(id string) (core.Expense, bool) {
	i := l.indexOf(id)
	if i < 0 {
		return core.Expense{}, false
	}
	return l.expenses[i], true
}

// Expenses returns a copy of the records in insertion order.
func (l *Ledger) Expenses() []core.Expense {
	return slices.Clone(l.expenses)
}

func (l *Ledger) Len() int {
	return len(l.expenses)
}

func (l *Ledger) Budget() core.Money {
	return l.budget
}

func (l *Ledger) SetBudget(m core.Money) error {
	if m.Cents <= 0 {
		return core.ErrInvalidBudget
	}
	l.budget = m
	return nil
}

func (l *Ledger) create(d core.Draft) core.Expense {
	return core.Expense{
		ID:        l.newID(),
		Amount:    d.Amount,
		Category:  d.Category,
		Date:      d.Date,
		Note:      d.Note,
		CreatedAt: l.now(),
	}
}

func (l *Ledger) indexOf(id string) int {
	return slices.IndexFunc(l.expenses, func(e core.Expense) bool { return e.ID == id })
}
