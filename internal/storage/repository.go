// Package storage maps the ledger state onto the three persisted keys.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"kharcha/internal/core"
	"kharcha/internal/kv"
	"kharcha/internal/log"
)

// Persisted keys.
const (
	KeyExpenses = "expenses"
	KeyBudget   = "monthlyBudget"
	KeyTheme    = "theme"
)

var ErrCorrupt = errors.New("stored expenses are corrupt")

// Snapshot is the full persisted state.
type Snapshot struct {
	Expenses []core.Expense
	Budget   core.Money
	Theme    core.Theme
}

type Repository struct {
	store         kv.Store
	defaultBudget core.Money
	logger        *log.Logger
}

func NewRepository(store kv.Store, defaultBudget core.Money, logger *log.Logger) *Repository {
	if logger == nil {
		logger = log.Discard()
	}
	return &Repository{
		store:         store,
		defaultBudget: defaultBudget,
		logger:        logger.WithComponent(log.ComponentStorage),
	}
}

// Load reads the snapshot. Missing keys fall back to an empty ledger, the
// default budget and the dark theme; an unusable budget or theme falls back
// the same way. Only an undecodable expenses entry is an error.
func (r *Repository) Load(ctx context.Context) (Snapshot, error) {
	snap := Snapshot{Budget: r.defaultBudget, Theme: core.ThemeDark}

	raw, err := r.get(ctx, KeyExpenses)
	if err != nil {
		return Snapshot{}, err
	}
	if raw != "" {
		var list []core.Expense
		if err := json.Unmarshal([]byte(raw), &list); err != nil {
			return Snapshot{}, fmt.Errorf("%w: %v", ErrCorrupt, err)
		}
		for i, e := range list {
			if err := e.Validate(); err != nil {
				return Snapshot{}, fmt.Errorf("%w: record %d: %v", ErrCorrupt, i, err)
			}
		}
		snap.Expenses = list
	}

	raw, err = r.get(ctx, KeyBudget)
	if err != nil {
		return Snapshot{}, err
	}
	if raw != "" {
		if b, err := core.ParseMoney(raw); err == nil {
			snap.Budget = b
		} else {
			r.logger.WarnContext(ctx, "Ignoring stored budget", log.FieldKey, KeyBudget, log.FieldError, err)
		}
	}

	raw, err = r.get(ctx, KeyTheme)
	if err != nil {
		return Snapshot{}, err
	}
	if raw != "" {
		if t, err := core.ParseTheme(raw); err == nil {
			snap.Theme = t
		} else {
			r.logger.WarnContext(ctx, "Ignoring stored theme", log.FieldKey, KeyTheme, log.FieldError, err)
		}
	}

	r.logger.DebugContext(ctx, "Snapshot loaded", log.FieldCount, len(snap.Expenses))
	return snap, nil
}

// SaveExpenses writes the whole list; a nil list is stored as [].
func (r *Repository) SaveExpenses(ctx context.Context, expenses []core.Expense) error {
	if expenses == nil {
		expenses = []core.Expense{}
	}
	data, err := json.Marshal(expenses)
	if err != nil {
		return fmt.Errorf("encode expenses: %w", err)
	}
	return r.put(ctx, KeyExpenses, string(data))
}

func (r *Repository) SaveBudget(ctx context.Context, budget core.Money) error {
	return r.put(ctx, KeyBudget, budget.String())
}

func (r *Repository) SaveTheme(ctx context.Context, theme core.Theme) error {
	return r.put(ctx, KeyTheme, string(theme))
}

// Save writes every key of snap.
func (r *Repository) Save(ctx context.Context, snap Snapshot) error {
	if err := r.SaveExpenses(ctx, snap.Expenses); err != nil {
		return err
	}
	if err := r.SaveBudget(ctx, snap.Budget); err != nil {
		return err
	}
	return r.SaveTheme(ctx, snap.Theme)
}

func (r *Repository) Close() error {
	return r.store.Close()
}

func (r *Repository) get(ctx context.Context, key string) (string, error) {
	v, err := r.store.Get(ctx, key)
	if errors.Is(err, kv.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("load %s: %w", key, err)
	}
	return v, nil
}

func (r *Repository) put(ctx context.Context, key, value string) error {
	if err := r.store.Put(ctx, key, value); err != nil {
		return fmt.Errorf("save %s: %w", key, err)
	}
	return nil
}
