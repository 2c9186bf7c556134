package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/cache"
	"kharcha/internal/core"
	"kharcha/internal/ledger"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/transfer"
)

var ErrConfirmationRequired = errors.New("deletion requires confirmation")

// Repository persists the ledger state.
type Repository interface {
	Load(ctx context.Context) (storage.Snapshot, error)
	SaveExpenses(ctx context.Context, expenses []core.Expense) error
	SaveBudget(ctx context.Context, budget core.Money) error
	SaveTheme(ctx context.Context, theme core.Theme) error
	Close() error
}

// Publisher announces committed commands.
type Publisher interface {
	Publish(ctx context.Context, evt *amqp.LedgerEvent) error
}

type Options struct {
	// Publisher is optional; nil disables ledger events
	Publisher Publisher
	Logger    *log.Logger
	PageSize  int
	Clock     func() time.Time

	// Caches default to no caching
	Dashboards cache.Cache[DashboardView]
	Histories  cache.Cache[HistoryView]

	LedgerOptions []ledger.Option
}

// ImportResult counts the records an import appended and the rows it skipped.
type ImportResult struct {
	Added   int `json:"added"`
	Skipped int `json:"skipped"`
}

// persisted keys touched by a command
type dirty uint8

const (
	dirtyExpenses dirty = 1 << iota
	dirtyBudget
	dirtyTheme
)

const eventBuffer = 64

// LedgerService owns the ledger, the theme and the repository. Commands are
// serialized; each one ends in a single commit that persists the touched keys,
// drops cached views and queues a ledger event.
type LedgerService struct {
	mu     sync.Mutex
	ledger *ledger.Ledger
	theme  core.Theme
	repo   Repository

	dashboards cache.Cache[DashboardView]
	histories  cache.Cache[HistoryView]

	pageSize int
	now      func() time.Time
	logger   *log.Logger
	sl       *log.StructuredLogger

	publisher Publisher
	events    chan *amqp.LedgerEvent
	done      chan struct{}
	closeOnce sync.Once
}

// NewLedgerService loads the persisted snapshot into a fresh ledger.
func NewLedgerService(ctx context.Context, repo Repository, opts Options) (*LedgerService, error) {
	if opts.Logger == nil {
		opts.Logger = log.Discard()
	}
	if opts.Clock == nil {
		opts.Clock = func() time.Time { return time.Now().UTC() }
	}
	if opts.PageSize < 1 {
		opts.PageSize = 5
	}
	if opts.Dashboards == nil {
		opts.Dashboards = cache.Noop[DashboardView]{}
	}
	if opts.Histories == nil {
		opts.Histories = cache.Noop[HistoryView]{}
	}

	snap, err := repo.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}

	ledgerOpts := append([]ledger.Option{ledger.WithClock(opts.Clock), ledger.WithBudget(snap.Budget)}, opts.LedgerOptions...)
	l := ledger.New(ledgerOpts...)
	if err := l.Restore(snap.Expenses); err != nil {
		return nil, fmt.Errorf("restore ledger: %w", err)
	}

	logger := opts.Logger.WithComponent(log.ComponentLedger)
	s := &LedgerService{
		ledger:     l,
		theme:      snap.Theme,
		repo:       repo,
		dashboards: opts.Dashboards,
		histories:  opts.Histories,
		pageSize:   opts.PageSize,
		now:        opts.Clock,
		logger:     logger,
		sl:         log.NewStructuredLogger(opts.Logger),
		publisher:  opts.Publisher,
		done:       make(chan struct{}),
	}
	if s.publisher != nil {
		s.events = make(chan *amqp.LedgerEvent, eventBuffer)
		go s.publishLoop(s.events)
	} else {
		close(s.done)
	}

	logger.InfoContext(ctx, "Ledger loaded",
		log.FieldCount, l.Len(),
		"budget", snap.Budget.String(),
		"theme", snap.Theme)
	return s, nil
}

func (s *LedgerService) AddExpense(ctx context.Context, d core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.Add(d)
	if err != nil {
		return core.Expense{}, err
	}
	evt := amqp.NewLedgerEvent(amqp.EventExpenseAdded)
	evt.ExpenseID = e.ID
	s.commit(ctx, log.OpCreate, dirtyExpenses, evt, log.NewFields().WithExpense(e.ID, e.Category, e.Amount.String()))
	return e, nil
}

// EditExpense replaces id with d. The record gets a new id and timestamp.
func (s *LedgerService) EditExpense(ctx context.Context, id string, d core.Draft) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, err := s.ledger.Edit(id, d)
	if err != nil {
		return core.Expense{}, err
	}
	evt := amqp.NewLedgerEvent(amqp.EventExpenseEdited)
	evt.ExpenseID = e.ID
	evt.Value = id
	s.commit(ctx, log.OpUpdate, dirtyExpenses, evt, log.NewFields().WithExpense(e.ID, e.Category, e.Amount.String()))
	return e, nil
}

// DeleteExpense removes id once the caller confirmed the deletion.
func (s *LedgerService) DeleteExpense(ctx context.Context, id string, confirmed bool) error {
	if !confirmed {
		return ErrConfirmationRequired
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.Remove(id); err != nil {
		return err
	}
	evt := amqp.NewLedgerEvent(amqp.EventExpenseDeleted)
	evt.ExpenseID = id
	s.commit(ctx, log.OpDelete, dirtyExpenses, evt, log.NewFields().WithExpense(id, "", ""))
	return nil
}

// ClearLedger drops every expense; budget and theme are kept.
func (s *LedgerService) ClearLedger(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	n := s.ledger.Len()
	s.ledger.Clear()
	evt := amqp.NewLedgerEvent(amqp.EventLedgerCleared)
	evt.Count = n
	s.commit(ctx, log.OpClear, dirtyExpenses, evt, log.LogFields{log.FieldCount: n})
	return nil
}

func (s *LedgerService) SetBudget(ctx context.Context, budget core.Money) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.ledger.SetBudget(budget); err != nil {
		return err
	}
	evt := amqp.NewLedgerEvent(amqp.EventBudgetChanged)
	evt.Value = budget.String()
	s.commit(ctx, log.OpBudget, dirtyBudget, evt, log.LogFields{log.FieldAmount: budget.String()})
	return nil
}

func (s *LedgerService) SetTheme(ctx context.Context, theme core.Theme) error {
	t, err := core.ParseTheme(string(theme))
	if err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.setTheme(ctx, t)
	return nil
}

func (s *LedgerService) ToggleTheme(ctx context.Context) (core.Theme, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := s.theme.Toggle()
	s.setTheme(ctx, t)
	return t, nil
}

func (s *LedgerService) setTheme(ctx context.Context, t core.Theme) {
	s.theme = t
	evt := amqp.NewLedgerEvent(amqp.EventThemeChanged)
	evt.Value = string(t)
	s.commit(ctx, log.OpTheme, dirtyTheme, evt, log.LogFields{"theme": t})
}

// ImportCSV appends the parsable rows of r with fresh ids.
func (s *LedgerService) ImportCSV(ctx context.Context, r io.Reader) (ImportResult, error) {
	drafts, skipped, err := transfer.ReadCSV(r)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	added, invalid := s.ledger.AddAll(drafts)
	res := ImportResult{Added: len(added), Skipped: skipped + invalid}
	if res.Added > 0 {
		evt := amqp.NewLedgerEvent(amqp.EventLedgerImported)
		evt.Count = res.Added
		evt.Value = "csv"
		s.commit(ctx, log.OpImport, dirtyExpenses, evt, log.LogFields{log.FieldCount: res.Added, log.FieldSkipped: res.Skipped})
	}
	return res, nil
}

// ImportJSON restores an exported array keeping ids. With replace the ledger
// is emptied first. Any invalid or colliding record rejects the whole file.
func (s *LedgerService) ImportJSON(ctx context.Context, r io.Reader, replace bool) (ImportResult, error) {
	records, err := transfer.ReadJSON(r)
	if err != nil {
		return ImportResult{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if replace {
		previous := s.ledger.Expenses()
		s.ledger.Clear()
		if err := s.ledger.Restore(records); err != nil {
			// previous was a valid ledger, so this cannot fail
			_ = s.ledger.Restore(previous)
			return ImportResult{}, err
		}
	} else if err := s.ledger.Restore(records); err != nil {
		return ImportResult{}, err
	}

	evt := amqp.NewLedgerEvent(amqp.EventLedgerImported)
	evt.Count = len(records)
	evt.Value = "json"
	s.commit(ctx, log.OpImport, dirtyExpenses, evt, log.LogFields{log.FieldCount: len(records), "replace": replace})
	return ImportResult{Added: len(records)}, nil
}

// commit persists the touched keys, invalidates the cached views and queues
// evt. A failed write is logged and the in-memory change stays.
func (s *LedgerService) commit(ctx context.Context, op string, keys dirty, evt *amqp.LedgerEvent, fields log.LogFields) {
	if keys&dirtyExpenses != 0 {
		if err := s.repo.SaveExpenses(ctx, s.ledger.Expenses()); err != nil {
			s.sl.LogError(ctx, "Failed to persist expenses", err, log.ComponentStorage, op, log.LogFields{log.FieldKey: storage.KeyExpenses})
		}
	}
	if keys&dirtyBudget != 0 {
		if err := s.repo.SaveBudget(ctx, s.ledger.Budget()); err != nil {
			s.sl.LogError(ctx, "Failed to persist budget", err, log.ComponentStorage, op, log.LogFields{log.FieldKey: storage.KeyBudget})
		}
	}
	if keys&dirtyTheme != 0 {
		if err := s.repo.SaveTheme(ctx, s.theme); err != nil {
			s.sl.LogError(ctx, "Failed to persist theme", err, log.ComponentStorage, op, log.LogFields{log.FieldKey: storage.KeyTheme})
		}
	}

	s.dashboards.Clear()
	s.histories.Clear()
	s.enqueue(ctx, evt)
	s.sl.LogCommand(ctx, op, fields)
}

func (s *LedgerService) enqueue(ctx context.Context, evt *amqp.LedgerEvent) {
	if s.events == nil {
		return
	}
	select {
	case s.events <- evt:
	default:
		s.logger.WarnContext(ctx, "Ledger event dropped, publish queue full", "type", evt.Type)
	}
}

// publishLoop sends queued events until Close. Publish failures are logged
// and never reach the command that produced the event.
func (s *LedgerService) publishLoop(events <-chan *amqp.LedgerEvent) {
	defer close(s.done)
	for evt := range events {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.publisher.Publish(ctx, evt); err != nil {
			s.logger.Warn("Failed to publish ledger event", "type", evt.Type, log.FieldError, err)
		}
		cancel()
	}
}

// Close flushes the event queue and closes the repository.
func (s *LedgerService) Close() error {
	var err error
	s.closeOnce.Do(func() {
		s.mu.Lock()
		if s.events != nil {
			close(s.events)
			s.events = nil
		}
		s.mu.Unlock()
		<-s.done

		if s.repo != nil {
			if cerr := s.repo.Close(); cerr != nil {
				err = fmt.Errorf("close repository: %w", cerr)
			}
		}
	})
	return err
}
