// Package worker keeps file backups of the ledger in step with the events the
// server publishes.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/storage"
	"kharcha/internal/transfer"
)

// Backup file names inside the backup directory.
const (
	ExpensesJSONFile = "expenses.json"
	ExpensesCSVFile  = "expenses.csv"
	SettingsFile     = "settings.json"
)

// SnapshotLoader reads the persisted ledger state.
type SnapshotLoader interface {
	Load(ctx context.Context) (storage.Snapshot, error)
}

type settingsFile struct {
	Budget core.Money `json:"monthlyBudget"`
	Theme  core.Theme `json:"theme"`
}

// BackupWorker rewrites the backup files from the store. Events only signal
// that the store changed; the files always reflect the full snapshot.
type BackupWorker struct {
	loader SnapshotLoader
	dir    string
	logger *log.Logger
	now    func() time.Time

	mu   sync.Mutex
	last time.Time
}

func NewBackupWorker(loader SnapshotLoader, dir string, logger *log.Logger) *BackupWorker {
	if logger == nil {
		logger = log.Discard()
	}
	return &BackupWorker{
		loader: loader,
		dir:    dir,
		logger: logger.WithComponent(log.ComponentWorker),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// HandleEvent backs up the ledger for evt. Events stamped before the last
// backup are already covered by it and are skipped.
func (w *BackupWorker) HandleEvent(ctx context.Context, evt *amqp.LedgerEvent) error {
	w.mu.Lock()
	covered := !w.last.IsZero() && evt.Timestamp.Before(w.last)
	w.mu.Unlock()
	if covered {
		w.logger.DebugContext(ctx, "Event already covered by last backup",
			"type", evt.Type,
			"event_time", evt.Timestamp.Format(time.RFC3339Nano))
		return nil
	}
	return w.Backup(ctx, string(evt.Type))
}

// Backup loads the snapshot and replaces the three backup files. Each file is
// written to a temporary name and renamed into place.
func (w *BackupWorker) Backup(ctx context.Context, reason string) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	started := w.now()
	snap, err := w.loader.Load(ctx)
	if err != nil {
		return fmt.Errorf("load snapshot: %w", err)
	}

	err = w.writeFile(ExpensesJSONFile, func(f io.Writer) error {
		return transfer.WriteJSON(f, snap.Expenses)
	})
	if err != nil {
		return err
	}
	err = w.writeFile(ExpensesCSVFile, func(f io.Writer) error {
		return transfer.WriteCSV(f, snap.Expenses)
	})
	if err != nil {
		return err
	}
	err = w.writeFile(SettingsFile, func(f io.Writer) error {
		enc := json.NewEncoder(f)
		enc.SetIndent("", "  ")
		return enc.Encode(settingsFile{Budget: snap.Budget, Theme: snap.Theme})
	})
	if err != nil {
		return err
	}

	w.last = started
	w.logger.InfoContext(ctx, "Ledger backed up",
		log.FieldOperation, log.OpBackup,
		"reason", reason,
		log.FieldCount, len(snap.Expenses),
		"dir", w.dir)
	return nil
}

// LastBackup is the load time of the most recent successful backup.
func (w *BackupWorker) LastBackup() time.Time {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.last
}

// Run takes a backup every interval until ctx ends, so missed events are
// eventually covered.
func (w *BackupWorker) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := w.Backup(ctx, "periodic"); err != nil {
				w.logger.ErrorContext(ctx, "Periodic backup failed", log.FieldError, err.Error())
			}
		}
	}
}

func (w *BackupWorker) writeFile(name string, write func(io.Writer) error) error {
	tmp, err := os.CreateTemp(w.dir, "."+name+".*")
	if err != nil {
		return fmt.Errorf("create temp for %s: %w", name, err)
	}
	defer os.Remove(tmp.Name())

	if err := write(tmp); err != nil {
		tmp.Close()
		return fmt.Errorf("write %s: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("close %s: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), filepath.Join(w.dir, name)); err != nil {
		return fmt.Errorf("replace %s: %w", name, err)
	}
	return nil
}
