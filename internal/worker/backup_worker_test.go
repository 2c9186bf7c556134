package worker

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kharcha/internal/amqp"
	"kharcha/internal/core"
	"kharcha/internal/kv/memory"
	"kharcha/internal/storage"
	"kharcha/internal/transfer"
)

var backupTime = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

func expense(id string, cents int64) core.Expense {
	return core.Expense{
		ID:        id,
		Amount:    core.Money{Cents: cents},
		Category:  "Food",
		Date:      core.NewDate(2024, 5, 1),
		Note:      "lunch",
		CreatedAt: backupTime.Add(-time.Hour),
	}
}

func newWorker(t *testing.T) (*BackupWorker, *storage.Repository, string) {
	t.Helper()
	dir := t.TempDir()
	repo := storage.NewRepository(memory.New(), core.Units(30000), nil)
	w := NewBackupWorker(repo, dir, nil)
	w.now = func() time.Time { return backupTime }
	return w, repo, dir
}

func readExpenses(t *testing.T, dir string) []core.Expense {
	t.Helper()
	f, err := os.Open(filepath.Join(dir, ExpensesJSONFile))
	require.NoError(t, err)
	defer f.Close()
	list, err := transfer.ReadJSON(f)
	require.NoError(t, err)
	return list
}

func TestBackupWritesAllFiles(t *testing.T) {
	w, repo, dir := newWorker(t)
	ctx := context.Background()

	require.NoError(t, repo.Save(ctx, storage.Snapshot{
		Expenses: []core.Expense{expense("a", 1250), expense("b", 300)},
		Budget:   core.Units(5000),
		Theme:    core.ThemeLight,
	}))
	require.NoError(t, w.Backup(ctx, "test"))

	list := readExpenses(t, dir)
	require.Len(t, list, 2)
	assert.Equal(t, "a", list[0].ID)
	assert.Equal(t, int64(1250), list[0].Amount.Cents)

	csv, err := os.ReadFile(filepath.Join(dir, ExpensesCSVFile))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(csv), `"Date","Category","Note","Amount"`+"\n"))
	assert.Contains(t, string(csv), `"2024-05-01","Food","lunch","12.5"`)

	raw, err := os.ReadFile(filepath.Join(dir, SettingsFile))
	require.NoError(t, err)
	var settings settingsFile
	require.NoError(t, json.Unmarshal(raw, &settings))
	assert.Equal(t, core.Units(5000), settings.Budget)
	assert.Equal(t, core.ThemeLight, settings.Theme)

	assert.Equal(t, backupTime, w.LastBackup())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Len(t, entries, 3, "temporary files must not be left behind")
}

func TestBackupEmptyStore(t *testing.T) {
	w, _, dir := newWorker(t)

	require.NoError(t, w.Backup(context.Background(), "test"))

	raw, err := os.ReadFile(filepath.Join(dir, ExpensesJSONFile))
	require.NoError(t, err)
	assert.Equal(t, "[]\n", string(raw))
}

func TestHandleEventSkipsCoveredEvents(t *testing.T) {
	w, repo, dir := newWorker(t)
	ctx := context.Background()

	require.NoError(t, repo.SaveExpenses(ctx, []core.Expense{expense("a", 100)}))
	require.NoError(t, w.Backup(ctx, "startup"))

	require.NoError(t, repo.SaveExpenses(ctx, []core.Expense{expense("a", 100), expense("b", 200)}))

	old := amqp.NewLedgerEvent(amqp.EventExpenseAdded)
	old.Timestamp = backupTime.Add(-time.Second)
	require.NoError(t, w.HandleEvent(ctx, old))
	assert.Len(t, readExpenses(t, dir), 1)

	fresh := amqp.NewLedgerEvent(amqp.EventExpenseAdded)
	fresh.Timestamp = backupTime.Add(time.Second)
	require.NoError(t, w.HandleEvent(ctx, fresh))
	assert.Len(t, readExpenses(t, dir), 2)
}

type failingLoader struct{}

func (failingLoader) Load(context.Context) (storage.Snapshot, error) {
	return storage.Snapshot{}, storage.ErrCorrupt
}

func TestBackupLoadFailure(t *testing.T) {
	dir := t.TempDir()
	w := NewBackupWorker(failingLoader{}, dir, nil)

	err := w.HandleEvent(context.Background(), amqp.NewLedgerEvent(amqp.EventLedgerCleared))
	require.Error(t, err)
	assert.True(t, errors.Is(err, storage.ErrCorrupt))
	assert.True(t, w.LastBackup().IsZero())

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestRunStopsWithContext(t *testing.T) {
	w, _, _ := newWorker(t)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Run(ctx, time.Hour)
		close(done)
	}()
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
