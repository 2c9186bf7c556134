package http

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	"kharcha/internal/core"
	"kharcha/internal/log"
	"kharcha/internal/services"
)

const (
	messageDeleted = "Expense deleted."
	messageCleared = "All expenses cleared."
	messageBudget  = "Budget updated."
	messageTheme   = "Theme updated."
)

func (s *Server) handleListExpenses(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	c, err := ParseCriteria(q)
	if err != nil {
		writeError(w, r, "list", err)
		return
	}
	page, size := ParsePageParams(q)
	writeJSON(w, http.StatusOK, s.svc.Table(c, page, size))
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	d, err := s.readDraft(w, r)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	e, err := s.svc.AddExpense(r.Context(), d)
	if err != nil {
		writeError(w, r, log.OpCreate, err)
		return
	}
	w.Header().Set("Location", "/api/expenses/"+e.ID)
	writeMessage(w, http.StatusCreated, services.MessageExpenseAdded, e)
}

func (s *Server) handleGetExpense(w http.ResponseWriter, r *http.Request) {
	e, err := s.svc.Expense(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, r, "get", err)
		return
	}
	writeJSON(w, http.StatusOK, e)
}

func (s *Server) handleUpdateExpense(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if _, err := s.svc.Expense(id); err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	d, err := s.readDraft(w, r)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	e, err := s.svc.EditExpense(r.Context(), id, d)
	if err != nil {
		writeError(w, r, log.OpUpdate, err)
		return
	}
	w.Header().Set("Location", "/api/expenses/"+e.ID)
	writeMessage(w, http.StatusOK, services.MessageExpenseUpdated, e)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	err := s.svc.DeleteExpense(r.Context(), chi.URLParam(r, "id"), ParseBool(r.URL.Query(), "confirm"))
	if err != nil {
		writeError(w, r, log.OpDelete, err)
		return
	}
	writeMessage(w, http.StatusOK, messageDeleted, nil)
}

func (s *Server) handleClearExpenses(w http.ResponseWriter, r *http.Request) {
	if !ParseBool(r.URL.Query(), "confirm") {
		writeError(w, r, log.OpClear, services.ErrConfirmationRequired)
		return
	}
	if err := s.svc.ClearLedger(r.Context()); err != nil {
		writeError(w, r, log.OpClear, err)
		return
	}
	writeMessage(w, http.StatusOK, messageCleared, nil)
}

func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Categories())
}

func (s *Server) handleDashboard(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, "dashboard", err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.Dashboard(month))
}

func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	month, err := ParseMonth(r.URL.Query())
	if err != nil {
		writeError(w, r, "history", err)
		return
	}
	writeJSON(w, http.StatusOK, s.svc.History(month))
}

func (s *Server) handleGetBudget(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, budgetRequest{Budget: s.svc.Budget()})
}

func (s *Server) handleSetBudget(w http.ResponseWriter, r *http.Request) {
	var req budgetRequest
	if err := decodeJSON(w, r, &req); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) {
			err = core.ErrInvalidBudget
		}
		writeError(w, r, log.OpBudget, err)
		return
	}
	if err := s.svc.SetBudget(r.Context(), req.Budget); err != nil {
		writeError(w, r, log.OpBudget, err)
		return
	}
	writeMessage(w, http.StatusOK, messageBudget, budgetRequest{Budget: s.svc.Budget()})
}

func (s *Server) handleGetTheme(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, themeRequest{Theme: string(s.svc.Theme())})
}

func (s *Server) handleSetTheme(w http.ResponseWriter, r *http.Request) {
	var req themeRequest
	if err := decodeJSON(w, r, &req); err != nil {
		writeError(w, r, log.OpTheme, err)
		return
	}
	if err := s.svc.SetTheme(r.Context(), core.Theme(req.Theme)); err != nil {
		writeError(w, r, log.OpTheme, err)
		return
	}
	writeMessage(w, http.StatusOK, messageTheme, themeRequest{Theme: string(s.svc.Theme())})
}

func (s *Server) handleToggleTheme(w http.ResponseWriter, r *http.Request) {
	t, err := s.svc.ToggleTheme(r.Context())
	if err != nil {
		writeError(w, r, log.OpTheme, err)
		return
	}
	writeMessage(w, http.StatusOK, messageTheme, themeRequest{Theme: string(t)})
}

func (s *Server) handleSettings(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings())
}

func (s *Server) handleExportJSON(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.json"`)
	if err := s.svc.ExportJSON(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "JSON export failed", log.FieldError, err.Error())
	}
}

func (s *Server) handleExportCSV(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="expenses.csv"`)
	if err := s.svc.ExportCSV(w); err != nil {
		log.FromContext(r.Context()).ErrorContext(r.Context(), "CSV export failed", log.FieldError, err.Error())
	}
}

func (s *Server) handleImportCSV(w http.ResponseWriter, r *http.Request) {
	body, err := uploadReader(w, r)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	defer body.Close()

	res, err := s.svc.ImportCSV(r.Context(), body)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	writeMessage(w, http.StatusOK, importMessage(res), res)
}

func (s *Server) handleImportJSON(w http.ResponseWriter, r *http.Request) {
	body, err := uploadReader(w, r)
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	defer body.Close()

	res, err := s.svc.ImportJSON(r.Context(), body, ParseBool(r.URL.Query(), "replace"))
	if err != nil {
		writeError(w, r, log.OpImport, err)
		return
	}
	writeMessage(w, http.StatusOK, importMessage(res), res)
}

func (s *Server) readDraft(w http.ResponseWriter, r *http.Request) (core.Draft, error) {
	var req expenseRequest
	if err := decodeJSON(w, r, &req); err != nil {
		return core.Draft{}, err
	}
	return req.draft()
}

func importMessage(res services.ImportResult) string {
	if res.Skipped > 0 {
		return fmt.Sprintf("Imported %d expenses, skipped %d rows.", res.Added, res.Skipped)
	}
	return fmt.Sprintf("Imported %d expenses.", res.Added)
}
