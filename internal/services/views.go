package services

import (
	"io"

	"kharcha/internal/aggregate"
	"kharcha/internal/budget"
	"kharcha/internal/core"
	"kharcha/internal/ledger"
	"kharcha/internal/query"
	"kharcha/internal/transfer"
)

// NoHistoryMessage is shown for a month without expenses.
const NoHistoryMessage = "No data for this month yet."

type TableView struct {
	query.Page
	Criteria   query.Criteria `json:"criteria"`
	Categories []string       `json:"categories"`
}

type DashboardView struct {
	KPIs   aggregate.KPIs `json:"kpis"`
	Budget budget.Report  `json:"budget"`
}

type HistoryView struct {
	Months   []core.MonthTotal  `json:"months"`
	Selected core.MonthOverview `json:"selected"`
	Message  string             `json:"message,omitempty"`
}

// Settings is the budget and theme pair shown on the settings page.
type Settings struct {
	Budget core.Money `json:"budget"`
	Theme  core.Theme `json:"theme"`
}

func (s *LedgerService) Expense(id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.ledger.Get(id)
	if !ok {
		return core.Expense{}, ledger.ErrNotFound
	}
	return e, nil
}

// Expenses returns a copy of the ledger in insertion order.
func (s *LedgerService) Expenses() []core.Expense {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.ledger.Expenses()
}

// Table filters, sorts and paginates. size < 1 uses the configured page size.
func (s *LedgerService) Table(c query.Criteria, page, size int) TableView {
	if size < 1 {
		size = s.pageSize
	}
	list := s.Expenses()
	return TableView{
		Page:       query.Table(list, c, page, size),
		Criteria:   c,
		Categories: query.Categories(list),
	}
}

// Dashboard computes the KPIs and the budget report of month; the zero month
// means the current one.
func (s *LedgerService) Dashboard(month core.YearMonth) DashboardView {
	month = s.resolve(month)
	key := month.String()

	// Held across the fill so a commit cannot interleave with a stale Set.
	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.dashboards.Get(key); ok {
		return v
	}
	kpis := aggregate.Compute(s.ledger.Expenses(), month)
	v := DashboardView{KPIs: kpis, Budget: budget.Evaluate(kpis.Total, s.ledger.Budget())}
	s.dashboards.Set(key, v)
	return v
}

// History lists every month total, most recent first, with the category
// split of month; the zero month means the current one.
func (s *LedgerService) History(month core.YearMonth) HistoryView {
	month = s.resolve(month)
	key := month.String()

	s.mu.Lock()
	defer s.mu.Unlock()
	if v, ok := s.histories.Get(key); ok {
		return v
	}
	list := s.ledger.Expenses()
	v := HistoryView{
		Months:   aggregate.ByMonth(list),
		Selected: aggregate.Overview(list, month),
	}
	if len(v.Selected.ByCategory) == 0 {
		v.Message = NoHistoryMessage
	}
	s.histories.Set(key, v)
	return v
}

func (s *LedgerService) Settings() Settings {
	s.mu.Lock()
	defer s.mu.Unlock()
	return Settings{Budget: s.ledger.Budget(), Theme: s.theme}
}

func (s *LedgerService) Budget() core.Money {
	return s.Settings().Budget
}

func (s *LedgerService) Theme() core.Theme {
	return s.Settings().Theme
}

func (s *LedgerService) ExportJSON(w io.Writer) error {
	return transfer.WriteJSON(w, s.Expenses())
}

func (s *LedgerService) ExportCSV(w io.Writer) error {
	return transfer.WriteCSV(w, s.Expenses())
}

// Categories lists the categories in use, for filter pickers.
func (s *LedgerService) Categories() []string {
	return query.Categories(s.Expenses())
}

// CurrentMonth is the month the dashboard defaults to.
func (s *LedgerService) CurrentMonth() core.YearMonth {
	return core.CurrentYearMonth(s.now())
}

func (s *LedgerService) resolve(month core.YearMonth) core.YearMonth {
	if month == (core.YearMonth{}) {
		return s.CurrentMonth()
	}
	return month
}

// Today is the calendar day new expenses default to.
func (s *LedgerService) Today() core.Date {
	t := s.now()
	return core.NewDate(t.Year(), int(t.Month()), t.Day())
}
