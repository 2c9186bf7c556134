package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"kharcha/internal/core"
	"kharcha/internal/services"
)

type messageOutput struct {
	Message string `json:"message"`
	Data    any    `json:"data,omitempty"`
}

func (e *env) printJSON(v any) error {
	enc := json.NewEncoder(e.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func (e *env) printMessage(msg string, data any) error {
	if e.json {
		return e.printJSON(messageOutput{Message: msg, Data: data})
	}
	_, err := fmt.Fprintln(e.stdout, msg)
	return err
}

// rupees formats m with two decimals and Indian digit grouping: ₹12,34,567.50.
func rupees(m core.Money) string {
	sign := ""
	if m.Cents < 0 {
		sign = "-"
		m.Cents = -m.Cents
	}
	fixed := m.Fixed()
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	if n := len(whole); n > 3 {
		head, tail := whole[:n-3], whole[n-3:]
		if len(head)%2 == 1 {
			b.WriteString(head[:1])
			head = head[1:]
		}
		for i := 0; i < len(head); i += 2 {
			if b.Len() > 0 {
				b.WriteByte(',')
			}
			b.WriteString(head[i : i+2])
		}
		b.WriteByte(',')
		b.WriteString(tail)
	} else {
		b.WriteString(whole)
	}
	return sign + "₹" + b.String() + "." + frac
}

func printTable(w io.Writer, v services.TableView) {
	if v.Total == 0 {
		fmt.Fprintln(w, "No expenses found.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDATE\tCATEGORY\tAMOUNT\tNOTE")
	for _, x := range v.Items {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", x.ID, x.Date, x.Category, rupees(x.Amount), x.Note)
	}
	tw.Flush()
	fmt.Fprintf(w, "Page %d of %d (%d expenses)\n", v.Number, v.TotalPages, v.Total)
}

func printDashboard(w io.Writer, v services.DashboardView) {
	k := v.KPIs
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Month\t%s\n", k.Month)
	fmt.Fprintf(tw, "Total\t%s\n", rupees(k.Total))
	fmt.Fprintf(tw, "Expenses\t%d\n", k.Count)
	fmt.Fprintf(tw, "Active days\t%d\n", k.ActiveDays)
	fmt.Fprintf(tw, "Average per active day\t%s\n", rupees(k.AveragePerActiveDay))
	if k.TopCategory != nil {
		fmt.Fprintf(tw, "Top category\t%s (%s)\n", k.TopCategory.Name, rupees(k.TopCategory.Amount))
	} else {
		fmt.Fprintln(tw, "Top category\t-")
	}
	if v.Budget.Budget.Cents > 0 {
		fmt.Fprintf(tw, "Budget\t%s of %s (%.0f%%)\n", rupees(v.Budget.Spent), rupees(v.Budget.Budget), v.Budget.Progress*100)
		fmt.Fprintf(tw, "Remaining\t%s\n", rupees(v.Budget.Remaining))
	}
	tw.Flush()
	fmt.Fprintln(w, v.Budget.Message)
}

func printHistory(w io.Writer, v services.HistoryView) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "MONTH\tTOTAL")
	for _, m := range v.Months {
		fmt.Fprintf(tw, "%s\t%s\n", m.Month, rupees(m.Total))
	}
	tw.Flush()

	fmt.Fprintf(w, "\n%s: %s\n", v.Selected.Month, rupees(v.Selected.Total))
	if v.Message != "" {
		fmt.Fprintln(w, v.Message)
		return
	}
	tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	for _, c := range v.Selected.ByCategory {
		fmt.Fprintf(tw, "  %s\t%s\n", c.Name, rupees(c.Amount))
	}
	tw.Flush()
}
