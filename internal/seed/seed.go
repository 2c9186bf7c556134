// Package seed generates demo expenses with gofakeit.
package seed

import (
	"time"

	"github.com/brianvoe/gofakeit/v6"
	"github.com/shopspring/decimal"

	"kharcha/internal/core"
)

// Categories are the demo categories.
var Categories = []string{"Food", "Transport", "Groceries", "Rent", "Utilities", "Entertainment", "Health", "Shopping"}

// Options controls Drafts. A zero Seed picks a random one.
type Options struct {
	Count  int
	Months int
	Seed   int64
	Now    time.Time
}

// Drafts returns Count valid drafts dated within the last Months months of Now.
// The same Seed and Now always give the same drafts.
func Drafts(opts Options) []core.Draft {
	if opts.Count < 1 {
		return nil
	}
	if opts.Months < 1 {
		opts.Months = 3
	}
	if opts.Now.IsZero() {
		opts.Now = time.Now()
	}

	f := gofakeit.New(opts.Seed)
	end := core.NewDate(opts.Now.Year(), int(opts.Now.Month()), opts.Now.Day()).Time
	start := end.AddDate(0, -(opts.Months - 1), -(end.Day() - 1))
	days := int(end.Sub(start).Hours()/24) + 1

	out := make([]core.Draft, 0, opts.Count)
	for i := 0; i < opts.Count; i++ {
		category := f.RandomString(Categories)
		amount, err := core.FromDecimal(decimal.NewFromFloat(f.Price(priceRange(category))))
		if err != nil || amount.Cents <= 0 {
			amount = core.Units(1)
		}
		d := start.AddDate(0, 0, f.Number(0, days-1))
		note := ""
		if f.Number(0, 2) > 0 {
			note = f.Sentence(f.Number(2, 5))
		}
		out = append(out, core.Draft{
			Amount:   amount,
			Category: category,
			Date:     core.NewDate(d.Year(), int(d.Month()), d.Day()),
			Note:     note,
		})
	}
	return out
}

func priceRange(category string) (float64, float64) {
	switch category {
	case "Rent":
		return 8000, 25000
	case "Utilities", "Health", "Shopping":
		return 300, 4000
	default:
		return 20, 1500
	}
}
