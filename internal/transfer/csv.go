package transfer

import (
	"bufio"
	"fmt"
	"io"
	"strings"

	"kharcha/internal/core"
)

// CSVHeader is the first line of every CSV export.
var CSVHeader = []string{"Date", "Category", "Note", "Amount"}

const maxCSVLine = 1 << 20

// WriteCSV writes the header and one row per expense. Every field is
// double-quoted and embedded quotes are doubled; lines end with \n.
func WriteCSV(w io.Writer, expenses []core.Expense) error {
	bw := bufio.NewWriter(w)
	writeRow(bw, CSVHeader)
	for _, e := range expenses {
		writeRow(bw, []string{e.Date.String(), e.Category, e.Note, e.Amount.String()})
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("write csv export: %w", err)
	}
	return nil
}

func writeRow(w *bufio.Writer, cells []string) {
	for i, c := range cells {
		if i > 0 {
			w.WriteByte(',')
		}
		w.WriteByte('"')
		w.WriteString(strings.ReplaceAll(c, `"`, `""`))
		w.WriteByte('"')
	}
	w.WriteByte('\n')
}

// ReadCSV parses an export back into drafts. The first line is the header.
// Each line is split on every comma and all double quotes are dropped, so a
// quoted field containing a comma shifts the columns of its row. Rows missing
// a date, category or amount, or whose date or amount do not parse, are
// skipped and counted. Blank lines are ignored.
func ReadCSV(r io.Reader) (drafts []core.Draft, skipped int, err error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxCSVLine)

	header := true
	for sc.Scan() {
		if header {
			header = false
			continue
		}
		line := strings.TrimSpace(sc.Text())
		if line == "" {
			continue
		}
		d, ok := parseRow(line)
		if !ok {
			skipped++
			continue
		}
		drafts = append(drafts, d)
	}
	if err := sc.Err(); err != nil {
		return nil, 0, fmt.Errorf("read csv import: %w", err)
	}
	return drafts, skipped, nil
}

func parseRow(line string) (core.Draft, bool) {
	cells := strings.Split(line, ",")
	for len(cells) < 4 {
		cells = append(cells, "")
	}
	for i, c := range cells {
		cells[i] = strings.TrimSpace(strings.ReplaceAll(c, `"`, ""))
	}
	date, category, note, amount := cells[0], cells[1], cells[2], cells[3]
	if date == "" || category == "" || amount == "" {
		return core.Draft{}, false
	}
	d, err := core.ParseDate(date)
	if err != nil {
		return core.Draft{}, false
	}
	m, err := core.ParseMoney(amount)
	if err != nil {
		return core.Draft{}, false
	}
	return core.Draft{Amount: m, Category: category, Date: d, Note: note}, true
}
