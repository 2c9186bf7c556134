// Package http provides the JSON API over the ledger service.
//
// This file implements the parsing of query strings and request bodies into
// the service's input types.

package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"kharcha/internal/core"
	"kharcha/internal/query"
)

// maxBodyBytes bounds JSON bodies; imports use maxUploadBytes.
const (
	maxBodyBytes   = 64 << 10
	maxUploadBytes = 5 << 20
)

var errBadBody = errors.New("request body is not valid JSON")

// expenseRequest is the body of POST /api/expenses and PUT /api/expenses/{id}.
// Amount accepts a number or a quoted number.
type expenseRequest struct {
	Amount   core.Money `json:"amount"`
	Category string     `json:"category"`
	Date     string     `json:"date"`
	Note     string     `json:"note"`
}

func (req expenseRequest) draft() (core.Draft, error) {
	d, err := core.ParseDate(req.Date)
	if err != nil {
		return core.Draft{}, err
	}
	return core.Draft{Amount: req.Amount, Category: req.Category, Date: d, Note: req.Note}, nil
}

type budgetRequest struct {
	Budget core.Money `json:"budget"`
}

type themeRequest struct {
	Theme string `json:"theme"`
}

// decodeJSON reads a single JSON value from the body into v. Errors raised by
// the domain decoders (amount, date) are returned unchanged.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		if errors.Is(err, core.ErrInvalidAmount) || errors.Is(err, core.ErrInvalidDate) {
			return err
		}
		return fmt.Errorf("%w: %w", errBadBody, err)
	}
	return nil
}

// ParseCriteria reads category, month and q from the query string.
// A non-empty month must be a valid YYYY-MM key.
func ParseCriteria(q url.Values) (query.Criteria, error) {
	c := query.Criteria{
		Category: strings.TrimSpace(q.Get("category")),
		Search:   strings.TrimSpace(q.Get("q")),
	}
	if m := strings.TrimSpace(q.Get("month")); m != "" {
		ym, err := core.ParseYearMonth(m)
		if err != nil {
			return query.Criteria{}, err
		}
		c.MonthPrefix = ym.String()
	}
	return c, nil
}

// ParsePageParams reads page and page_size; missing or malformed values give
// page 1 and the service's default size.
func ParsePageParams(q url.Values) (page, size int) {
	page = parsePositiveInt(q.Get("page"), 1)
	size = parsePositiveInt(q.Get("page_size"), 0)
	return page, size
}

// ParseMonth reads the month parameter. An empty value is the zero month,
// which the service resolves to the current one.
func ParseMonth(q url.Values) (core.YearMonth, error) {
	m := strings.TrimSpace(q.Get("month"))
	if m == "" {
		return core.YearMonth{}, nil
	}
	return core.ParseYearMonth(m)
}

// ParseBool reads a true/false flag such as confirm or replace.
func ParseBool(q url.Values, key string) bool {
	v, err := strconv.ParseBool(strings.TrimSpace(q.Get(key)))
	return err == nil && v
}

func parsePositiveInt(s string, def int) int {
	if n, err := strconv.Atoi(strings.TrimSpace(s)); err == nil && n > 0 {
		return n
	}
	return def
}

// uploadReader returns the uploaded file: the "file" part of a multipart
// form, or the raw body otherwise. The caller closes it.
func uploadReader(w http.ResponseWriter, r *http.Request) (io.ReadCloser, error) {
	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		return r.Body, nil
	}
	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		return nil, fmt.Errorf("%w: %w", errBadBody, err)
	}
	f, _, err := r.FormFile("file")
	if err != nil {
		return nil, fmt.Errorf("%w: missing file part", errBadBody)
	}
	return f, nil
}
