package view

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/erpdesk/erpdesk/internal/erpapi"
	"github.com/erpdesk/erpdesk/internal/records"
)

// FormReader reads typed form values and collects conversion errors under
// the field name.
type FormReader struct {
	r      *http.Request
	Errors map[string]string
}

// NewFormReader parses the request form.
func NewFormReader(r *http.Request) (*FormReader, error) {
	if err := r.ParseForm(); err != nil {
		return nil, err
	}
	return &FormReader{r: r, Errors: make(map[string]string)}, nil
}

// String returns the trimmed value.
func (f *FormReader) String(name string) string {
	return strings.TrimSpace(f.r.PostFormValue(name))
}

// Int parses a whole number. Blank input is zero.
func (f *FormReader) Int(name, label string) int {
	raw := f.String(name)
	if raw == "" {
		return 0
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		f.Errors[name] = label + " must be a whole number"
		return 0
	}
	return n
}

// Decimal parses an amount. Blank input is zero.
func (f *FormReader) Decimal(name, label string) decimal.Decimal {
	raw := strings.ReplaceAll(f.String(name), ",", "")
	if raw == "" {
		return decimal.Zero
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		f.Errors[name] = label + " must be a number"
		return decimal.Zero
	}
	return d
}

// Date parses a yyyy-mm-dd value. Blank input is nil.
func (f *FormReader) Date(name, label string) *records.Timestamp {
	raw := f.String(name)
	if raw == "" {
		return nil
	}
	ts, err := records.ParseTimestamp(raw)
	if err != nil {
		f.Errors[name] = label + " must be a date"
		return nil
	}
	return &ts
}

// Merge adds validation messages that have no conversion error yet.
func (f *FormReader) Merge(errs map[string]string) map[string]string {
	for field, msg := range errs {
		if _, exists := f.Errors[field]; !exists {
			f.Errors[field] = msg
		}
	}
	return f.Errors
}

// Confirmed reports whether the confirm field was ticked.
func (f *FormReader) Confirmed() bool {
	switch strings.ToLower(f.String("confirm")) {
	case "yes", "true", "on", "1":
		return true
	}
	return false
}

// WriteErrorMessage turns a failed write into the message shown to the user.
func WriteErrorMessage(action string, err error) string {
	if msg, ok := erpapi.IsValidation(err); ok {
		return msg
	}
	if errors.Is(err, erpapi.ErrNotFound) {
		return "The record no longer exists."
	}
	return "Could not " + action + ". Please try again."
}

// ConfirmDelete is the data of the shared delete confirmation page.
type ConfirmDelete struct {
	Kind   string
	Name   string
	Action string
	Back   string
}
