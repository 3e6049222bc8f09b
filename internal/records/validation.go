package records

import (
	"errors"
	"fmt"
	"net/url"
	"reflect"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
)

const spreadsheetHost = "docs.google.com"

// Validator checks inputs and reports human-readable messages keyed by the
// json field name, which is also the form field name.
type Validator struct {
	validate *validator.Validate
}

// NewValidator builds a Validator that understands decimal amounts and the
// spreadsheet URL rule.
func NewValidator() *Validator {
	v := validator.New()
	v.RegisterCustomTypeFunc(func(field reflect.Value) interface{} {
		if d, ok := field.Interface().(decimal.Decimal); ok {
			f, _ := d.Float64()
			return f
		}
		return nil
	}, decimal.Decimal{})
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" || name == "" {
			return fld.Name
		}
		return name
	})
	_ = v.RegisterValidation("spreadsheet", func(fl validator.FieldLevel) bool {
		return IsSpreadsheetURL(fl.Field().String())
	})
	return &Validator{validate: v}
}

// Check validates v and returns field messages; nil means valid.
func (v *Validator) Check(input any) map[string]string {
	err := v.validate.Struct(input)
	if err == nil {
		return nil
	}
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return map[string]string{"general": err.Error()}
	}
	messages := make(map[string]string, len(fieldErrs))
	for _, fe := range fieldErrs {
		if _, seen := messages[fe.Field()]; seen {
			continue
		}
		messages[fe.Field()] = message(fe)
	}
	return messages
}

// fieldMessages overrides the generated message for field.tag pairs.
var fieldMessages = map[string]string{
	"name.required": "Please enter a sheet name",
	"url.required":  "Please enter a Google Sheets URL",
}

func message(fe validator.FieldError) string {
	if msg, ok := fieldMessages[fe.Field()+"."+fe.Tag()]; ok {
		return msg
	}
	label := humanize(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", label)
	case "gte", "min":
		if fe.Kind() == reflect.String {
			return fmt.Sprintf("%s must be at least %s characters", label, fe.Param())
		}
		return fmt.Sprintf("%s must be at least %s", label, fe.Param())
	case "max":
		return fmt.Sprintf("%s is too long", label)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", label, strings.ReplaceAll(fe.Param(), "'", ""))
	case "email":
		return "Please enter a valid email address"
	case "url":
		return fmt.Sprintf("%s must be a valid URL", label)
	case "spreadsheet":
		return "Please enter a valid Google Sheets URL"
	default:
		return fmt.Sprintf("%s is invalid", label)
	}
}

func humanize(field string) string {
	var b strings.Builder
	for i, r := range field {
		if i > 0 && r >= 'A' && r <= 'Z' {
			b.WriteByte(' ')
			r += 'a' - 'A'
		}
		if i == 0 && r >= 'a' && r <= 'z' {
			r -= 'a' - 'A'
		}
		b.WriteRune(r)
	}
	return b.String()
}

// IsSpreadsheetURL reports whether raw is an http(s) link to a Google Sheets
// document.
func IsSpreadsheetURL(raw string) bool {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return false
	}
	if u.Scheme != "https" && u.Scheme != "http" {
		return false
	}
	if !strings.EqualFold(u.Hostname(), spreadsheetHost) {
		return false
	}
	return strings.HasPrefix(u.Path, "/spreadsheets/")
}

// SpreadsheetID extracts the document id from a Google Sheets URL.
func SpreadsheetID(raw string) (string, bool) {
	if !IsSpreadsheetURL(raw) {
		return "", false
	}
	u, _ := url.Parse(strings.TrimSpace(raw))
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	// spreadsheets/d/<id>/edit
	if len(parts) >= 3 && parts[1] == "d" && parts[2] != "" {
		return parts[2], true
	}
	return "", false
}
