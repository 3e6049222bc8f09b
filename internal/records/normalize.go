package records

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

var titleCaser = cases.Title(language.English)

func normalizeEnum(raw string) string {
	fields := strings.Fields(raw)
	return titleCaser.String(strings.Join(fields, " "))
}

// ParseExpenseCategory matches raw case-insensitively against the known categories.
func ParseExpenseCategory(raw string) (ExpenseCategory, bool) {
	want := ExpenseCategory(normalizeEnum(raw))
	for _, c := range ExpenseCategories {
		if c == want {
			return c, true
		}
	}
	return "", false
}

// ParseExpenseStatus matches raw case-insensitively against the expense statuses.
func ParseExpenseStatus(raw string) (ExpenseStatus, bool) {
	want := ExpenseStatus(normalizeEnum(raw))
	for _, s := range ExpenseStatuses {
		if s == want {
			return s, true
		}
	}
	return "", false
}

// ParseTaskPriority matches raw case-insensitively against the task priorities.
func ParseTaskPriority(raw string) (TaskPriority, bool) {
	want := TaskPriority(normalizeEnum(raw))
	for _, p := range TaskPriorities {
		if p == want {
			return p, true
		}
	}
	return "", false
}

// ParseTaskStatus accepts "in progress", "In-Progress" and similar spellings.
func ParseTaskStatus(raw string) (TaskStatus, bool) {
	want := TaskStatus(normalizeEnum(strings.NewReplacer("-", " ", "_", " ").Replace(raw)))
	for _, s := range TaskStatuses {
		if s == want {
			return s, true
		}
	}
	return "", false
}
