package model

import "strings"

// Category is the root-cause bucket assigned to a support issue. The string
// values match the select options of the record store.
type Category string

// Category values.
const (
	CategoryHardware  Category = "Hardware"
	CategorySoftware  Category = "Software"
	CategoryNetwork   Category = "Network"
	CategoryUserError Category = "User Error"
	CategorySecurity  Category = "Security"
	CategoryOther     Category = "Other"
)

// Priority of a support issue.
type Priority string

// Priority values.
const (
	PriorityHigh   Priority = "High"
	PriorityMedium Priority = "Medium"
	PriorityLow    Priority = "Low"
)

// Status of a record in the store. Records created by this service always
// start as New; the rest of the lifecycle is owned by the store.
type Status string

// Status values.
const (
	StatusNew        Status = "New"
	StatusInProgress Status = "In Progress"
	StatusResolved   Status = "Resolved"
	StatusClosed     Status = "Closed"
)

// Classification is the model's verdict for one message. Derived once per
// message and never mutated.
type Classification struct {
	Category Category `json:"category"`
	Priority Priority `json:"priority"`
	Summary  string   `json:"summary"`
}

// ParseCategory normalizes free text from the model into one of the closed
// category values. Anything out of vocabulary maps to Other.
func ParseCategory(s string) Category {
	switch canonical(s) {
	case "hardware":
		return CategoryHardware
	case "software":
		return CategorySoftware
	case "network":
		return CategoryNetwork
	case "usererror", "user":
		return CategoryUserError
	case "security":
		return CategorySecurity
	default:
		return CategoryOther
	}
}

// ParsePriority normalizes free text from the model into one of the closed
// priority values. Anything out of vocabulary maps to Medium.
func ParsePriority(s string) Priority {
	switch canonical(s) {
	case "high":
		return PriorityHigh
	case "low":
		return PriorityLow
	default:
		return PriorityMedium
	}
}

// canonical lowercases and strips everything but letters so that
// "User Error", "user-error" and "UserError" compare equal.
func canonical(s string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(s)) {
		if r >= 'a' && r <= 'z' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
