package model

import "time"

// Field limits imposed by the record store.
const (
	MaxTitleChars       = 100
	MaxDescriptionChars = 2000
)

// Record is one persisted support issue as written to the external store.
// This service only appends records; their lifecycle is owned by the store.
type Record struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Category    Category `json:"category"`
	Priority    Priority `json:"priority"`
	Status      Status   `json:"status"`
	Date        string   `json:"date"`
}

// NewRecord builds a record from a message and its classification, applying
// the store's field limits and defaults.
func NewRecord(msg Message, cls Classification, now time.Time) Record {
	title := msg.Subject
	if title == "" {
		title = "No Subject"
	}
	description := msg.Body
	if description == "" {
		description = "No content"
	}

	return Record{
		Title:       Truncate(title, MaxTitleChars),
		Description: Truncate(description, MaxDescriptionChars),
		Category:    cls.Category,
		Priority:    cls.Priority,
		Status:      StatusNew,
		Date:        now.Format("2006-01-02"),
	}
}

// Truncate cuts s to at most n characters, counting runes so multi-byte
// subjects are not split mid-character.
func Truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
