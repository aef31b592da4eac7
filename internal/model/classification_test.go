package model

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseCategory(t *testing.T) {
	assert.Equal(t, CategoryHardware, ParseCategory("Hardware"))
	assert.Equal(t, CategoryHardware, ParseCategory("  hardware "))
	assert.Equal(t, CategoryUserError, ParseCategory("User Error"))
	assert.Equal(t, CategoryUserError, ParseCategory("UserError"))
	assert.Equal(t, CategoryUserError, ParseCategory("user-error"))
	assert.Equal(t, CategorySecurity, ParseCategory("SECURITY"))

	// Out-of-vocabulary output must normalize to Other, never pass through.
	assert.Equal(t, CategoryOther, ParseCategory("Billing"))
	assert.Equal(t, CategoryOther, ParseCategory(""))
	assert.Equal(t, CategoryOther, ParseCategory("hardware issues with the printer"))
}

func TestParsePriority(t *testing.T) {
	assert.Equal(t, PriorityHigh, ParsePriority("High"))
	assert.Equal(t, PriorityHigh, ParsePriority("HIGH "))
	assert.Equal(t, PriorityLow, ParsePriority("low"))

	// Anything unrecognized defaults to Medium.
	assert.Equal(t, PriorityMedium, ParsePriority("Medium"))
	assert.Equal(t, PriorityMedium, ParsePriority("urgent"))
	assert.Equal(t, PriorityMedium, ParsePriority(""))
}

func TestTruncate(t *testing.T) {
	assert.Equal(t, "abc", Truncate("abc", 5))
	assert.Equal(t, "abcde", Truncate("abcdefgh", 5))
	// Runes, not bytes.
	assert.Equal(t, "héllo", Truncate("héllo world", 5))
}

func TestNewRecord(t *testing.T) {
	now := time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)

	msg := Message{
		ID:      "m1",
		Subject: "Printer on fire",
		Body:    "The office printer is literally on fire.",
	}
	cls := Classification{Category: CategoryHardware, Priority: PriorityHigh, Summary: "Printer fire"}

	record := NewRecord(msg, cls, now)
	assert.Equal(t, "Printer on fire", record.Title)
	assert.Equal(t, msg.Body, record.Description)
	assert.Equal(t, CategoryHardware, record.Category)
	assert.Equal(t, PriorityHigh, record.Priority)
	assert.Equal(t, StatusNew, record.Status)
	assert.Equal(t, "2024-03-15", record.Date)
}

func TestNewRecordDefaultsAndLimits(t *testing.T) {
	now := time.Now()

	record := NewRecord(Message{}, Classification{Category: CategoryOther, Priority: PriorityMedium}, now)
	assert.Equal(t, "No Subject", record.Title)
	assert.Equal(t, "No content", record.Description)

	longSubject := make([]rune, 150)
	longBody := make([]rune, 2500)
	for i := range longSubject {
		longSubject[i] = 'a'
	}
	for i := range longBody {
		longBody[i] = 'b'
	}

	record = NewRecord(Message{Subject: string(longSubject), Body: string(longBody)}, Classification{}, now)
	assert.Len(t, record.Title, MaxTitleChars)
	assert.Len(t, record.Description, MaxDescriptionChars)
}

func TestSummaryAdd(t *testing.T) {
	summary := NewSummary()

	summary.Add(Record{Title: "a", Category: CategoryHardware, Priority: PriorityHigh})
	summary.Add(Record{Title: "b", Category: CategoryNetwork, Priority: PriorityMedium})
	summary.Add(Record{Title: "c", Category: CategoryHardware, Priority: PriorityHigh})

	assert.Equal(t, 3, summary.Total)
	assert.Equal(t, 2, summary.ByCategory[CategoryHardware])
	assert.Equal(t, 1, summary.ByCategory[CategoryNetwork])
	assert.Equal(t, 2, summary.ByPriority[PriorityHigh])
	assert.Equal(t, 1, summary.ByPriority[PriorityMedium])
	assert.Equal(t, []string{"a", "c"}, summary.HighPriority)
}
