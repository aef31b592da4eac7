package mailsource

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	gmail "google.golang.org/api/gmail/v1"

	"support-pipeline-go/internal/model"
)

func encodeBody(s string) string {
	return base64.URLEncoding.EncodeToString([]byte(s))
}

func TestParseMessageMultipart(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-1",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/alternative",
			Headers: []*gmail.MessagePartHeader{
				{Name: "Subject", Value: "Printer jam"},
				{Name: "From", Value: "alice@example.com"},
				{Name: "Date", Value: "Mon, 04 Mar 2024 09:00:00 +0000"},
			},
			Parts: []*gmail.MessagePart{
				{
					MimeType: "text/plain",
					Body:     &gmail.MessagePartBody{Data: encodeBody("The printer on floor 2 is jammed.")},
				},
				{
					MimeType: "text/html",
					Body:     &gmail.MessagePartBody{Data: encodeBody("<p>HTML should not win</p>")},
				},
			},
		},
	}

	parsed, err := parseMessage(msg)
	assert.NoError(t, err)
	assert.Equal(t, "msg-1", parsed.ID)
	assert.Equal(t, "Printer jam", parsed.Subject)
	assert.Equal(t, "alice@example.com", parsed.Sender)
	assert.Equal(t, "The printer on floor 2 is jammed.", parsed.Body)
}

func TestParseMessageNestedMultipart(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-2",
		Payload: &gmail.MessagePart{
			MimeType: "multipart/mixed",
			Parts: []*gmail.MessagePart{
				{
					MimeType: "multipart/alternative",
					Parts: []*gmail.MessagePart{
						{
							MimeType: "text/plain",
							Body:     &gmail.MessagePartBody{Data: encodeBody("nested plain text")},
						},
					},
				},
			},
		},
	}

	parsed, err := parseMessage(msg)
	assert.NoError(t, err)
	assert.Equal(t, "nested plain text", parsed.Body)
}

func TestParseMessageSinglePart(t *testing.T) {
	msg := &gmail.Message{
		Id: "msg-3",
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Headers: []*gmail.MessagePartHeader{
				{Name: "subject", Value: "lowercase header name"},
			},
			Body: &gmail.MessagePartBody{Data: encodeBody("single part body")},
		},
	}

	parsed, err := parseMessage(msg)
	assert.NoError(t, err)
	assert.Equal(t, "lowercase header name", parsed.Subject)
	assert.Equal(t, "single part body", parsed.Body)
}

func TestParseMessageDefaults(t *testing.T) {
	msg := &gmail.Message{
		Id:      "msg-4",
		Payload: &gmail.MessagePart{},
	}

	parsed, err := parseMessage(msg)
	assert.NoError(t, err)
	assert.Equal(t, "No Subject", parsed.Subject)
	assert.Equal(t, "Unknown", parsed.Sender)
	assert.Equal(t, "", parsed.Date)
	assert.Equal(t, "", parsed.Body)
}

func TestParseMessageNoPayload(t *testing.T) {
	_, err := parseMessage(&gmail.Message{Id: "msg-5"})
	assert.Error(t, err)
}

func TestParseMessageTruncatesBody(t *testing.T) {
	long := strings.Repeat("x", model.MaxBodyChars+200)
	msg := &gmail.Message{
		Id: "msg-6",
		Payload: &gmail.MessagePart{
			MimeType: "text/plain",
			Body:     &gmail.MessagePartBody{Data: encodeBody(long)},
		},
	}

	parsed, err := parseMessage(msg)
	assert.NoError(t, err)
	assert.Len(t, parsed.Body, model.MaxBodyChars)
}

func TestHeaderValueFirstMatchWins(t *testing.T) {
	headers := []*gmail.MessagePartHeader{
		{Name: "Subject", Value: "first"},
		{Name: "Subject", Value: "second"},
	}
	assert.Equal(t, "first", headerValue(headers, "Subject", ""))
	assert.Equal(t, "fallback", headerValue(headers, "From", "fallback"))
}
