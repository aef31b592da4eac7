package classifier

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"support-pipeline-go/internal/config"
	"support-pipeline-go/internal/model"
)

func completionServer(t *testing.T, reply string, calls *int32) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(calls, 1)
		assert.Equal(t, "/chat/completions", r.URL.Path)

		var req chatRequest
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, 0.3, req.Temperature)
		assert.Equal(t, 150, req.MaxTokens)

		resp := chatResponse{}
		resp.Choices = append(resp.Choices, struct {
			Message chatMessage `json:"message"`
		}{Message: chatMessage{Role: "assistant", Content: reply}})
		json.NewEncoder(w).Encode(resp)
	}))
}

func TestClassifyWithoutAPIKey(t *testing.T) {
	var calls int32
	server := completionServer(t, "Category: Network", &calls)
	defer server.Close()

	clf := NewOpenAIClassifier(&config.OpenAIConfig{APIKey: "", APIBase: server.URL})

	cls := clf.Classify(context.Background(), "VPN down", "cannot connect")
	assert.Equal(t, model.CategoryOther, cls.Category)
	assert.Equal(t, model.PriorityMedium, cls.Priority)
	assert.Equal(t, "VPN down", cls.Summary)

	// Degraded mode makes no network call.
	assert.Equal(t, int32(0), atomic.LoadInt32(&calls))
}

func TestClassifyFullResponse(t *testing.T) {
	var calls int32
	server := completionServer(t, "Category: Network\nPriority: High\nSummary: VPN tunnel is down for all users.", &calls)
	defer server.Close()

	clf := NewOpenAIClassifier(&config.OpenAIConfig{APIKey: "test-key", APIBase: server.URL})

	cls := clf.Classify(context.Background(), "VPN down", "cannot connect")
	assert.Equal(t, model.CategoryNetwork, cls.Category)
	assert.Equal(t, model.PriorityHigh, cls.Priority)
	assert.Equal(t, "VPN tunnel is down for all users.", cls.Summary)
	assert.Equal(t, int32(1), atomic.LoadInt32(&calls))
}

func TestClassifyServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream busy", http.StatusBadGateway)
	}))
	defer server.Close()

	clf := NewOpenAIClassifier(&config.OpenAIConfig{APIKey: "test-key", APIBase: server.URL})

	cls := clf.Classify(context.Background(), "Mouse broken", "left click dead")
	assert.Equal(t, Fallback("Mouse broken"), cls)
}

func TestParseClassificationPartial(t *testing.T) {
	// Only a category line: the two missing fields get their own defaults.
	cls := ParseClassification("Category: Network", "original subject")
	assert.Equal(t, model.CategoryNetwork, cls.Category)
	assert.Equal(t, model.PriorityMedium, cls.Priority)
	assert.Equal(t, "original subject", cls.Summary)
}

func TestParseClassificationCaseAndOrder(t *testing.T) {
	text := "Some preamble.\nsummary: The disk is full.\nPRIORITY: low\ncategory: Hardware\n"
	cls := ParseClassification(text, "fallback")
	assert.Equal(t, model.CategoryHardware, cls.Category)
	assert.Equal(t, model.PriorityLow, cls.Priority)
	assert.Equal(t, "The disk is full.", cls.Summary)
}

func TestParseClassificationOutOfVocabulary(t *testing.T) {
	text := "Category: Quantum Flux\nPriority: URGENT!!\nSummary: Something odd."
	cls := ParseClassification(text, "fallback")
	assert.Equal(t, model.CategoryOther, cls.Category)
	assert.Equal(t, model.PriorityMedium, cls.Priority)
	assert.Equal(t, "Something odd.", cls.Summary)
}

func TestParseClassificationFirstMatchWins(t *testing.T) {
	text := "Category: Software\nCategory: Hardware\n"
	cls := ParseClassification(text, "s")
	assert.Equal(t, model.CategorySoftware, cls.Category)
}
