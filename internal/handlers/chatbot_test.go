package handlers

import (
	"context"
	"errors"
	"net/http"
	"testing"

	"github.com/careops/equiptrack/internal/ai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubLLM is a canned ai.Client for handler tests
type stubLLM struct {
	reply      string
	err        error
	lastSystem string
	lastUser   string
}

func (s *stubLLM) Generate(ctx context.Context, systemPrompt, userPrompt string, opts ai.GenOptions) (string, error) {
	s.lastSystem = systemPrompt
	s.lastUser = userPrompt
	return s.reply, s.err
}

func (s *stubLLM) Name() string { return "stub" }
func (s *stubLLM) Close()       {}

func TestChatUnconfigured(t *testing.T) {
	router, _ := newTestRouter(t)

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/chat",
		map[string]string{"message": "hello"})
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Chatbot is not configured", env["message"])
}

func TestChatRequiresMessage(t *testing.T) {
	router, _ := newTestRouter(t, WithChat(&stubLLM{reply: "hi"}, true))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/chat", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, "Message is required", env["message"])
}

func TestChatReply(t *testing.T) {
	llm := &stubLLM{reply: "check the air filter"}
	router, _ := newTestRouter(t, WithChat(llm, true))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/chat", map[string]string{
		"message":     "the ventilator is making noise",
		"equipmentId": "6f1c5c1e-95ce-4ad0-9f15-47c0a1f7a001",
	})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "check the air filter", data["message"])
	assert.NotEmpty(t, data["timestamp"])
	assert.NotContains(t, data, "isFallback")

	assert.Equal(t, "the ventilator is making noise", llm.lastUser)
	assert.Contains(t, llm.lastSystem, "6f1c5c1e-95ce-4ad0-9f15-47c0a1f7a001")
}

func TestChatFallbackOnUpstreamFailure(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	router, _ := newTestRouter(t, WithChat(llm, true))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/chat",
		map[string]string{"message": "help"})
	require.Equal(t, http.StatusOK, rec.Code)

	env := decodeEnvelope(t, rec)
	assert.Equal(t, true, env["success"])
	data := env["data"].(map[string]interface{})
	assert.Equal(t, ai.FallbackAdvice, data["message"])
	assert.Equal(t, true, data["isFallback"])
}

func TestChatHardenedFailure(t *testing.T) {
	llm := &stubLLM{err: errors.New("quota exceeded")}
	router, _ := newTestRouter(t, WithChat(llm, false))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/chat",
		map[string]string{"message": "help"})
	assert.Equal(t, http.StatusBadGateway, rec.Code)
	env := decodeEnvelope(t, rec)
	assert.Equal(t, false, env["success"])
}

func TestSuggestionsRequiresContext(t *testing.T) {
	router, _ := newTestRouter(t, WithChat(&stubLLM{reply: "ok"}, true))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/suggestions", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/chatbot/suggestions",
		map[string]string{"equipmentType": "Ventilator", "issue": "alarm sounding"})
	require.Equal(t, http.StatusOK, rec.Code)

	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "ok", data["suggestions"])
	assert.Equal(t, "Ventilator", data["equipmentType"])
	assert.Equal(t, "alarm sounding", data["issue"])
}

func TestSpecializedEndpointsNeverFallBack(t *testing.T) {
	// Even in fallback mode, the specialized endpoints surface upstream failure
	llm := &stubLLM{err: errors.New("timeout")}
	router, _ := newTestRouter(t, WithChat(llm, true))

	cases := []struct {
		path string
		body map[string]string
	}{
		{"/api/chatbot/suggestions", map[string]string{"equipmentType": "MRI"}},
		{"/api/chatbot/troubleshooting", map[string]string{"symptoms": "no power"}},
		{"/api/chatbot/schedule-recommendations", map[string]string{"equipmentType": "MRI"}},
		{"/api/chatbot/safety-protocols", map[string]string{"equipmentType": "MRI"}},
	}
	for _, tc := range cases {
		rec := doJSON(t, router, http.MethodPost, tc.path, tc.body)
		assert.Equal(t, http.StatusBadGateway, rec.Code, tc.path)
	}
}

func TestTroubleshootingGuide(t *testing.T) {
	router, _ := newTestRouter(t, WithChat(&stubLLM{reply: "step 1: power cycle"}, true))

	rec := doJSON(t, router, http.MethodPost, "/api/chatbot/troubleshooting", map[string]string{})
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = doJSON(t, router, http.MethodPost, "/api/chatbot/troubleshooting",
		map[string]string{"symptoms": "display flickers"})
	require.Equal(t, http.StatusOK, rec.Code)
	data := decodeEnvelope(t, rec)["data"].(map[string]interface{})
	assert.Equal(t, "step 1: power cycle", data["guide"])
	assert.Equal(t, "display flickers", data["symptoms"])
}

func TestScheduleAndSafetyRequireEquipmentType(t *testing.T) {
	router, _ := newTestRouter(t, WithChat(&stubLLM{reply: "ok"}, true))

	for _, path := range []string{
		"/api/chatbot/schedule-recommendations",
		"/api/chatbot/safety-protocols",
	} {
		rec := doJSON(t, router, http.MethodPost, path, map[string]string{})
		assert.Equal(t, http.StatusBadRequest, rec.Code, path)
		env := decodeEnvelope(t, rec)
		assert.Equal(t, "Equipment type is required", env["message"], path)
	}
}
