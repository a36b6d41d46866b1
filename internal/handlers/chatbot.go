package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/careops/equiptrack/internal/ai"
)

func (r *Router) chatContext(req *http.Request) (context.Context, context.CancelFunc) {
	return context.WithTimeout(req.Context(), ai.RequestTimeout*time.Second)
}

// chatUnavailable handles the unconfigured case: no credentials means the
// chatbot surface is down, not broken
func (r *Router) chatUnavailable(w http.ResponseWriter) bool {
	if r.chat == nil {
		respondError(w, http.StatusServiceUnavailable, "Chatbot is not configured")
		return true
	}
	return false
}

// chatWithBot answers a free-form question, optionally scoped to an
// equipment or maintenance record. When the upstream model fails and
// fallback mode is on, a canned advisory is returned instead of an error.
func (r *Router) chatWithBot(w http.ResponseWriter, req *http.Request) {
	if r.chatUnavailable(w) {
		return
	}
	var body struct {
		Message       string `json:"message"`
		EquipmentID   string `json:"equipmentId"`
		MaintenanceID string `json:"maintenanceId"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Message == "" {
		respondError(w, http.StatusBadRequest, "Message is required")
		return
	}

	ctx, cancel := r.chatContext(req)
	defer cancel()

	system, opts := ai.ChatPrompt(body.EquipmentID, body.MaintenanceID)
	reply, err := r.chat.Generate(ctx, system, body.Message, opts)
	if err != nil {
		if r.chatFallback {
			respondData(w, http.StatusOK, map[string]interface{}{
				"message":    ai.FallbackAdvice,
				"timestamp":  r.now(),
				"isFallback": true,
			})
			return
		}
		respondError(w, http.StatusBadGateway, "Chat service unavailable")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"message":   reply,
		"timestamp": r.now(),
	})
}

// maintenanceSuggestions produces maintenance guidance for an equipment type
// or a reported issue
func (r *Router) maintenanceSuggestions(w http.ResponseWriter, req *http.Request) {
	if r.chatUnavailable(w) {
		return
	}
	var body struct {
		EquipmentID   string `json:"equipmentId"`
		EquipmentType string `json:"equipmentType"`
		Issue         string `json:"issue"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.EquipmentID == "" && body.EquipmentType == "" {
		respondError(w, http.StatusBadRequest, "Equipment ID or equipment type is required")
		return
	}

	ctx, cancel := r.chatContext(req)
	defer cancel()

	system, user, opts := ai.SuggestionsPrompt(body.EquipmentType, body.Issue)
	reply, err := r.chat.Generate(ctx, system, user, opts)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to generate maintenance suggestions")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"suggestions":   reply,
		"equipmentType": body.EquipmentType,
		"issue":         body.Issue,
		"timestamp":     r.now(),
	})
}

// troubleshootingGuide produces a step-by-step guide for reported symptoms
func (r *Router) troubleshootingGuide(w http.ResponseWriter, req *http.Request) {
	if r.chatUnavailable(w) {
		return
	}
	var body struct {
		Symptoms      string `json:"symptoms"`
		EquipmentType string `json:"equipmentType"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.Symptoms == "" {
		respondError(w, http.StatusBadRequest, "Symptoms description is required")
		return
	}

	ctx, cancel := r.chatContext(req)
	defer cancel()

	system, user, opts := ai.TroubleshootingPrompt(body.Symptoms)
	reply, err := r.chat.Generate(ctx, system, user, opts)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to generate troubleshooting guide")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"guide":     reply,
		"symptoms":  body.Symptoms,
		"timestamp": r.now(),
	})
}

// scheduleRecommendations produces interval recommendations for an
// equipment type
func (r *Router) scheduleRecommendations(w http.ResponseWriter, req *http.Request) {
	if r.chatUnavailable(w) {
		return
	}
	var body struct {
		EquipmentType string `json:"equipmentType"`
		Usage         string `json:"usage"`
		Criticality   string `json:"criticality"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.EquipmentType == "" {
		respondError(w, http.StatusBadRequest, "Equipment type is required")
		return
	}

	ctx, cancel := r.chatContext(req)
	defer cancel()

	system, user, opts := ai.SchedulePrompt(body.EquipmentType, body.Usage, body.Criticality)
	reply, err := r.chat.Generate(ctx, system, user, opts)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to generate schedule recommendations")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"recommendations": reply,
		"equipmentType":   body.EquipmentType,
		"usage":           body.Usage,
		"criticality":     body.Criticality,
		"timestamp":       r.now(),
	})
}

// safetyProtocols produces safety procedures for maintaining an
// equipment type
func (r *Router) safetyProtocols(w http.ResponseWriter, req *http.Request) {
	if r.chatUnavailable(w) {
		return
	}
	var body struct {
		EquipmentType   string `json:"equipmentType"`
		MaintenanceType string `json:"maintenanceType"`
	}
	if err := json.NewDecoder(req.Body).Decode(&body); err != nil {
		respondError(w, http.StatusBadRequest, "Invalid request payload")
		return
	}
	if body.EquipmentType == "" {
		respondError(w, http.StatusBadRequest, "Equipment type is required")
		return
	}

	ctx, cancel := r.chatContext(req)
	defer cancel()

	system, user, opts := ai.SafetyPrompt(body.EquipmentType, body.MaintenanceType)
	reply, err := r.chat.Generate(ctx, system, user, opts)
	if err != nil {
		respondError(w, http.StatusBadGateway, "Failed to generate safety protocols")
		return
	}

	respondData(w, http.StatusOK, map[string]interface{}{
		"protocols":       reply,
		"equipmentType":   body.EquipmentType,
		"maintenanceType": body.MaintenanceType,
		"timestamp":       r.now(),
	})
}
