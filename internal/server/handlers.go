package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/queryms/msconsole/internal/agent"
	"github.com/queryms/msconsole/internal/model/contract"
)

type chatRequest struct {
	Message             string             `json:"message"`
	ConversationHistory []contract.Message `json:"conversation_history"`
	Model               string             `json:"model"`
}

type chatToolCall struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
	Result    string          `json:"result"`
}

type chatResponse struct {
	Content   string         `json:"content"`
	ToolCalls []chatToolCall `json:"tool_calls"`
}

type modelInfo struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

var modelCatalog = []modelInfo{
	{ID: "gpt-4o", Name: "GPT-4o"},
	{ID: "gpt-4o-mini", Name: "GPT-4o Mini"},
	{ID: "gpt-4-turbo", Name: "GPT-4 Turbo"},
	{ID: "gpt-3.5-turbo", Name: "GPT-3.5 Turbo"},
}

// handleChatStream runs one turn and relays its events as server-sent
// events, one "data:" frame per event, flushed as produced.
func (s *Server) handleChatStream(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}

	streamID := ulid.Make().String()
	slog.Info("Chat stream started", "stream_id", streamID, "model", req.Model)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	events := s.agent.ChatStream(r.Context(), req.Message, req.ConversationHistory, req.Model)
	for event := range events {
		payload, err := json.Marshal(event)
		if err != nil {
			slog.Error("Event marshal failed", "stream_id", streamID, "error", err)
			continue
		}
		fmt.Fprintf(w, "data: %s\n\n", payload)
		flusher.Flush()
	}

	slog.Info("Chat stream finished", "stream_id", streamID)
}

// handleChat runs one turn to completion and returns the aggregate result.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	req, ok := decodeChatRequest(w, r)
	if !ok {
		return
	}

	resp := chatResponse{ToolCalls: []chatToolCall{}}
	byID := make(map[string]int)

	events := s.agent.ChatStream(r.Context(), req.Message, req.ConversationHistory, req.Model)
	for event := range events {
		switch e := event.(type) {
		case agent.ToolCallStartEvent:
			byID[e.ToolID] = len(resp.ToolCalls)
			resp.ToolCalls = append(resp.ToolCalls, chatToolCall{
				Name:      e.ToolName,
				Arguments: e.Arguments,
			})
		case agent.ToolCallEndEvent:
			if i, ok := byID[e.ToolID]; ok {
				resp.ToolCalls[i].Result = e.Result
			}
		case agent.TokenEvent:
			resp.Content += e.Content
		case agent.DoneEvent:
			if resp.Content == "" {
				resp.Content = e.Content
			}
		case agent.ErrorEvent:
			writeJSON(w, http.StatusInternalServerError, map[string]string{"error": e.Message})
			return
		}
	}

	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handlePing(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":    "pong",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"status":      "healthy",
		"agent_ready": s.agent != nil,
		"timestamp":   time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) handleModels(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]interface{}{
		"models":  modelCatalog,
		"default": s.agent.Model(),
	})
}

func (s *Server) handleTools(w http.ResponseWriter, r *http.Request) {
	defs := s.tools.Descriptors()
	tools := make([]map[string]interface{}, 0, len(defs))
	for _, def := range defs {
		tools = append(tools, map[string]interface{}{
			"type": "function",
			"function": map[string]interface{}{
				"name":        def.Name,
				"description": def.Description,
				"parameters":  def.Parameters,
			},
		})
	}
	writeJSON(w, http.StatusOK, map[string]interface{}{"tools": tools})
}

type connectionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

// handleTestConnection probes the model provider and the database so the
// client can diagnose its setup before chatting.
func (s *Server) handleTestConnection(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	results := map[string]connectionResult{}

	if err := s.provider.Health(ctx); err != nil {
		results["openai"] = connectionResult{Success: false, Message: err.Error()}
	} else {
		results["openai"] = connectionResult{Success: true, Message: "API connection successful"}
	}

	if err := s.store.Ping(ctx); err != nil {
		results["database"] = connectionResult{Success: false, Message: err.Error()}
	} else {
		results["database"] = connectionResult{Success: true, Message: "Database connection successful"}
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"success": results["openai"].Success && results["database"].Success,
		"results": results,
	})
}

func decodeChatRequest(w http.ResponseWriter, r *http.Request) (chatRequest, bool) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return req, false
	}
	if req.Message == "" {
		http.Error(w, "Missing required field: message", http.StatusBadRequest)
		return req, false
	}
	return req, true
}

func writeJSON(w http.ResponseWriter, status int, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("Response encoding failed", "error", err)
	}
}
