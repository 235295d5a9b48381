package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/mindhaven/recall-go/pkg/core"
	"github.com/mindhaven/recall-go/pkg/genai"
)

// systemPrompt is the fixed instruction for the companion persona. The
// memory-context block, when present, is appended to it before the
// conversation history.
const systemPrompt = "You are a warm, supportive companion. Listen carefully, " +
	"respond with empathy, and never give medical advice. " +
	"Use what you know about the user naturally, without listing it back."

// RememberRequest is the request body for creating a memory.
type RememberRequest struct {
	Content string   `json:"content"`
	Tags    []string `json:"tags,omitempty"`
	IsCore  bool     `json:"is_core,omitempty"`
}

// RecallRequest is the request body for the recall endpoint.
type RecallRequest struct {
	Query string   `json:"query"`
	Turns []string `json:"turns,omitempty"`
}

// RecallResponse is the response body for the recall endpoint.
type RecallResponse struct {
	Context  string         `json:"context"`
	Memories []*core.Memory `json:"memories"`
}

// ChatRequest is the request body for the chat endpoint.
type ChatRequest struct {
	Message string          `json:"message"`
	History []genai.Message `json:"history,omitempty"`
}

// ChatResponse is the response body for the chat endpoint.
type ChatResponse struct {
	Reply       string `json:"reply"`
	ContextUsed bool   `json:"context_used"`
}

// EraseResponse reports how many memories a bulk deletion removed.
type EraseResponse struct {
	Deleted int64 `json:"deleted"`
}

// handleRemember creates a new memory for the user.
func (s *Server) handleRemember(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req RememberRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := []core.RememberOption{core.WithUserID(userID)}
	if len(req.Tags) > 0 {
		opts = append(opts, core.WithTags(req.Tags...))
	}
	if req.IsCore {
		opts = append(opts, core.WithCore())
	}

	memory, err := s.client.Remember(r.Context(), req.Content, opts...)
	if err != nil {
		if errors.Is(err, core.ErrEmptyContent) {
			errorResponse(w, http.StatusBadRequest, "content is required")
			return
		}
		s.logger.Error("remember failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to store memory")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(memory)
}

// handleListMemories returns the user's memories, oldest first.
func (s *Server) handleListMemories(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	opts := []core.GetAllOption{core.WithUserIDForGetAll(userID)}
	if v := r.URL.Query().Get("limit"); v != "" {
		if limit, err := strconv.Atoi(v); err == nil {
			opts = append(opts, core.WithLimit(limit))
		}
	}
	if v := r.URL.Query().Get("offset"); v != "" {
		if offset, err := strconv.Atoi(v); err == nil {
			opts = append(opts, core.WithOffset(offset))
		}
	}

	memories, err := s.client.GetAll(r.Context(), opts...)
	if err != nil {
		s.logger.Error("list memories failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to list memories")
		return
	}

	if memories == nil {
		memories = []*core.Memory{}
	}
	successResponse(w, memories)
}

// handleGetMemory returns a single memory by ID.
func (s *Server) handleGetMemory(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	id, err := strconv.ParseInt(chi.URLParam(r, "memoryID"), 10, 64)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid memory id")
		return
	}

	memory, err := s.client.Get(r.Context(), id, core.WithUserIDForGet(userID))
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "memory not found")
			return
		}
		s.logger.Error("get memory failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to get memory")
		return
	}

	successResponse(w, memory)
}

// handleForget deletes a single memory by ID.
func (s *Server) handleForget(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	id, err := strconv.ParseInt(chi.URLParam(r, "memoryID"), 10, 64)
	if err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid memory id")
		return
	}

	if err := s.client.Forget(r.Context(), id, core.WithUserIDForForget(userID)); err != nil {
		if errors.Is(err, core.ErrNotFound) {
			errorResponse(w, http.StatusNotFound, "memory not found")
			return
		}
		s.logger.Error("forget failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to delete memory")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// handleErase bulk-deletes the user's memories.
//
// Query parameters select the scope:
//   - day=2025-03-05: erase everything created on that calendar day (UTC)
//   - before=2025-03-05T00:00:00Z: erase everything created before the cutoff
//   - no parameters: erase everything
func (s *Server) handleErase(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")
	query := r.URL.Query()

	var deleted int64
	var err error

	switch {
	case query.Get("day") != "":
		var day time.Time
		day, err = time.Parse("2006-01-02", query.Get("day"))
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid day format, use YYYY-MM-DD")
			return
		}
		deleted, err = s.client.EraseDay(r.Context(), day, core.WithUserIDForErase(userID))
	case query.Get("before") != "":
		var cutoff time.Time
		cutoff, err = time.Parse(time.RFC3339, query.Get("before"))
		if err != nil {
			errorResponse(w, http.StatusBadRequest, "invalid before format, use RFC 3339")
			return
		}
		deleted, err = s.client.EraseBefore(r.Context(), cutoff, core.WithUserIDForErase(userID))
	default:
		deleted, err = s.client.EraseAll(r.Context(), core.WithUserIDForErase(userID))
	}

	if err != nil {
		s.logger.Error("erase failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to erase memories")
		return
	}

	successResponse(w, EraseResponse{Deleted: deleted})
}

// handleRecall returns the rendered context block and the ranked memories
// for a query.
func (s *Server) handleRecall(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	var req RecallRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	opts := []core.RecallOption{core.WithUserIDForRecall(userID)}
	if len(req.Turns) > 0 {
		opts = append(opts, core.WithConversationTurns(req.Turns...))
	}

	block, memories, err := s.client.RecallWithMemories(r.Context(), req.Query, opts...)
	if err != nil {
		s.logger.Error("recall failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusInternalServerError, "failed to recall memories")
		return
	}

	if memories == nil {
		memories = []*core.Memory{}
	}
	successResponse(w, RecallResponse{Context: block, Memories: memories})
}

// handleChat generates a companion reply enriched with memory context.
//
// Memory retrieval is best-effort: a storage failure degrades to a reply
// without memory context rather than an error. Significant user statements
// are remembered asynchronously off the response path.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	userID := chi.URLParam(r, "userID")

	if s.provider == nil {
		errorResponse(w, http.StatusServiceUnavailable, "generative AI provider not configured")
		return
	}

	var req ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		errorResponse(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if req.Message == "" {
		errorResponse(w, http.StatusBadRequest, "message is required")
		return
	}

	// The conversation window is built from user turns only; assistant
	// replies must not feed their vocabulary into the scorer.
	turns := make([]string, 0, len(req.History)+1)
	for _, msg := range req.History {
		if msg.Role == "user" {
			turns = append(turns, msg.Content)
		}
	}
	turns = append(turns, req.Message)

	block, err := s.client.Recall(r.Context(), req.Message,
		core.WithUserIDForRecall(userID),
		core.WithConversationTurns(turns...))
	if err != nil {
		s.logger.Warn("recall failed, continuing without memory context",
			"user_id", userID, "error", err)
		block = ""
	}

	system := systemPrompt
	if block != "" {
		system += "\n\n" + block
	}

	messages := make([]genai.Message, 0, len(req.History)+2)
	messages = append(messages, genai.Message{Role: "system", Content: system})
	messages = append(messages, req.History...)
	messages = append(messages, genai.Message{Role: "user", Content: req.Message})

	reply, err := s.provider.GenerateWithMessages(r.Context(), messages)
	if err != nil {
		s.logger.Error("generation failed", "user_id", userID, "error", err)
		errorResponse(w, http.StatusBadGateway, "failed to generate reply")
		return
	}

	// Remember off the response path; the reply never waits on the write.
	// The request context is not used: it is canceled as soon as the
	// response is written, which would abort the insert.
	if s.client.Significant(req.Message) {
		s.client.RememberAsync(context.Background(), req.Message, core.WithUserID(userID))
	}

	successResponse(w, ChatResponse{
		Reply:       reply,
		ContextUsed: block != "",
	})
}
