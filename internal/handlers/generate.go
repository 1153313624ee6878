package handlers

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/crucial707/replydesk/internal/completion"
	"github.com/crucial707/replydesk/internal/metrics"
	"github.com/crucial707/replydesk/internal/middleware"
	"github.com/crucial707/replydesk/internal/prompt"
)

// ==========================
// Generate Handler
// ==========================
type GenerateHandler struct {
	Client *completion.Client
	Logger *slog.Logger
}

type generateRequest struct {
	CustomerEmail string `json:"customer_email"`
	prompt.Request
}

type generateResponse struct {
	Reply       string `json:"reply"`
	Model       string `json:"model"`
	PromptChars int    `json:"prompt_chars"`
}

// ==========================
// Generate (prompt assembly + completion call)
// ==========================
func (h *GenerateHandler) Generate(w http.ResponseWriter, r *http.Request) {
	var input generateRequest
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		JSONError(w, "invalid json", http.StatusBadRequest)
		return
	}

	if strings.TrimSpace(input.CustomerEmail) == "" {
		JSONValidationError(w, "validation failed",
			map[string]string{"customer_email": "required"}, http.StatusBadRequest)
		return
	}

	systemPrompt, err := prompt.Build(input.Request)
	if err != nil {
		metrics.RecordGeneration("rejected", 0)
		JSONValidationError(w, err.Error(), nil, http.StatusBadRequest)
		return
	}

	start := time.Now()
	reply, err := h.Client.Generate(r.Context(), systemPrompt, input.CustomerEmail)
	dur := time.Since(start).Seconds()
	if err != nil {
		metrics.RecordGeneration("failed", dur)
		username, _ := middleware.GetUsername(r.Context())
		h.Logger.Error("generate", "error", err, "user", username)
		if errors.Is(err, completion.ErrGenerationFailed) {
			JSONError(w, "generation failed, please retry", http.StatusBadGateway)
			return
		}
		JSONError(w, ErrMessageInternal, http.StatusInternalServerError)
		return
	}

	metrics.RecordGeneration("ok", dur)

	JSON(w, generateResponse{
		Reply:       reply,
		Model:       h.Client.Model(),
		PromptChars: len(systemPrompt),
	}, http.StatusOK)
}
