package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/edugrant/internal/application"
	"github.com/oksasatya/edugrant/pkg/response"
)

type AssistantHandler struct {
	Svc *application.AssistantService
}

func NewAssistantHandler(svc *application.AssistantService) *AssistantHandler {
	return &AssistantHandler{Svc: svc}
}

type chatPart struct {
	Text string `json:"text"`
}

// chatTurn accepts either {role, text} or the {role, parts:[{text}]} shape.
type chatTurn struct {
	Role  string     `json:"role" binding:"required,chatrole"`
	Text  string     `json:"text"`
	Parts []chatPart `json:"parts"`
}

type assistantRequest struct {
	Message string     `json:"message" binding:"required,max=4000"`
	History []chatTurn `json:"history" binding:"omitempty,max=50,dive"`
}

// Message POST /api/assistant/message {message, history}
func (h *AssistantHandler) Message(c *gin.Context) {
	var req assistantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		invalidPayload(c, err)
		return
	}
	history := make([]application.ChatTurn, 0, len(req.History))
	for _, t := range req.History {
		text := t.Text
		if text == "" {
			parts := make([]string, 0, len(t.Parts))
			for _, p := range t.Parts {
				parts = append(parts, p.Text)
			}
			text = strings.Join(parts, "")
		}
		history = append(history, application.ChatTurn{Role: t.Role, Text: text})
	}
	text, err := h.Svc.Converse(c.Request.Context(), history, req.Message)
	if err != nil {
		response.Fail(c, err)
		return
	}
	response.Success[any](c, http.StatusOK, gin.H{"text": text}, "assistant reply", nil)
}
