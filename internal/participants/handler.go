package participants

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/middleware"
	"github.com/assembleia-vote/backend/pkg/response"
)

// EnrollRequest is the body for POST /events/:id/participants.
type EnrollRequest struct {
	UserIDs []uuid.UUID `json:"user_ids" binding:"required"`
}

// Handler handles roster and presence HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a participants handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func parseEventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return uuid.Nil, false
	}
	return id, true
}

// Enroll handles POST /events/:id/participants (admin only).
func (h *Handler) Enroll(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	var req EnrollRequest
	if err := c.ShouldBindJSON(&req); err != nil || len(req.UserIDs) == 0 {
		response.BadRequest(c, "lista de participantes é obrigatória")
		return
	}
	if err := h.service.EnrollMany(c.Request.Context(), id, req.UserIDs); err != nil {
		response.DomainError(c, err)
		return
	}
	response.OKMessage(c, "Participantes cadastrados", nil)
}

// ConfirmPresence handles POST /events/:id/presence. The caller confirms
// their own presence; repeating the call is a no-op.
func (h *Handler) ConfirmPresence(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	userVal, _ := c.Get(middleware.ContextUserID)
	userID, _ := userVal.(uuid.UUID)
	if err := h.service.ConfirmPresence(c.Request.Context(), id, userID); err != nil {
		response.DomainError(c, err)
		return
	}
	summary, err := h.service.Quorum(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OKMessage(c, "Presença confirmada", summary)
}

// Roster handles GET /events/:id/participants.
func (h *Handler) Roster(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	roster, err := h.service.Roster(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, roster)
}

// Quorum handles GET /events/:id/quorum.
func (h *Handler) Quorum(c *gin.Context) {
	id, ok := parseEventID(c)
	if !ok {
		return
	}
	summary, err := h.service.Quorum(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, summary)
}
