package events

import (
	"context"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/middleware"
	"github.com/assembleia-vote/backend/internal/models"
	"github.com/assembleia-vote/backend/pkg/response"
)

// RosterService seeds and reads event rosters. Implemented by the
// participants service; kept as an interface so this package does not import
// that one.
type RosterService interface {
	EnrollMany(ctx context.Context, eventID uuid.UUID, userIDs []uuid.UUID) error
	Roster(ctx context.Context, eventID uuid.UUID) ([]models.Participant, error)
}

// CreateRequest is the body for POST /events.
type CreateRequest struct {
	Title         string      `json:"title" binding:"required"`
	Description   string      `json:"description"`
	VotingType    string      `json:"voting_type" binding:"required"`
	Alternatives  []string    `json:"alternatives"`
	Multiple      bool        `json:"multiple"`
	MaxSelections int         `json:"max_selections"`
	StartsAt      time.Time   `json:"starts_at" binding:"required"`
	EndsAt        time.Time   `json:"ends_at" binding:"required"`
	MinQuorumPct  *float64    `json:"min_quorum_pct"`
	Participants  []uuid.UUID `json:"participants"`
}

// Handler handles event lifecycle HTTP endpoints.
type Handler struct {
	service *Service
	roster  RosterService
	logger  *zap.Logger
}

// NewHandler creates an events handler.
func NewHandler(service *Service, roster RosterService, logger *zap.Logger) *Handler {
	return &Handler{service: service, roster: roster, logger: logger}
}

func eventID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return uuid.Nil, false
	}
	return id, true
}

// Create handles POST /events (admin only).
func (h *Handler) Create(c *gin.Context) {
	var req CreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "corpo da requisição inválido: "+err.Error())
		return
	}
	creatorVal, _ := c.Get(middleware.ContextUserID)
	creator, _ := creatorVal.(uuid.UUID)

	quorum := 60.0
	if req.MinQuorumPct != nil {
		quorum = *req.MinQuorumPct
	}
	e, err := h.service.Create(c.Request.Context(), CreateParams{
		Title:         req.Title,
		Description:   req.Description,
		VotingType:    req.VotingType,
		Alternatives:  req.Alternatives,
		Multiple:      req.Multiple,
		MaxSelections: req.MaxSelections,
		StartsAt:      req.StartsAt,
		EndsAt:        req.EndsAt,
		MinQuorumPct:  quorum,
		CreatedBy:     creator,
	})
	if err != nil {
		response.DomainError(c, err)
		return
	}
	if len(req.Participants) > 0 {
		if err := h.roster.EnrollMany(c.Request.Context(), e.ID, req.Participants); err != nil {
			h.logger.Error("seed roster failed", zap.String("event_id", e.ID.String()), zap.Error(err))
		}
	}
	response.Created(c, e)
}

// List handles GET /events.
func (h *Handler) List(c *gin.Context) {
	list, err := h.service.List(c.Request.Context())
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, list)
}

// Get handles GET /events/:id, returning the event with its roster.
func (h *Handler) Get(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := h.service.Get(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	roster, err := h.roster.Roster(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, gin.H{"event": e, "participants": roster})
}

// Start handles POST /events/:id/start (admin only).
func (h *Handler) Start(c *gin.Context) {
	h.doTransition(c, h.service.Start)
}

// Release handles POST /events/:id/release (admin only).
func (h *Handler) Release(c *gin.Context) {
	h.doTransition(c, h.service.Release)
}

// Close handles POST /events/:id/close (admin only).
func (h *Handler) Close(c *gin.Context) {
	h.doTransition(c, h.service.Close)
}

func (h *Handler) doTransition(c *gin.Context, fn func(context.Context, uuid.UUID) (*models.VotingEvent, error)) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	e, err := fn(c.Request.Context(), id)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, e)
}

// Delete handles DELETE /events/:id (admin only, RASCUNHO with no votes).
func (h *Handler) Delete(c *gin.Context) {
	id, ok := eventID(c)
	if !ok {
		return
	}
	if err := h.service.Delete(c.Request.Context(), id); err != nil {
		response.DomainError(c, err)
		return
	}
	response.OKMessage(c, "Evento excluído", nil)
}
