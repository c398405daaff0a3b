package votes

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/internal/middleware"
	"github.com/assembleia-vote/backend/pkg/response"
)

// CastRequest is the body for POST /events/:id/votes. A single-choice ballot
// sends one element; multi-select ballots send up to the event's limit.
type CastRequest struct {
	Selections []string `json:"selections" binding:"required"`
}

// Handler handles ballot HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a votes handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

func callerIdentity(c *gin.Context) (uuid.UUID, *uuid.UUID) {
	userVal, _ := c.Get(middleware.ContextUserID)
	userID, _ := userVal.(uuid.UUID)
	townVal, _ := c.Get(middleware.ContextMunicipalityID)
	municipalityID, _ := townVal.(*uuid.UUID)
	return userID, municipalityID
}

// Cast handles POST /events/:id/votes.
func (h *Handler) Cast(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return
	}
	var req CastRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "corpo da requisição inválido: "+err.Error())
		return
	}
	userID, municipalityID := callerIdentity(c)
	ballot, err := h.service.Cast(c.Request.Context(), CastParams{
		EventID:        eventID,
		UserID:         userID,
		MunicipalityID: municipalityID,
		Selections:     req.Selections,
	})
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.Created(c, ballot)
}

// Status handles GET /events/:id/votes/status. Reports whether the caller's
// municipality has already voted.
func (h *Handler) Status(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return
	}
	_, municipalityID := callerIdentity(c)
	ballot, err := h.service.Status(c.Request.Context(), eventID, municipalityID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, ballot)
}
