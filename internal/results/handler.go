package results

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/pkg/response"
)

// Handler handles tally HTTP endpoints.
type Handler struct {
	service *Service
}

// NewHandler creates a results handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Get handles GET /events/:id/results. Results are readable at any lifecycle
// stage; for a closed event this is the final tally.
func (h *Handler) Get(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return
	}
	result, err := h.service.Compute(c.Request.Context(), eventID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	response.OK(c, result)
}
