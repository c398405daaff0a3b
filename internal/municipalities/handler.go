package municipalities

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/assembleia-vote/backend/pkg/response"
)

// UpdateWeightRequest is the body for PATCH /municipalities/:id/weight.
type UpdateWeightRequest struct {
	Weight *float64 `json:"weight" binding:"required"`
}

// Handler handles municipality HTTP endpoints.
type Handler struct {
	repo *Repository
}

// NewHandler creates a municipalities handler.
func NewHandler(repo *Repository) *Handler {
	return &Handler{repo: repo}
}

// List handles GET /municipalities.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		response.Internal(c, "falha ao listar municípios")
		return
	}
	response.OK(c, list)
}

// UpdateWeight handles PATCH /municipalities/:id/weight (admin only).
func (h *Handler) UpdateWeight(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de município inválido")
		return
	}
	var req UpdateWeightRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Weight == nil {
		response.BadRequest(c, "peso é obrigatório")
		return
	}
	if *req.Weight < 0 {
		response.BadRequest(c, "peso não pode ser negativo")
		return
	}
	m, err := h.repo.UpdateWeight(c.Request.Context(), id, *req.Weight)
	if err != nil {
		response.Internal(c, "falha ao atualizar peso")
		return
	}
	if m == nil {
		response.NotFound(c, "Município não encontrado")
		return
	}
	response.OK(c, m)
}
