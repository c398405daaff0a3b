package auth

import (
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/internal/models"
	"github.com/assembleia-vote/backend/pkg/response"
	"github.com/assembleia-vote/backend/pkg/utils"
)

// LoginRequest is the body for POST /auth/login.
type LoginRequest struct {
	CPF      string `json:"cpf" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// TokenResponse is the auth response with JWT.
type TokenResponse struct {
	Token string            `json:"token"`
	User  models.UserPublic `json:"user"`
}

// Handler handles auth HTTP endpoints.
type Handler struct {
	repo   *Repository
	jwt    *JWTService
	logger *zap.Logger
}

// NewHandler creates an auth handler.
func NewHandler(repo *Repository, jwt *JWTService, logger *zap.Logger) *Handler {
	return &Handler{repo: repo, jwt: jwt, logger: logger}
}

// Login handles POST /auth/login (CPF + password).
func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, "CPF e senha são obrigatórios")
		return
	}

	cpf := utils.NormalizeCPF(req.CPF)
	if !utils.ValidCPF(cpf) {
		response.BadRequest(c, "CPF inválido")
		return
	}

	user, err := h.repo.GetActiveByCPF(c.Request.Context(), cpf)
	if err != nil {
		h.logger.Error("login lookup failed", zap.Error(err))
		response.Internal(c, "falha ao realizar login")
		return
	}
	if user == nil {
		response.Unauthorized(c, "CPF não cadastrado ou usuário inativo")
		return
	}

	if user.Password == "" || !utils.CheckPassword(req.Password, user.Password) {
		response.Unauthorized(c, "Senha incorreta")
		return
	}

	token, err := h.jwt.Generate(user.ID, user.CPF, user.Name, string(user.Role), user.MunicipalityID)
	if err != nil {
		h.logger.Error("token generation failed", zap.Error(err))
		response.Internal(c, "falha ao gerar token")
		return
	}

	response.OK(c, TokenResponse{Token: token, User: user.ToPublic()})
}

// List handles GET /users (admin only), e.g. for event enrollment.
func (h *Handler) List(c *gin.Context) {
	list, err := h.repo.List(c.Request.Context())
	if err != nil {
		h.logger.Error("list users failed", zap.Error(err))
		response.Internal(c, "falha ao listar usuários")
		return
	}
	response.OK(c, list)
}
