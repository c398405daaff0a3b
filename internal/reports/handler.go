package reports

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/assembleia-vote/backend/pkg/response"
	"github.com/assembleia-vote/backend/pkg/storage"
)

// Handler handles report HTTP endpoints.
type Handler struct {
	service *Service
	s3      *storage.S3
	logger  *zap.Logger
}

// NewHandler creates a reports handler. s3 may be nil when archival is
// disabled; the download-url endpoint then reports the feature unavailable.
func NewHandler(service *Service, s3 *storage.S3, logger *zap.Logger) *Handler {
	return &Handler{service: service, s3: s3, logger: logger}
}

// Download handles GET /events/:id/report.csv, rendering the report on the
// fly. Works for any lifecycle stage; the archived copy is only written on
// close.
func (h *Handler) Download(c *gin.Context) {
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return
	}
	body, event, err := h.service.Build(c.Request.Context(), eventID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	filename := fmt.Sprintf("relatorio-%s.csv", event.ID)
	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "text/csv; charset=utf-8", body)
}

// DownloadURL handles GET /events/:id/report/download-url, returning a
// pre-signed link to the archived copy in S3.
func (h *Handler) DownloadURL(c *gin.Context) {
	if h.s3 == nil {
		response.NotFound(c, "arquivamento de relatórios desabilitado")
		return
	}
	eventID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.BadRequest(c, "id de evento inválido")
		return
	}
	rep, err := h.service.Latest(c.Request.Context(), eventID)
	if err != nil {
		response.DomainError(c, err)
		return
	}
	if rep == nil || rep.S3Key == "" {
		response.NotFound(c, "relatório arquivado não disponível")
		return
	}
	url, err := h.s3.GeneratePresignedDownloadURL(c.Request.Context(),
		h.s3.ReportsBucket(), rep.S3Key, h.s3.PresignExpire())
	if err != nil {
		h.logger.Error("presign report failed", zap.String("report_id", rep.ID.String()), zap.Error(err))
		response.Internal(c, "falha ao gerar link de download")
		return
	}
	response.OK(c, gin.H{
		"report_id":    rep.ID,
		"download_url": url,
		"expires_in":   int(h.s3.PresignExpire().Seconds()),
	})
}
