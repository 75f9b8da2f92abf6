package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/eventsync/eventsync-api/internal/service"
	appErrors "github.com/eventsync/eventsync-api/pkg/errors"
	"github.com/eventsync/eventsync-api/pkg/response"
)

// CertificateHandler exposes certificate issuance, public validation and the
// signed download endpoint.
type CertificateHandler struct {
	certificates *service.CertificateService
}

// NewCertificateHandler constructs CertificateHandler.
func NewCertificateHandler(certificates *service.CertificateService) *CertificateHandler {
	return &CertificateHandler{certificates: certificates}
}

// Generate godoc
// @Summary Issue certificate
// @Description Idempotently issue the caller's certificate for an attended, finished event
// @Tags Certificates
// @Produce json
// @Param id path string true "Event ID"
// @Success 201 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Failure 412 {object} response.Envelope
// @Router /events/{id}/certificate [post]
func (h *CertificateHandler) Generate(c *gin.Context) {
	issued, err := h.certificates.Generate(c.Request.Context(), actorFromContext(c), c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, issued)
}

// Validate godoc
// @Summary Validate certificate
// @Description Public lookup of a validation code; unknown codes return valid=false
// @Tags Certificates
// @Produce json
// @Param code path string true "Validation code"
// @Success 200 {object} response.Envelope
// @Router /certificates/validate/{code} [get]
func (h *CertificateHandler) Validate(c *gin.Context) {
	result, err := h.certificates.Validate(c.Request.Context(), c.Param("code"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result, nil)
}

// Download godoc
// @Summary Download certificate PDF
// @Description Resolve a signed token to the rendered PDF
// @Tags Certificates
// @Produce application/pdf
// @Param token query string true "Signed download token"
// @Success 200 {file} binary
// @Failure 404 {object} response.Envelope
// @Router /certificates/download [get]
func (h *CertificateHandler) Download(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "download token required"))
		return
	}

	data, filename, err := h.certificates.Download(c.Request.Context(), token)
	if err != nil {
		response.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
	c.Data(http.StatusOK, "application/pdf", data)
}
