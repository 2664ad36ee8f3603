package handler

import (
	"errors"
	"net/http"

	"speakup/backend/internal/intake"
	"speakup/backend/internal/pipeline"
	"speakup/backend/internal/storage"

	"github.com/gin-gonic/gin"
)

// Handler wires the intake pipeline into the HTTP surface.
type Handler struct {
	Intake    *intake.Service
	Storage   *storage.Service
	JWTSecret []byte
}

func NewHandler(intakeSvc *intake.Service, s *storage.Service, jwtSecret []byte) *Handler {
	return &Handler{Intake: intakeSvc, Storage: s, JWTSecret: jwtSecret}
}

// respondError maps the pipeline's tagged error kinds onto HTTP statuses.
// Anything unclassified is a dependency failure and stays a 500 for the
// caller to retry.
func respondError(c *gin.Context, err error) {
	var validation *pipeline.ValidationError
	var spam *pipeline.SpamRejectedError

	switch {
	case errors.As(err, &validation):
		c.JSON(http.StatusBadRequest, gin.H{"error": validation.Error()})
	case errors.As(err, &spam):
		c.JSON(http.StatusUnprocessableEntity, gin.H{"error": "spam detected", "reasons": spam.Reasons})
	case errors.Is(err, pipeline.ErrForbidden):
		c.JSON(http.StatusForbidden, gin.H{"error": "forbidden"})
	case errors.Is(err, pipeline.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
	case errors.Is(err, pipeline.ErrInvalidTransition):
		c.JSON(http.StatusConflict, gin.H{"error": "invalid status transition"})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
	}
}
