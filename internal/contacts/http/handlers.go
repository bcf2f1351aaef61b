package http

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"github.com/quadratic01/portfolio-api/internal/contacts/domain"
	"github.com/quadratic01/portfolio-api/internal/contacts/service"
	"github.com/quadratic01/portfolio-api/internal/logging"
)

// ContactIntake is implemented by service.ContactService.
type ContactIntake interface {
	Submit(ctx context.Context, in service.Input) (domain.Contact, error)
	List(ctx context.Context) []domain.Contact
}

type submitResponse struct {
	Success bool                 `json:"success"`
	Message string               `json:"message"`
	Errors  []service.FieldError `json:"errors,omitempty"`
}

// Handler bundles the dependencies for contact endpoints.
type Handler struct {
	intake ContactIntake
	logger zerolog.Logger
}

func New(intake ContactIntake, logger zerolog.Logger) *Handler {
	return &Handler{intake: intake, logger: logger}
}

func (h *Handler) submit(c *gin.Context) {
	ctx := c.Request.Context()
	logger := logging.FromContext(ctx, h.logger)

	var in service.Input
	if err := c.ShouldBindJSON(&in); err != nil {
		logger.Debug().Err(err).Msg("malformed contact payload")
		c.JSON(http.StatusBadRequest, submitResponse{
			Success: false,
			Message: "Invalid form data",
			Errors:  []service.FieldError{{Field: "body", Tag: "json", Message: "request body must be a JSON object"}},
		})
		return
	}

	if _, err := h.intake.Submit(ctx, in); err != nil {
		var verr *service.ValidationError
		if errors.As(err, &verr) {
			c.JSON(http.StatusBadRequest, submitResponse{
				Success: false,
				Message: "Invalid form data",
				Errors:  verr.Fields,
			})
			return
		}
		logger.Error().Err(err).Msg("contact submission failed")
		c.JSON(http.StatusInternalServerError, submitResponse{
			Success: false,
			Message: "Failed to send message. Please try again.",
		})
		return
	}

	c.JSON(http.StatusOK, submitResponse{Success: true, Message: "Message sent successfully!"})
}

func (h *Handler) list(c *gin.Context) {
	contacts := h.intake.List(c.Request.Context())
	if contacts == nil {
		contacts = []domain.Contact{}
	}
	c.JSON(http.StatusOK, contacts)
}
