package booking

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinicbook/internal/domain"
	"clinicbook/internal/pkg/response"
	"clinicbook/internal/pkg/validator"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/bookings", h.Create)
	rg.GET("/bookings/:reference", h.GetByReference)
}

// Create handles the public booking form submission.
func (h *Handler) Create(c *gin.Context) {
	var req CreateBookingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		if details := validator.Validate(req); details != nil {
			response.ErrorWithDetails(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid booking form", details)
			return
		}
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}

	result, err := h.service.CreateBooking(c.Request.Context(), req, c.GetHeader("X-Idempotency-Key"))
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidScheduleFormat):
			response.Error(c, http.StatusBadRequest, "INVALID_SCHEDULE", err.Error())
		case errors.Is(err, ErrValidation):
			response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
		case errors.Is(err, ErrSlotUnavailable):
			response.Error(c, http.StatusConflict, "SLOT_UNAVAILABLE", "the selected time is no longer available")
		default:
			h.log.Error("create booking", zap.Error(err))
			response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "could not create booking")
		}
		return
	}

	status := http.StatusCreated
	if result.Deduped {
		status = http.StatusOK
	}
	response.Success(c, status, result)
}

// GetByReference is the public status view for a confirmation page.
func (h *Handler) GetByReference(c *gin.Context) {
	b, err := h.service.GetByReference(c.Request.Context(), c.Param("reference"))
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			response.Error(c, http.StatusNotFound, "NOT_FOUND", "booking not found")
			return
		}
		h.log.Error("get booking", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, b)
}
