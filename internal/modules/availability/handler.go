package availability

import (
	"net/http"

	"clinicbook/internal/pkg/response"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/availability", h.Resolve)
}

// Resolve godoc
// @Summary      Resolve bookable slots
// @Description  Lists the bookable time ranges for a service selection and optional date
// @Tags         Availability
// @Produce      json
// @Param        service query string true "Service selection label"
// @Param        date query string false "Exact date (2006-01-02)"
// @Success      200 {object} Result
// @Failure      400 {object} map[string]interface{}
// @Router       /availability [get]
func (h *Handler) Resolve(c *gin.Context) {
	q := ResolveQuery{
		Service: c.Query("service"),
		Date:    c.Query("date"),
	}
	if q.Service == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "service query parameter is required")
		return
	}

	result, err := h.service.Resolve(c.Request.Context(), q)
	if err != nil {
		// Degrades to an empty list for the caller; the log entry is what
		// separates a catalog outage from a quiet day.
		h.log.Error("availability fetch failed",
			zap.String("service", q.Service),
			zap.String("date", q.Date),
			zap.Error(err))
	}
	response.Success(c, http.StatusOK, result)
}
