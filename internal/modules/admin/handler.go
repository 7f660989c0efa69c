package admin

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinicbook/internal/modules/payment"
	"clinicbook/internal/pkg/response"
)

type Handler struct {
	service *Service
	log     *zap.Logger
}

func NewHandler(service *Service, log *zap.Logger) *Handler {
	return &Handler{service: service, log: log}
}

// RegisterPublicRoutes mounts login, the only unauthenticated admin route.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.POST("/login", h.Login)
}

// RegisterProtectedRoutes mounts everything behind the auth + role guard.
func (h *Handler) RegisterProtectedRoutes(rg *gin.RouterGroup) {
	rg.GET("/bookings", h.ListBookings)
	rg.GET("/bookings/:id", h.GetBooking)
	rg.POST("/bookings/:id/confirm", h.ConfirmBooking)
	rg.POST("/bookings/:id/cancel", h.CancelBooking)

	rg.GET("/payment-requests", h.ListPaymentRequests)
	rg.POST("/payment-requests/:reference/resend", h.ResendPaymentRequest)
	rg.POST("/payment-requests/:reference/cancel", h.CancelPaymentRequest)

	rg.GET("/slots", h.ListSlots)
	rg.POST("/slots", h.CreateSlot)
	rg.PATCH("/slots/:id", h.UpdateSlot)

	rg.GET("/notifications", h.ListNotifications)
}

func (h *Handler) Login(c *gin.Context) {
	var req LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "email and password are required")
		return
	}
	result, err := h.service.Login(c.Request.Context(), req)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.Error(c, http.StatusUnauthorized, "INVALID_CREDENTIALS", "invalid email or password")
			return
		}
		h.log.Error("admin login", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
		return
	}
	response.Success(c, http.StatusOK, result)
}

func (h *Handler) ListBookings(c *gin.Context) {
	page, limit := pageParams(c)
	items, total, err := h.service.ListBookings(c.Request.Context(), c.Query("status"), limit, (page-1)*limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

func (h *Handler) GetBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.service.GetBooking(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ConfirmBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.service.ConfirmBooking(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) CancelBooking(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	b, err := h.service.CancelBooking(c.Request.Context(), id)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, b)
}

func (h *Handler) ListPaymentRequests(c *gin.Context) {
	page, limit := pageParams(c)
	items, total, err := h.service.ListPaymentRequests(c.Request.Context(), c.Query("status"), limit, (page-1)*limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

func (h *Handler) ResendPaymentRequest(c *gin.Context) {
	var req ResendPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_type must be deposit or full")
		return
	}
	view, err := h.service.ResendPaymentRequest(c.Request.Context(), c.Param("reference"), req.PaymentType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) CancelPaymentRequest(c *gin.Context) {
	var req CancelPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid request body")
		return
	}
	view, err := h.service.CancelPaymentRequest(c.Request.Context(), c.Param("reference"), req.Silent)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

func (h *Handler) ListSlots(c *gin.Context) {
	slots, err := h.service.ListSlots(c.Request.Context(), c.Query("from"), c.Query("to"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, slots)
}

func (h *Handler) CreateSlot(c *gin.Context) {
	var req CreateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "date, start_time, end_time and slot_type are required")
		return
	}
	slot, err := h.service.CreateSlot(c.Request.Context(), req)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusCreated, slot)
}

func (h *Handler) UpdateSlot(c *gin.Context) {
	id, ok := idParam(c)
	if !ok {
		return
	}
	var req UpdateSlotRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.IsAvailable == nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "is_available is required")
		return
	}
	slot, err := h.service.ToggleSlot(c.Request.Context(), id, *req.IsAvailable)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, slot)
}

func (h *Handler) ListNotifications(c *gin.Context) {
	page, limit := pageParams(c)
	items, total, err := h.service.ListNotifications(c.Request.Context(), c.Query("type"), limit, (page-1)*limit)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"items": items, "total": total, "page": page, "limit": limit})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var conflict *payment.StateConflictError
	switch {
	case errors.Is(err, ErrNotFound) || errors.Is(err, payment.ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "not found")
	case errors.As(err, &conflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", conflict.Error())
	case errors.Is(err, ErrStateConflict):
		response.Error(c, http.StatusConflict, "STATE_CONFLICT", err.Error())
	case errors.Is(err, ErrValidation) || errors.Is(err, payment.ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	default:
		h.log.Error("admin request", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
	}
}

func pageParams(c *gin.Context) (int, int) {
	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "20"))
	if page <= 0 {
		page = 1
	}
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return page, limit
}

func idParam(c *gin.Context) (int64, bool) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "invalid id")
		return 0, false
	}
	return id, true
}
