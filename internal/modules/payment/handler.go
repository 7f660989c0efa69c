package payment

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"clinicbook/internal/pkg/response"
)

// maxCallbackBody caps webhook payload reads. Stripe events for checkout
// sessions are a few KB; anything past this is not ours.
const maxCallbackBody = 64 << 10

type Handler struct {
	service  *Service
	provider Provider
	log      *zap.Logger
}

func NewHandler(service *Service, provider Provider, log *zap.Logger) *Handler {
	return &Handler{service: service, provider: provider, log: log}
}

// RegisterPublicRoutes mounts the customer-facing payment endpoints.
func (h *Handler) RegisterPublicRoutes(rg *gin.RouterGroup) {
	rg.GET("/payments/requests/:reference", h.GetRequest)
	rg.POST("/payments/requests/:reference/checkout", h.OpenCheckout)
	rg.POST("/payments/requests/:reference/cancel", h.CancelRequest)
	rg.POST("/payments/webhook", h.Webhook)
	rg.GET("/payments/return", h.Return)
}

// RegisterSimulationRoutes mounts the unsigned callback endpoint. Only wired
// when the simulated provider is active; never in production.
func (h *Handler) RegisterSimulationRoutes(rg *gin.RouterGroup) {
	rg.POST("/payments/simulate", h.Simulate)
}

// GetRequest returns the payment page state for a reference.
func (h *Handler) GetRequest(c *gin.Context) {
	view, err := h.service.Get(c.Request.Context(), c.Param("reference"))
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// OpenCheckout pins the chosen amount and redirects to the provider.
func (h *Handler) OpenCheckout(c *gin.Context) {
	var req CheckoutRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "payment_type must be deposit or full")
		return
	}
	redirect, err := h.service.OpenCheckout(c.Request.Context(), c.Param("reference"), req.PaymentType)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, redirect)
}

// CancelRequest lets the customer decline the payment ask. The customer is
// the actor here, so no cancellation email goes out.
func (h *Handler) CancelRequest(c *gin.Context) {
	view, err := h.service.Cancel(c.Request.Context(), c.Param("reference"), false)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Webhook receives provider callbacks. Unknown references answer 200 so the
// provider stops retrying events that were never ours; real processing
// failures answer 500 so it retries, which is safe because settlement is
// idempotent.
func (h *Handler) Webhook(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", "could not read callback body")
		return
	}
	ev, err := h.provider.VerifyCallback(payload, c.GetHeader("Stripe-Signature"))
	if err != nil {
		h.log.Warn("webhook rejected", zap.Error(err))
		response.Error(c, http.StatusBadRequest, "INVALID_SIGNATURE", "callback verification failed")
		return
	}

	if err := h.service.HandleCompletion(c.Request.Context(), *ev); err != nil {
		if errors.Is(err, ErrNotFound) {
			h.log.Warn("callback for unknown payment request",
				zap.String("reference", ev.Reference),
				zap.String("checkout_ref", ev.CheckoutRef))
			response.Success(c, http.StatusOK, gin.H{"received": true})
			return
		}
		h.log.Error("process payment callback", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "CALLBACK_FAILED", "callback processing failed")
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true})
}

// Return handles the customer landing back from the hosted checkout. The
// session is resolved with the provider before rendering so the paid screen
// shows even when the webhook has not landed yet.
func (h *Handler) Return(c *gin.Context) {
	reference := c.Query("reference")
	if reference == "" {
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", "reference query parameter is required")
		return
	}

	if sessionID := c.Query("session_id"); sessionID != "" {
		ev, err := h.provider.ResolveSession(c.Request.Context(), sessionID)
		if err != nil {
			h.log.Warn("resolve checkout session", zap.String("session_id", sessionID), zap.Error(err))
		} else {
			if ev.Reference == "" {
				ev.Reference = reference
			}
			if err := h.service.HandleCompletion(c.Request.Context(), *ev); err != nil && !errors.Is(err, ErrNotFound) {
				h.log.Error("settle on return", zap.String("reference", reference), zap.Error(err))
			}
		}
	}

	view, err := h.service.Get(c.Request.Context(), reference)
	if err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, view)
}

// Simulate accepts the unsigned JSON callback of the simulated provider and
// pushes it through the same completion path as a live webhook.
func (h *Handler) Simulate(c *gin.Context) {
	payload, err := io.ReadAll(http.MaxBytesReader(c.Writer, c.Request.Body, maxCallbackBody))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", "could not read callback body")
		return
	}
	ev, err := h.provider.VerifyCallback(payload, c.GetHeader("X-Simulated-Signature"))
	if err != nil {
		response.Error(c, http.StatusBadRequest, "INVALID_PAYLOAD", err.Error())
		return
	}
	if err := h.service.HandleCompletion(c.Request.Context(), *ev); err != nil {
		h.respondError(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"received": true})
}

func (h *Handler) respondError(c *gin.Context, err error) {
	var conflict *StateConflictError
	switch {
	case errors.Is(err, ErrNotFound):
		response.Error(c, http.StatusNotFound, "NOT_FOUND", "payment request not found")
	case errors.As(err, &conflict):
		response.ErrorWithDetails(c, http.StatusConflict, "STATE_CONFLICT",
			conflict.Error(), gin.H{"status": conflict.Status, "screen": screenFor(conflict.Status)})
	case errors.Is(err, ErrValidation):
		response.Error(c, http.StatusBadRequest, "VALIDATION_ERROR", err.Error())
	case errors.Is(err, ErrProvider):
		h.log.Error("checkout provider", zap.Error(err))
		response.Error(c, http.StatusBadGateway, "PROVIDER_ERROR", "checkout provider is unavailable")
	default:
		h.log.Error("payment request", zap.Error(err))
		response.Error(c, http.StatusInternalServerError, "INTERNAL_ERROR", "something went wrong")
	}
}
