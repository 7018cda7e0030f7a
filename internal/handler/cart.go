package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/mkorchagin/foodcart/internal/domain"
	"github.com/mkorchagin/foodcart/internal/identity"
	"github.com/mkorchagin/foodcart/internal/telemetry"
)

// CartHandler exposes the cart read and reconcile endpoints.
type CartHandler struct {
	reader     domain.CartReader
	reconciler domain.CartReconciler
	resolver   identity.Resolver
	metrics    *telemetry.CartMetrics
	logger     *slog.Logger
	validate   *validator.Validate
}

// NewCartHandler creates a new cart handler
func NewCartHandler(
	reader domain.CartReader,
	reconciler domain.CartReconciler,
	resolver identity.Resolver,
	metrics *telemetry.CartMetrics,
	logger *slog.Logger,
) *CartHandler {
	return &CartHandler{
		reader:     reader,
		reconciler: reconciler,
		resolver:   resolver,
		metrics:    metrics,
		logger:     logger,
		validate:   validator.New(),
	}
}

// desiredLineRequest is one declared line of the sync payload.
type desiredLineRequest struct {
	OfferID          int64  `json:"offer_id" validate:"required,gt=0"`
	Quantity         int32  `json:"quantity" validate:"gte=0"`
	Comment          string `json:"comment" validate:"max=500"`
	AllowReplacement bool   `json:"allow_replacement"`
	IsFavorite       bool   `json:"is_favorite"`
}

// desiredCartRequest is the full desired-state declaration.
type desiredCartRequest struct {
	DeliverySlot *string              `json:"delivery_slot" validate:"omitempty,max=64"`
	Items        []desiredLineRequest `json:"items" validate:"dive"`
}

// View handles GET /api/cart
func (h *CartHandler) View(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		respondError(w, r, h.logger, domain.Internal(err, "cart.view", "failed to resolve cart identity"))
		return
	}

	cart, err := h.reader.GetOrCreateCart(ctx, id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, http.StatusOK, cart)
}

// Sync handles PUT /api/cart
func (h *CartHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req desiredCartRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, r, h.logger, domain.Invalid("cart.sync", "malformed JSON payload"))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		respondError(w, r, h.logger, domain.Invalid("cart.sync", "invalid cart payload: "+err.Error()))
		return
	}

	id, err := h.resolver.Resolve(w, r)
	if err != nil {
		respondError(w, r, h.logger, domain.Internal(err, "cart.sync", "failed to resolve cart identity"))
		return
	}

	desired := domain.DesiredCart{
		DeliverySlot: req.DeliverySlot,
		Items:        make([]domain.DesiredLine, 0, len(req.Items)),
	}
	for _, item := range req.Items {
		desired.Items = append(desired.Items, domain.DesiredLine{
			OfferID:          item.OfferID,
			Quantity:         item.Quantity,
			Comment:          item.Comment,
			AllowReplacement: item.AllowReplacement,
			IsFavorite:       item.IsFavorite,
		})
	}

	result, err := h.reconciler.Reconcile(ctx, id, desired)
	if err != nil {
		if h.metrics != nil {
			h.metrics.ObserveReconciliationError()
		}
		respondError(w, r, h.logger, err)
		return
	}

	if h.metrics != nil {
		h.metrics.ObserveReconciliation(result)
	}

	respondJSON(w, http.StatusOK, result)
}
