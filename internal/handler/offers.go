package handler

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/mkorchagin/foodcart/internal/domain"
	"github.com/mkorchagin/foodcart/internal/repository"
)

// OfferHandler exposes read-only offer lookups for display paths. Stock shown
// here is advisory: only the reconciliation engine reads it authoritatively,
// under row locks.
type OfferHandler struct {
	offers repository.OfferStore
	logger *slog.Logger
}

func NewOfferHandler(offers repository.OfferStore, logger *slog.Logger) *OfferHandler {
	return &OfferHandler{
		offers: offers,
		logger: logger,
	}
}

// offerResponse is the public shape of one offer.
type offerResponse struct {
	ID            int64  `json:"id"`
	Name          string `json:"name"`
	UnitPrice     int64  `json:"unit_price"`
	DiscountPrice *int64 `json:"discount_price,omitempty"`
	FreeStock     int32  `json:"free_stock"`
}

// Get handles GET /api/offers/{id}
func (h *OfferHandler) Get(w http.ResponseWriter, r *http.Request) {
	const op = "offer.get"
	ctx := r.Context()

	raw := r.PathValue("id")
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		respondError(w, r, h.logger, domain.Invalid(op, "offer id must be a positive integer"))
		return
	}

	offers, err := h.offers.GetOffers(ctx, []int64{id})
	if err != nil {
		respondError(w, r, h.logger, domain.Unavailable(err, op, "inventory store failure"))
		return
	}

	offer, ok := offers[id]
	if !ok || !offer.Orderable() {
		// Deactivated offers disappear from display just like deleted rows.
		respondError(w, r, h.logger, domain.NotFound(op, "offer", raw))
		return
	}

	respondJSON(w, http.StatusOK, offerResponse{
		ID:            offer.ID,
		Name:          offer.Name,
		UnitPrice:     offer.UnitPrice,
		DiscountPrice: offer.DiscountedPrice(),
		FreeStock:     offer.FreeStock,
	})
}
