package storefront

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/meridian-shop/meridian/internal/account"
	"github.com/meridian-shop/meridian/internal/platform/httpx"
	"github.com/meridian-shop/meridian/internal/shared"
)

// Handler is a thin facade over the storefront ports. Every route below
// /cart and /orders reads the identity placed on the context by the
// session guard; the ports never see raw tokens.
type Handler struct {
	logger   *slog.Logger
	guard    *account.Guard
	catalog  Catalog
	carts    CartStore
	orders   OrderStore
	payments PaymentIntents
}

// NewHandler constructs a storefront facade. payments may be nil when no
// processor is configured; orders are then placed without an intent.
func NewHandler(logger *slog.Logger, guard *account.Guard, catalog Catalog, carts CartStore, orders OrderStore, payments PaymentIntents) *Handler {
	return &Handler{logger: logger, guard: guard, catalog: catalog, carts: carts, orders: orders, payments: payments}
}

// MountRoutes attaches the storefront routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/products", h.listProducts)
	r.Get("/products/{id}", h.getProduct)

	r.Group(func(r chi.Router) {
		r.Use(h.guard.RequireAuth)
		r.Get("/cart", h.getCart)
		r.Put("/cart", h.putCart)
		r.Post("/orders", h.placeOrder)
		r.Get("/orders", h.listOrders)
	})
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.catalog.ListProducts(r.Context())
	if err != nil {
		h.logger.Error("list products failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", products)
}

func (h *Handler) getProduct(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	product, err := h.catalog.GetProduct(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", product)
}

func (h *Handler) getCart(w http.ResponseWriter, r *http.Request) {
	acct := account.AccountFromContext(r.Context())
	lines, err := h.carts.GetCart(r.Context(), acct.ID)
	if err != nil {
		h.logger.Error("get cart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", lines)
}

func (h *Handler) putCart(w http.ResponseWriter, r *http.Request) {
	var lines []CartLine
	if err := httpx.DecodeJSON(r, &lines); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	acct := account.AccountFromContext(r.Context())
	if err := h.carts.PutCart(r.Context(), acct.ID, lines); err != nil {
		h.logger.Error("put cart failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "Cart updated", nil)
}

func (h *Handler) placeOrder(w http.ResponseWriter, r *http.Request) {
	acct := account.AccountFromContext(r.Context())
	lines, err := h.carts.GetCart(r.Context(), acct.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	if len(lines) == 0 {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	order, err := h.orders.PlaceOrder(r.Context(), acct.ID, lines)
	if err != nil {
		h.logger.Error("place order failed", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	resp := PlacedOrder{Order: order}
	if h.payments != nil {
		intent, err := h.payments.CreateIntent(r.Context(), order)
		if err != nil {
			// The order is already persisted; payment can be retried from
			// the order page, so this is not a placement failure.
			h.logger.Error("create payment intent failed",
				slog.String("order_id", order.ID.String()), slog.Any("error", err))
		} else {
			resp.Payment = intent
		}
	}
	httpx.OK(w, http.StatusCreated, "Order placed", resp)
}

func (h *Handler) listOrders(w http.ResponseWriter, r *http.Request) {
	acct := account.AccountFromContext(r.Context())
	orders, err := h.orders.ListOrders(r.Context(), acct.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.OK(w, http.StatusOK, "", orders)
}
