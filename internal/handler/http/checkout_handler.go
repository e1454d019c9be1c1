package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

type SubmitOrderRequest struct {
	OrgName    string `json:"org_name" validate:"max=255"`
	ClientCity string `json:"client_city" validate:"max=255"`
	Address    string `json:"address" validate:"max=500"`
	Phone      string `json:"phone" validate:"max=32"`
	Comment    string `json:"comment" validate:"max=2000"`
}

type CheckoutResponse struct {
	Profile     checkout.ClientProfile `json:"profile"`
	Goods       []cart.LineItem        `json:"goods"`
	ArendaGoods []cart.LineItem        `json:"arenda_goods"`
	GrandTotal  int64                  `json:"grand_total"`
	Chrome      []platform.Command     `json:"chrome"`
}

type OrderResponse struct {
	OrderText string             `json:"order_text"`
	Chrome    []platform.Command `json:"chrome"`
}

type CheckoutHandler struct {
	service  checkout.Service
	carts    cart.Service
	validate *validator.Validate
}

func NewCheckoutHandler(service checkout.Service, carts cart.Service) *CheckoutHandler {
	return &CheckoutHandler{
		service:  service,
		carts:    carts,
		validate: validator.New(),
	}
}

func (h *CheckoutHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users/{userID}/checkout", h.handleGetCheckout)
	router.Post("/users/{userID}/orders", h.handleSubmitOrder)
}

// handleGetCheckout returns the stored client profile used to prefill the order form.
func (h *CheckoutHandler) handleGetCheckout(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}

	profile, err := h.service.RequestClientProfile(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to load client profile via service")
		respondWithServiceError(w, err, "Failed to load client profile")
		return
	}

	snapshot := h.carts.Snapshot(userID)

	chrome := platform.NewDirectives()
	chrome.ShowBack()

	respondWithJSON(w, http.StatusOK, CheckoutResponse{
		Profile:     profile,
		Goods:       snapshot.Goods,
		ArendaGoods: snapshot.ArendaGoods,
		GrandTotal:  snapshot.GrandTotal(),
		Chrome:      chrome.Commands(),
	})
}

func (h *CheckoutHandler) handleSubmitOrder(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}

	var requestPayload SubmitOrderRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	profile := checkout.ClientProfile{
		OrgName:    requestPayload.OrgName,
		ClientCity: requestPayload.ClientCity,
		Address:    requestPayload.Address,
		Phone:      requestPayload.Phone,
	}

	chrome := platform.NewDirectives()
	text, err := h.service.SubmitOrder(r.Context(), userID, profile, requestPayload.Comment, chrome)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to submit order via service")
		respondWithServiceError(w, err, "Failed to submit order")
		return
	}

	respondWithJSON(w, http.StatusCreated, OrderResponse{
		OrderText: text,
		Chrome:    chrome.Commands(),
	})
}
