package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

const checkoutButtonLabel = "Оформить заказ"

// AddItemRequest names a good by its catalog coordinates. The good itself, prices included,
// is always read from the catalog.
type AddItemRequest struct {
	GoodID     int64 `json:"good_id" validate:"required,gt=0"`
	CategoryID int64 `json:"category_id" validate:"required,gt=0"`
	CityID     int64 `json:"city_id" validate:"gte=0"`
	Quantity   int64 `json:"quantity"`
	ArendaTime int64 `json:"arenda_time"`
}

// UpdateItemRequest changes exactly one field of a line item.
type UpdateItemRequest struct {
	Quantity   *int64 `json:"quantity,omitempty"`
	ArendaTime *int64 `json:"arenda_time,omitempty"`
	IsDelivery *bool  `json:"is_delivery,omitempty"`
	IsContract *bool  `json:"is_contract,omitempty"`
}

func (r UpdateItemRequest) fieldsSet() int {
	n := 0
	if r.Quantity != nil {
		n++
	}
	if r.ArendaTime != nil {
		n++
	}
	if r.IsDelivery != nil {
		n++
	}
	if r.IsContract != nil {
		n++
	}
	return n
}

type CartResponse struct {
	Goods       []cart.LineItem    `json:"goods"`
	ArendaGoods []cart.LineItem    `json:"arenda_goods"`
	GrandTotal  int64              `json:"grand_total"`
	Chrome      []platform.Command `json:"chrome"`
}

type ItemResponse struct {
	Item       cart.LineItem      `json:"item"`
	GrandTotal int64              `json:"grand_total"`
	Chrome     []platform.Command `json:"chrome"`
}

type CartHandler struct {
	service  cart.Service
	goods    catalog.Service
	validate *validator.Validate
}

func NewCartHandler(service cart.Service, goods catalog.Service) *CartHandler {
	return &CartHandler{
		service:  service,
		goods:    goods,
		validate: validator.New(),
	}
}

func (h *CartHandler) RegisterRoutes(router chi.Router) {
	router.Get("/users/{userID}/cart", h.handleGetCart)
	router.Post("/users/{userID}/cart/items", h.handleAddItem)
	router.Patch("/users/{userID}/cart/items/{goodID}", h.handleUpdateItem)
	router.Delete("/users/{userID}/cart/items/{goodID}", h.handleDeleteItem)
}

func (h *CartHandler) handleGetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}

	current, err := h.service.Refresh(r.Context(), userID)
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Msg("Failed to refresh cart via service")
		respondWithServiceError(w, err, "Failed to load cart")
		return
	}

	chrome := platform.NewDirectives()
	chrome.Expand()
	chrome.ShowBack()
	if !current.IsEmpty() {
		chrome.SetMainButtonLabel(checkoutButtonLabel)
	}

	respondWithJSON(w, http.StatusOK, CartResponse{
		Goods:       current.Goods,
		ArendaGoods: current.ArendaGoods,
		GrandTotal:  current.GrandTotal(),
		Chrome:      chrome.Commands(),
	})
}

func (h *CartHandler) handleAddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}

	var requestPayload AddItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}

	good, err := h.goods.FindGood(r.Context(), requestPayload.CategoryID, requestPayload.CityID, requestPayload.GoodID)
	if err != nil {
		log.Error().Err(err).Int64("good_id", requestPayload.GoodID).Int64("category_id", requestPayload.CategoryID).Msg("Failed to resolve good via catalog")
		respondWithServiceError(w, err, "Failed to load good")
		return
	}

	item, err := h.service.Add(r.Context(), userID, good, cart.Selection{
		Quantity:   requestPayload.Quantity,
		ArendaTime: requestPayload.ArendaTime,
	})
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", good.ID).Msg("Failed to add item via service")
		respondWithServiceError(w, err, "Failed to add good to cart")
		return
	}

	respondWithJSON(w, http.StatusCreated, ItemResponse{
		Item:       item,
		GrandTotal: h.service.Snapshot(userID).GrandTotal(),
		Chrome:     []platform.Command{},
	})
}

func (h *CartHandler) handleUpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	goodID, ok := parseIDParam(w, r, "goodID")
	if !ok {
		return
	}

	var requestPayload UpdateItemRequest
	if !decodeAndValidate(w, r, h.validate, &requestPayload) {
		return
	}
	if requestPayload.fieldsSet() != 1 {
		respondWithError(w, http.StatusBadRequest, "Exactly one of quantity, arenda_time, is_delivery, is_contract must be set")
		return
	}

	var (
		item cart.LineItem
		err  error
	)
	ctx := r.Context()
	switch {
	case requestPayload.Quantity != nil:
		item, err = h.service.UpdateQuantity(ctx, userID, goodID, *requestPayload.Quantity)
	case requestPayload.ArendaTime != nil:
		item, err = h.service.UpdateArendaTime(ctx, userID, goodID, *requestPayload.ArendaTime)
	case requestPayload.IsDelivery != nil:
		item, err = h.service.SetDelivery(ctx, userID, goodID, *requestPayload.IsDelivery)
	default:
		item, err = h.service.SetContract(ctx, userID, goodID, *requestPayload.IsContract)
	}
	if err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", goodID).Msg("Failed to update item via service")
		respondWithServiceError(w, err, "Failed to update cart item")
		return
	}

	respondWithJSON(w, http.StatusOK, ItemResponse{
		Item:       item,
		GrandTotal: h.service.Snapshot(userID).GrandTotal(),
		Chrome:     []platform.Command{},
	})
}

func (h *CartHandler) handleDeleteItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := parseIDParam(w, r, "userID")
	if !ok {
		return
	}
	goodID, ok := parseIDParam(w, r, "goodID")
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, goodID); err != nil {
		log.Error().Err(err).Int64("user_id", userID).Int64("good_id", goodID).Msg("Failed to delete item via service")
		respondWithServiceError(w, err, "Failed to delete cart item")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
