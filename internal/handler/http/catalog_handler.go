package http

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/platform"
)

type CategoriesResponse struct {
	Categories []catalog.Category `json:"categories"`
	Chrome     []platform.Command `json:"chrome"`
}

type GoodsResponse struct {
	Goods  []catalog.Good          `json:"goods"`
	InCart map[int64]catalog.Badge `json:"in_cart"`
	Chrome []platform.Command      `json:"chrome"`
}

type CatalogHandler struct {
	service catalog.Service
}

func NewCatalogHandler(service catalog.Service) *CatalogHandler {
	return &CatalogHandler{service: service}
}

func (h *CatalogHandler) RegisterRoutes(router chi.Router) {
	router.Get("/categories", h.handleListCategories)
	router.Get("/cities", h.handleListCities)
	router.Get("/catalog/{categoryID}", h.handleListGoods)
	router.Get("/catalog/{categoryID}/{cityID}", h.handleListGoods)
}

func (h *CatalogHandler) handleListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories via service")
		respondWithServiceError(w, err, "Failed to list categories")
		return
	}

	chrome := platform.NewDirectives()
	chrome.Expand()
	chrome.HideBack()

	respondWithJSON(w, http.StatusOK, CategoriesResponse{Categories: categories, Chrome: chrome.Commands()})
}

func (h *CatalogHandler) handleListCities(w http.ResponseWriter, r *http.Request) {
	cities, err := h.service.ListCities(r.Context())
	if err != nil {
		log.Error().Err(err).Msg("Failed to list cities via service")
		respondWithServiceError(w, err, "Failed to list cities")
		return
	}

	respondWithJSON(w, http.StatusOK, cities)
}

// handleListGoods lists a category's goods. With ?user_id= the goods already in that user's cart
// are badged; a badge lookup failure only drops the badges.
func (h *CatalogHandler) handleListGoods(w http.ResponseWriter, r *http.Request) {
	categoryID, ok := parseIDParam(w, r, "categoryID")
	if !ok {
		return
	}
	var cityID int64
	if chi.URLParam(r, "cityID") != "" {
		if cityID, ok = parseIDParam(w, r, "cityID"); !ok {
			return
		}
	}

	goods, err := h.service.ListGoods(r.Context(), categoryID, cityID)
	if err != nil {
		log.Error().Err(err).Int64("category_id", categoryID).Int64("city_id", cityID).Msg("Failed to list goods via service")
		respondWithServiceError(w, err, "Failed to list goods")
		return
	}

	inCart := map[int64]catalog.Badge{}
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		userID, err := strconv.ParseInt(raw, 10, 64)
		if err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid user_id parameter")
			return
		}
		badges, err := h.service.InCartBadges(r.Context(), userID)
		if err != nil {
			log.Warn().Err(err).Int64("user_id", userID).Msg("Failed to load cart badges, listing goods without them")
		} else {
			inCart = badges
		}
	}

	chrome := platform.NewDirectives()
	chrome.ShowBack()

	respondWithJSON(w, http.StatusOK, GoodsResponse{Goods: goods, InCart: inCart, Chrome: chrome.Commands()})
}
