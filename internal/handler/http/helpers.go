package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"

	"github.com/vasiliy-maslov/tg-storefront/internal/cart"
	"github.com/vasiliy-maslov/tg-storefront/internal/catalog"
	"github.com/vasiliy-maslov/tg-storefront/internal/checkout"
	"github.com/vasiliy-maslov/tg-storefront/internal/client"
)

type ErrorResponse struct {
	Error string `json:"error"`
}

type ValidationErrorResponse struct {
	Error   string            `json:"error"`
	Details map[string]string `json:"details"`
}

// respondWithError отправляет JSON ошибку
func respondWithError(w http.ResponseWriter, code int, message string) {
	respondWithJSON(w, code, ErrorResponse{Error: message})
}

// respondWithJSON отправляет JSON ответ
func respondWithJSON(w http.ResponseWriter, code int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		log.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"error":"Failed to marshal JSON response"}`))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if _, err := w.Write(response); err != nil {
		log.Error().Err(err).Msg("Failed to write JSON response")
	}
}

func formatValidationErrors(errs validator.ValidationErrors) map[string]string {
	details := make(map[string]string, len(errs))
	for _, fe := range errs {
		if fe.Param() != "" {
			details[fe.Field()] = fmt.Sprintf("failed on '%s=%s'", fe.Tag(), fe.Param())
			continue
		}
		details[fe.Field()] = fmt.Sprintf("failed on '%s'", fe.Tag())
	}
	return details
}

// decodeAndValidate reads a JSON body into dst and validates it. It writes the error response
// itself and reports whether the handler may continue.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, validate *validator.Validate, dst interface{}) bool {
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		log.Warn().Err(err).Msg("Failed to decode request body")
		respondWithError(w, http.StatusBadRequest, "Invalid request payload")
		return false
	}

	if err := validate.Struct(dst); err != nil {
		var validationErrors validator.ValidationErrors
		if errors.As(err, &validationErrors) {
			respondWithJSON(w, http.StatusBadRequest, ValidationErrorResponse{
				Error:   "Validation failed",
				Details: formatValidationErrors(validationErrors),
			})
		} else {
			log.Error().Err(err).Type("validation_error_type", err).Msg("Unexpected error type during validation")
			respondWithError(w, http.StatusInternalServerError, "Internal validation error")
		}
		return false
	}
	return true
}

func parseIDParam(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id < 0 {
		log.Warn().Err(err).Str(name, raw).Msg("Failed to parse id parameter from URL")
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Invalid %s parameter", name))
		return 0, false
	}
	return id, true
}

func mapErrorToStatusCode(err error) int {
	switch {
	case errors.Is(err, cart.ErrMissingIdentity):
		return http.StatusUnauthorized
	case errors.Is(err, cart.ErrNotInCart), errors.Is(err, catalog.ErrGoodNotFound):
		return http.StatusNotFound
	case errors.Is(err, cart.ErrAlreadyInCart), errors.Is(err, cart.ErrSuperseded):
		return http.StatusConflict
	case errors.Is(err, cart.ErrFieldNotApplicable), errors.Is(err, checkout.ErrEmptyCart), errors.Is(err, catalog.ErrCityRequired):
		return http.StatusUnprocessableEntity
	case errors.Is(err, catalog.ErrInvalidFilter):
		return http.StatusBadRequest
	case errors.Is(err, client.ErrRejected), errors.Is(err, client.ErrNetworkFailure), errors.Is(err, client.ErrMalformedResponse):
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}

func clientMessage(err error, fallback string) string {
	switch {
	case errors.Is(err, cart.ErrMissingIdentity):
		return "User is not identified"
	case errors.Is(err, cart.ErrNotInCart):
		return "Good is not in the cart"
	case errors.Is(err, cart.ErrAlreadyInCart):
		return "Good is already in the cart"
	case errors.Is(err, cart.ErrSuperseded):
		return "Cart changed by a newer request"
	case errors.Is(err, cart.ErrFieldNotApplicable):
		return "Field does not apply to this good"
	case errors.Is(err, checkout.ErrEmptyCart):
		return "Cart is empty"
	case errors.Is(err, catalog.ErrCityRequired):
		return "Choose a city first"
	case errors.Is(err, catalog.ErrGoodNotFound):
		return "Good is not in the catalog"
	case errors.Is(err, client.ErrNetworkFailure):
		return "Storefront API is unreachable"
	case errors.Is(err, client.ErrRejected):
		return "Storefront API rejected the request"
	default:
		return fallback
	}
}

func respondWithServiceError(w http.ResponseWriter, err error, fallback string) {
	respondWithError(w, mapErrorToStatusCode(err), clientMessage(err, fallback))
}
