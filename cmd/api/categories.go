package main

import (
	"errors"
	"net/http"

	"rentora/internal/marketplace"
)

// GetApartmentTypes godoc
//
//	@Summary		List apartment categories
//	@Description	Read-only reference data for the listing wizard, fetched from the marketplace
//	@Tags			Listing
//	@Produce		json
//	@Success		200	{array}		marketplace.ApartmentType
//	@Failure		401	{object}	error	"Session expired"
//	@Failure		503	{object}	error	"Marketplace unavailable"
//	@Security		ApiKeyAuth
//	@Router			/apartment-types [get]
func (app *application) getApartmentTypesHandler(w http.ResponseWriter, r *http.Request) {
	token := getTokenFromContext(r)

	types, err := app.market.ApartmentTypes(r.Context(), token)
	if err != nil {
		switch {
		case errors.Is(err, marketplace.ErrNoToken), errors.Is(err, marketplace.ErrUnauthorized):
			app.sessionExpiredResponse(w, r, err)
		case errors.Is(err, marketplace.ErrUnavailable):
			app.serviceUnavailableResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, types); err != nil {
		app.internalServerError(w, r, err)
	}
}
