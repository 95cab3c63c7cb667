package main

import (
	"errors"
	"net/http"
	"strconv"

	"rentora/internal/marketplace"
)

// GetSubscriptions godoc
//
//	@Summary		List the user's subscriptions
//	@Description	Paginated, optionally filtered by a search term; proxied from the marketplace
//	@Tags			Checkout
//	@Produce		json
//	@Param			page	query		int		false	"Page number (default 1)"
//	@Param			search	query		string	false	"Search term"
//	@Success		200		{object}	marketplace.SubscriptionPage
//	@Failure		401		{object}	error	"Session expired"
//	@Security		ApiKeyAuth
//	@Router			/subscriptions [get]
func (app *application) getSubscriptionsHandler(w http.ResponseWriter, r *http.Request) {
	token := getTokenFromContext(r)

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 1 {
			app.badRequestResponse(w, r, errors.New("page must be a positive integer"))
			return
		}
		page = parsed
	}
	search := r.URL.Query().Get("search")

	subs, err := app.market.Subscriptions(r.Context(), token, page, search)
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

	if err := app.jsonResponse(w, http.StatusOK, subs); err != nil {
		app.internalServerError(w, r, err)
	}
}
