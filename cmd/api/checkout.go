package main

import (
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rentora/internal/checkout"
	"rentora/internal/flow"
	"rentora/internal/gateway"
)

type PlanPayload struct {
	ID              int64  `json:"id" validate:"required,gt=0"`
	Name            string `json:"name" validate:"required,max=100"`
	Price           int64  `json:"price" validate:"required,gt=0"`
	Currency        string `json:"currency" validate:"required,max=8"`
	InvoiceInterval string `json:"invoice_interval" validate:"required,invoiceinterval"`
	Description     string `json:"description,omitempty" validate:"max=500"`
}

type OpenCheckoutPayload struct {
	Plans []PlanPayload `json:"plans" validate:"required,min=1,dive"`
}

// OpenCheckout godoc
//
//	@Summary		Open a checkout session
//	@Description	Starts a subscription checkout over the given plan catalog
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Param			payload	body		OpenCheckoutPayload	true	"Plan catalog"
//	@Success		201		{object}	checkout.Session	"Session opened"
//	@Failure		400		{object}	error				"Invalid plan catalog"
//	@Failure		401		{object}	error				"Unauthorized"
//	@Security		ApiKeyAuth
//	@Router			/checkout [post]
func (app *application) openCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload OpenCheckoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	plans := make([]checkout.Plan, 0, len(payload.Plans))
	for _, p := range payload.Plans {
		plans = append(plans, checkout.Plan{
			ID:              p.ID,
			Name:            p.Name,
			Price:           p.Price,
			Currency:        p.Currency,
			InvoiceInterval: p.InvoiceInterval,
			Description:     p.Description,
		})
	}

	session := checkout.NewSession(uuid.NewString(), plans, app.gatewayCatalog())

	if err := app.flows.SaveCheckout(r.Context(), session, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) loadCheckout(w http.ResponseWriter, r *http.Request) (*checkout.Session, bool) {
	id := chi.URLParam(r, "sessionID")
	session, err := app.flows.GetCheckout(r.Context(), id)
	if err != nil {
		if errors.Is(err, flow.ErrNotFound) {
			app.notFoundResponse(w, r, fmt.Errorf("checkout session %s not found", id))
		} else {
			app.internalServerError(w, r, err)
		}
		return nil, false
	}
	return session, true
}

// GetCheckout godoc
//
//	@Summary	Read checkout session state
//	@Tags		Checkout
//	@Produce	json
//	@Success	200	{object}	checkout.Session
//	@Failure	404	{object}	error	"Unknown session"
//	@Security	ApiKeyAuth
//	@Router		/checkout/{sessionID} [get]
func (app *application) getCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}
	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) checkoutPlansHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}
	if err := app.jsonResponse(w, http.StatusOK, session.Plans); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) checkoutGatewaysHandler(w http.ResponseWriter, r *http.Request) {
	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}
	if err := app.jsonResponse(w, http.StatusOK, session.Gateways); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SelectPlanPayload struct {
	PlanID int64 `json:"plan_id" validate:"required,gt=0"`
}

// SelectPlan godoc
//
//	@Summary		Choose a subscription plan
//	@Description	The plan must exist in the session's catalog; an unknown id changes nothing
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	checkout.Session
//	@Failure		404	{object}	error	"Plan not in catalog"
//	@Failure		409	{object}	error	"Session already settled"
//	@Security		ApiKeyAuth
//	@Router			/checkout/{sessionID}/plan [post]
func (app *application) selectPlanHandler(w http.ResponseWriter, r *http.Request) {
	var payload SelectPlanPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}

	if err := session.SelectPlan(payload.PlanID); err != nil {
		switch {
		case errors.Is(err, checkout.ErrUnknownPlan):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, checkout.ErrTerminal):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.flows.SaveCheckout(r.Context(), session, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

type SelectGatewayPayload struct {
	Gateway string `json:"gateway" validate:"required,max=50"`
}

// SelectGateway godoc
//
//	@Summary		Choose a payment gateway
//	@Description	The gateway must be in the session catalog and active
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	checkout.Session
//	@Failure		400	{object}	error	"Gateway inactive"
//	@Failure		404	{object}	error	"Unknown gateway"
//	@Failure		409	{object}	error	"No plan chosen or session settled"
//	@Security		ApiKeyAuth
//	@Router			/checkout/{sessionID}/gateway [post]
func (app *application) selectGatewayHandler(w http.ResponseWriter, r *http.Request) {
	var payload SelectGatewayPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}

	if err := session.SelectGateway(payload.Gateway); err != nil {
		switch {
		case errors.Is(err, checkout.ErrGatewayInactive):
			app.badRequestResponse(w, r, fmt.Errorf("%s is not available right now", payload.Gateway))
		case errors.Is(err, checkout.ErrUnknownGateway):
			app.notFoundResponse(w, r, err)
		case errors.Is(err, checkout.ErrNoPlan), errors.Is(err, checkout.ErrTerminal):
			app.conflictResponse(w, r, err)
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	if err := app.flows.SaveCheckout(r.Context(), session, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

type InitiateCheckoutPayload struct {
	Email string `json:"email" validate:"required,email"`
}

// InitiateCheckout godoc
//
//	@Summary		Run the chosen gateway's payment handler
//	@Description	Delegates to the selected provider and returns its handoff data
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	gateway.InitiateResponse
//	@Failure		409	{object}	error	"No gateway chosen"
//	@Security		ApiKeyAuth
//	@Router			/checkout/{sessionID}/initiate [post]
func (app *application) initiateCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	var payload InitiateCheckoutPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	if err := Validate.Struct(payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}
	if session.State != checkout.StateGatewayChosen {
		app.conflictResponse(w, r, fmt.Errorf("checkout is not ready for payment (state=%s)", session.State))
		return
	}

	reference := app.refs.Generate(session.ID)

	resp, err := app.gateways.Initiate(r.Context(), session.Gateway.Slug, gateway.InitiateRequest{
		Reference:     reference,
		Amount:        session.Plan.Price,
		Currency:      session.Plan.Currency,
		PlanName:      session.Plan.Name,
		CustomerEmail: payload.Email,
	})
	if err != nil {
		app.internalServerError(w, r, fmt.Errorf("failed to initiate payment: %w", err))
		return
	}
	if resp.Reference == "" {
		resp.Reference = reference
	}

	session.Reference = resp.Reference
	if err := app.flows.SaveCheckout(r.Context(), session, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

type CheckoutReturnPayload struct {
	Reference string            `json:"reference,omitempty"`
	Data      map[string]string `json:"data,omitempty"`
}

// CheckoutReturn godoc
//
//	@Summary		Settle the checkout from the gateway's completion callback
//	@Description	Verifies the payment with the provider before recording a terminal outcome
//	@Tags			Checkout
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	checkout.Session	"Settled"
//	@Success		202	{object}	checkout.Session	"Still pending at the provider"
//	@Failure		409	{object}	error				"No gateway chosen or already settled"
//	@Security		ApiKeyAuth
//	@Router			/checkout/{sessionID}/return [post]
func (app *application) checkoutReturnHandler(w http.ResponseWriter, r *http.Request) {
	var payload CheckoutReturnPayload
	if err := readJSON(w, r, &payload); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	session, ok := app.loadCheckout(w, r)
	if !ok {
		return
	}
	if session.Terminal() {
		app.conflictResponse(w, r, checkout.ErrTerminal)
		return
	}
	if session.Gateway == nil {
		app.conflictResponse(w, r, checkout.ErrNoGateway)
		return
	}

	reference := payload.Reference
	if reference == "" {
		reference = session.Reference
	}

	// Never trust the redirect alone; ask the provider.
	verified, err := app.gateways.Verify(r.Context(), session.Gateway.Slug, gateway.VerifyRequest{
		Reference: reference,
		Data:      payload.Data,
	})
	if err != nil {
		app.logger.Errorw("verify payment failed", "gateway", session.Gateway.Slug, "reference", reference, "error", err)
		app.internalServerError(w, r, err)
		return
	}

	if verified.Pending {
		if err := app.jsonResponse(w, http.StatusAccepted, session); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	status := checkout.ResultFailed
	if verified.Success {
		status = checkout.ResultSuccess
	}

	result := checkout.Result{
		Status:     status,
		Reference:  reference,
		Data:       payload.Data,
		ReceivedAt: time.Now(),
	}
	if err := session.Complete(result); err != nil {
		app.conflictResponse(w, r, err)
		return
	}

	if err := app.flows.SaveCheckout(r.Context(), session, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, session); err != nil {
		app.internalServerError(w, r, err)
	}
}

// DeleteCheckout godoc
//
//	@Summary	Tear a checkout session down
//	@Tags		Checkout
//	@Success	204	"Session discarded"
//	@Security	ApiKeyAuth
//	@Router		/checkout/{sessionID} [delete]
func (app *application) deleteCheckoutHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "sessionID")
	if err := app.flows.DeleteCheckout(r.Context(), id); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
