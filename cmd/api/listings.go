package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"rentora/internal/flow"
	"rentora/internal/listing"
	"rentora/internal/marketplace"
	"rentora/internal/media"
)

// OpenListing godoc
//
//	@Summary	Open a property listing draft
//	@Tags		Listing
//	@Produce	json
//	@Success	201	{object}	listing.Draft
//	@Failure	401	{object}	error	"Unauthorized"
//	@Security	ApiKeyAuth
//	@Router		/listings [post]
func (app *application) openListingHandler(w http.ResponseWriter, r *http.Request) {
	draft := listing.NewDraft(uuid.NewString())

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, draft); err != nil {
		app.internalServerError(w, r, err)
	}
}

func (app *application) loadDraft(w http.ResponseWriter, r *http.Request) (*listing.Draft, bool) {
	id := chi.URLParam(r, "draftID")
	draft, err := app.flows.GetDraft(r.Context(), id)
	if err != nil {
		if errors.Is(err, flow.ErrNotFound) {
			app.notFoundResponse(w, r, fmt.Errorf("listing draft %s not found", id))
		} else {
			app.internalServerError(w, r, err)
		}
		return nil, false
	}
	return draft, true
}

// GetListing godoc
//
//	@Summary	Read a draft's step, fields and media slots
//	@Tags		Listing
//	@Produce	json
//	@Success	200	{object}	listing.Draft
//	@Failure	404	{object}	error	"Unknown draft"
//	@Security	ApiKeyAuth
//	@Router		/listings/{draftID} [get]
func (app *application) getListingHandler(w http.ResponseWriter, r *http.Request) {
	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}
	if err := app.jsonResponse(w, http.StatusOK, draft); err != nil {
		app.internalServerError(w, r, err)
	}
}

// UpdateFields godoc
//
//	@Summary		Merge field updates into the draft
//	@Description	Partial update; amenities are checked against the fixed vocabulary
//	@Tags			Listing
//	@Accept			json
//	@Produce		json
//	@Success		200	{object}	listing.Draft
//	@Failure		400	{object}	error	"Unknown amenity"
//	@Security		ApiKeyAuth
//	@Router			/listings/{draftID}/fields [put]
func (app *application) updateFieldsHandler(w http.ResponseWriter, r *http.Request) {
	var patch listing.FieldPatch
	if err := readJSON(w, r, &patch); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	if err := draft.Apply(patch); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, draft); err != nil {
		app.internalServerError(w, r, err)
	}
}

// NextStep godoc
//
//	@Summary		Advance the wizard
//	@Description	Validates the current step's fields; advancement is blocked until they pass
//	@Tags			Listing
//	@Produce		json
//	@Success		200	{object}	listing.Draft
//	@Failure		400	{object}	error	"Step validation failed"
//	@Security		ApiKeyAuth
//	@Router			/listings/{draftID}/next [post]
func (app *application) nextStepHandler(w http.ResponseWriter, r *http.Request) {
	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	if err := draft.Next(); err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, draft); err != nil {
		app.internalServerError(w, r, err)
	}
}

// PrevStep godoc
//
//	@Summary	Step back without validating
//	@Tags		Listing
//	@Produce	json
//	@Success	200	{object}	listing.Draft
//	@Security	ApiKeyAuth
//	@Router		/listings/{draftID}/prev [post]
func (app *application) prevStepHandler(w http.ResponseWriter, r *http.Request) {
	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	draft.Prev()

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusOK, draft); err != nil {
		app.internalServerError(w, r, err)
	}
}

// SubmitListing godoc
//
//	@Summary		Submit the finished draft to the marketplace
//	@Description	Sends one multipart payload with all fields and media; on success the draft resets
//	@Tags			Listing
//	@Produce		json
//	@Success		201	{object}	marketplace.CreatedApartment
//	@Failure		400	{object}	error	"Media missing"
//	@Failure		401	{object}	error	"Session expired"
//	@Failure		409	{object}	error	"Not on the final step"
//	@Failure		503	{object}	error	"Marketplace unavailable"
//	@Security		ApiKeyAuth
//	@Router			/listings/{draftID}/submit [post]
func (app *application) submitListingHandler(w http.ResponseWriter, r *http.Request) {
	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	if err := draft.CheckSubmit(); err != nil {
		if errors.Is(err, listing.ErrNotLastStep) {
			app.conflictResponse(w, r, err)
		} else {
			app.badRequestResponse(w, r, err)
		}
		return
	}

	uploads, closeUploads, err := app.collectUploads(draft)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	defer closeUploads()

	token := getTokenFromContext(r)
	created, err := app.market.CreateApartment(r.Context(), token, draft.Form, uploads)
	if err != nil {
		app.submissionErrorResponse(w, r, err)
		return
	}

	// The draft may have been torn down while the upload was in flight;
	// a late success must not resurrect it.
	if _, err := app.flows.GetDraft(r.Context(), draft.ID); err != nil {
		if errors.Is(err, flow.ErrNotFound) {
			app.logger.Infow("draft gone after submit, dropping result", "draft", draft.ID)
			if err := app.jsonResponse(w, http.StatusCreated, created); err != nil {
				app.internalServerError(w, r, err)
			}
			return
		}
		app.internalServerError(w, r, err)
		return
	}

	if err := app.spool.ReleaseDraft(draft.ID); err != nil {
		app.logger.Errorw("failed to release draft media", "draft", draft.ID, "error", err)
	}
	draft.Reset()

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	if err := app.jsonResponse(w, http.StatusCreated, created); err != nil {
		app.internalServerError(w, r, err)
	}
}

// collectUploads opens every occupied slot's spool file. The returned
// closer releases the handles, not the files.
func (app *application) collectUploads(draft *listing.Draft) ([]marketplace.Upload, func(), error) {
	var uploads []marketplace.Upload
	var open []*media.Attachment
	var files []io.Closer

	closeAll := func() {
		for _, f := range files {
			f.Close()
		}
	}

	for _, att := range draft.Images {
		if att != nil {
			open = append(open, att)
		}
	}
	imageCount := len(open)
	for _, att := range draft.Videos {
		if att != nil {
			open = append(open, att)
		}
	}

	for i, att := range open {
		f, err := app.spool.Open(att)
		if err != nil {
			closeAll()
			return nil, nil, fmt.Errorf("open spooled media %s: %w", att.FileName, err)
		}
		files = append(files, f)

		field := "images"
		if i >= imageCount {
			field = "videos"
		}
		uploads = append(uploads, marketplace.Upload{
			Field:       field,
			FileName:    att.FileName,
			ContentType: att.ContentType,
			Reader:      f,
		})
	}

	return uploads, closeAll, nil
}

// submissionErrorResponse maps a marketplace failure onto the notice the
// user should see.
func (app *application) submissionErrorResponse(w http.ResponseWriter, r *http.Request, err error) {
	var remote *marketplace.RemoteError
	switch {
	case errors.Is(err, marketplace.ErrNoToken), errors.Is(err, marketplace.ErrUnauthorized):
		app.sessionExpiredResponse(w, r, err)
	case errors.Is(err, marketplace.ErrUnavailable):
		app.serviceUnavailableResponse(w, r, err)
	case errors.As(err, &remote):
		app.badGatewayResponse(w, r, remote.Message, err)
	default:
		app.internalServerError(w, r, err)
	}
}

// DeleteListing godoc
//
//	@Summary	Discard a draft and release its media
//	@Tags		Listing
//	@Success	204	"Draft discarded"
//	@Security	ApiKeyAuth
//	@Router		/listings/{draftID} [delete]
func (app *application) deleteListingHandler(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "draftID")

	if err := app.flows.DeleteDraft(r.Context(), id); err != nil {
		app.internalServerError(w, r, err)
		return
	}
	if err := app.spool.ReleaseDraft(id); err != nil {
		app.logger.Errorw("failed to release draft media", "draft", id, "error", err)
	}
	w.WriteHeader(http.StatusNoContent)
}
