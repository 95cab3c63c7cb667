package main

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"rentora/internal/media"
)

type attachmentResponse struct {
	Kind        media.Kind `json:"kind"`
	Slot        int        `json:"slot"`
	FileName    string     `json:"file_name"`
	Size        int64      `json:"size"`
	ContentType string     `json:"content_type"`
	PreviewURL  string     `json:"preview_url"`
}

func (app *application) fileTooLargeResponse(w http.ResponseWriter, limit int64, kind media.Kind) {
	writeJSONError(w, http.StatusRequestEntityTooLarge,
		fmt.Sprintf("file exceeds the %d MB limit for %ss", limit>>20, kind))
}

func (app *application) mediaParams(w http.ResponseWriter, r *http.Request) (media.Kind, int, bool) {
	kind := media.Kind(chi.URLParam(r, "kind"))
	if _, err := media.SlotsFor(kind); err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("unknown media kind %q", kind))
		return "", 0, false
	}

	slot, err := strconv.Atoi(chi.URLParam(r, "slot"))
	if err != nil {
		app.badRequestResponse(w, r, fmt.Errorf("invalid slot: %v", err))
		return "", 0, false
	}
	slots, _ := media.SlotsFor(kind)
	// Slots are 1-based on the wire.
	if slot < 1 || slot > slots {
		app.badRequestResponse(w, r, fmt.Errorf("slot must be between 1 and %d", slots))
		return "", 0, false
	}

	return kind, slot - 1, true
}

// UploadMedia godoc
//
//	@Summary		Attach a file to a media slot
//	@Description	Enforces the per-kind size cap (3 MB images, 10 MB videos); a rejected file changes nothing
//	@Tags			Listing
//	@Accept			multipart/form-data
//	@Produce		json
//	@Param			file	formData	file	true	"Media file"
//	@Success		200		{object}	attachmentResponse
//	@Failure		413		{object}	error	"File too large"
//	@Failure		415		{object}	error	"Not an image/video"
//	@Security		ApiKeyAuth
//	@Router			/listings/{draftID}/media/{kind}/{slot} [post]
func (app *application) uploadMediaHandler(w http.ResponseWriter, r *http.Request) {
	kind, slot, ok := app.mediaParams(w, r)
	if !ok {
		return
	}

	limit, _ := media.LimitFor(kind)
	// Headroom for the multipart framing around the capped file. A body
	// blowing past it is the size-cap rejection, not a malformed request.
	maxBytes := limit + 64*1024
	r.Body = http.MaxBytesReader(w, r.Body, maxBytes)

	if err := r.ParseMultipartForm(maxBytes); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			app.fileTooLargeResponse(w, limit, kind)
			return
		}
		app.badRequestResponse(w, r, fmt.Errorf("parse form: %w", err))
		return
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			app.fileTooLargeResponse(w, limit, kind)
			return
		}
		app.badRequestResponse(w, r, fmt.Errorf("missing file field: %w", err))
		return
	}
	defer file.Close()

	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	cell, err := draft.Slot(kind, slot)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	att, err := app.spool.Store(draft.ID, kind, slot, header.Filename, file)
	if err != nil {
		switch {
		case errors.Is(err, media.ErrTooLarge):
			app.fileTooLargeResponse(w, limit, kind)
		case errors.Is(err, media.ErrUnsupportedType):
			writeJSONError(w, http.StatusUnsupportedMediaType, err.Error())
		default:
			app.internalServerError(w, r, err)
		}
		return
	}

	// Store wrote over the slot's spool path, so the old file (if any)
	// is already gone; just swap the metadata.
	*cell = att

	if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
		app.internalServerError(w, r, err)
		return
	}

	resp := attachmentResponse{
		Kind:        kind,
		Slot:        slot + 1,
		FileName:    att.FileName,
		Size:        att.Size,
		ContentType: att.ContentType,
		PreviewURL:  fmt.Sprintf("/v1/listings/%s/media/%s/%d/preview", draft.ID, kind, slot+1),
	}
	if err := app.jsonResponse(w, http.StatusOK, resp); err != nil {
		app.internalServerError(w, r, err)
	}
}

// PreviewMedia godoc
//
//	@Summary		Render a slot's preview
//	@Description	Images come back as an inline data URL, videos as the raw stream
//	@Tags			Listing
//	@Produce		json
//	@Success		200
//	@Failure		404	{object}	error	"Empty slot"
//	@Security		ApiKeyAuth
//	@Router			/listings/{draftID}/media/{kind}/{slot}/preview [get]
func (app *application) previewMediaHandler(w http.ResponseWriter, r *http.Request) {
	kind, slot, ok := app.mediaParams(w, r)
	if !ok {
		return
	}

	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	cell, err := draft.Slot(kind, slot)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}
	att := *cell
	if att == nil {
		app.notFoundResponse(w, r, fmt.Errorf("no %s in slot %d", kind, slot+1))
		return
	}

	if kind == media.KindImage {
		if err := app.jsonResponse(w, http.StatusOK, map[string]string{"preview": att.Preview}); err != nil {
			app.internalServerError(w, r, err)
		}
		return
	}

	f, err := app.spool.Open(att)
	if err != nil {
		app.internalServerError(w, r, err)
		return
	}
	defer f.Close()

	w.Header().Set("Content-Type", att.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(att.Size, 10))
	if _, err := io.Copy(w, f); err != nil {
		app.logger.Warnw("preview stream interrupted", "draft", draft.ID, "error", err)
	}
}

// DeleteMedia godoc
//
//	@Summary	Detach a slot and release its preview
//	@Tags		Listing
//	@Success	204	"Slot cleared"
//	@Security	ApiKeyAuth
//	@Router		/listings/{draftID}/media/{kind}/{slot} [delete]
func (app *application) deleteMediaHandler(w http.ResponseWriter, r *http.Request) {
	kind, slot, ok := app.mediaParams(w, r)
	if !ok {
		return
	}

	draft, ok := app.loadDraft(w, r)
	if !ok {
		return
	}

	cell, err := draft.Slot(kind, slot)
	if err != nil {
		app.badRequestResponse(w, r, err)
		return
	}

	if *cell != nil {
		if err := app.spool.Remove(*cell); err != nil {
			app.logger.Errorw("failed to remove spooled media", "draft", draft.ID, "error", err)
		}
		*cell = nil

		if err := app.flows.SaveDraft(r.Context(), draft, app.config.sessionTTL); err != nil {
			app.internalServerError(w, r, err)
			return
		}
	}

	w.WriteHeader(http.StatusNoContent)
}
