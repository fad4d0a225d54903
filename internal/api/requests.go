// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/goccy/go-json"

	"github.com/tomtom215/reelcast/internal/validation"
)

// RefreshRequest is the body of POST /feed/refresh.
type RefreshRequest struct {
	Hard bool `json:"hard"`
}

// ProgressRequest is the body of POST /interactions/{id}/progress. Either
// ratio, or position with duration, must be given.
type ProgressRequest struct {
	Ratio    *float64 `json:"ratio" validate:"required_without=Position"`
	Position *float64 `json:"position" validate:"required_without=Ratio"`
	Duration *float64 `json:"duration" validate:"required_with=Position,omitempty,gt=0"`
}

// ExclusionRequest is the body of POST /admin/exclusions.
type ExclusionRequest struct {
	ID string `json:"id" validate:"identity"`
}

// StartPlaybackRequest is the body of POST /playback/short and /playback/long.
type StartPlaybackRequest struct {
	StartID     string `json:"startId" validate:"omitempty,identity"`
	AutoAdvance *bool  `json:"autoAdvance"`
}

// NavigateRequest is the body of POST /playback/{session}/navigate.
type NavigateRequest struct {
	Index *int   `json:"index" validate:"required_without=ID,omitempty,gte=0"`
	ID    string `json:"id" validate:"required_without=Index,omitempty,identity"`
}

// SelectRequest is the body of POST /playback/{session}/select.
type SelectRequest struct {
	ID string `json:"id" validate:"identity"`
}

// PositionRequest is the body of POST /playback/{session}/progress.
type PositionRequest struct {
	Position float64 `json:"position" validate:"gte=0"`
	Duration float64 `json:"duration" validate:"gt=0"`
}

// AutoplayRequest is the body of POST /playback/{session}/autoplay.
type AutoplayRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

var errEmptyBody = errors.New("request body is required")

// decodeBody decodes and validates a JSON body into dst, writing the error
// response itself. It returns false when the handler should stop. An empty
// body decodes as {} when allowEmpty is set.
func decodeBody(rw *ResponseWriter, r *http.Request, dst interface{}, allowEmpty bool) bool {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) && allowEmpty {
			return validate(rw, dst)
		}
		if errors.Is(err, io.EOF) {
			err = errEmptyBody
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			rw.Error(http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "request body too large")
			return false
		}
		rw.BadRequest("invalid JSON body: " + err.Error())
		return false
	}
	return validate(rw, dst)
}

func validate(rw *ResponseWriter, dst interface{}) bool {
	if verr := validation.ValidateStruct(dst); verr != nil {
		rw.ValidationError(verr)
		return false
	}
	return true
}

// pathIdentity reads and validates an item identity path parameter. Media
// url identities arrive percent-encoded.
func pathIdentity(rw *ResponseWriter, r *http.Request, param string) (string, bool) {
	raw := chi.URLParam(r, param)
	id, err := url.PathUnescape(raw)
	if err != nil {
		rw.BadRequest("malformed " + param)
		return "", false
	}
	if verr := validation.ValidateIdentity(param, id); verr != nil {
		rw.ValidationError(verr)
		return "", false
	}
	return id, true
}
