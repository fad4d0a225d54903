// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

package api

import (
	"errors"
	"net/http"

	"github.com/tomtom215/reelcast/internal/exclusion"
	"github.com/tomtom215/reelcast/internal/feed"
	"github.com/tomtom215/reelcast/internal/interaction"
	"github.com/tomtom215/reelcast/internal/playback"
)

// writeDomainError maps engine errors onto the API taxonomy. Anything
// unrecognized is an INTERNAL_ERROR.
func writeDomainError(rw *ResponseWriter, err error) {
	switch {
	case errors.Is(err, feed.ErrNoComposition):
		rw.ServiceUnavailable("feed has not been composed yet")
	case errors.Is(err, feed.ErrRefreshInProgress):
		rw.Conflict("a refresh is already running")
	case errors.Is(err, feed.ErrRefreshCanceled):
		rw.ServiceUnavailable("refresh was canceled")
	case errors.Is(err, playback.ErrSessionNotFound):
		rw.NotFound("playback session not found or expired")
	case errors.Is(err, playback.ErrIndexOutOfRange):
		rw.Error(http.StatusBadRequest, ErrCodeValidation, err.Error())
	case errors.Is(err, playback.ErrWrongKind):
		rw.BadRequest(err.Error())
	case errors.Is(err, playback.ErrEmptyList):
		rw.NotFound("no short-form items to play")
	case errors.Is(err, playback.ErrInvalidDuration),
		errors.Is(err, interaction.ErrInvalidProgress),
		errors.Is(err, interaction.ErrEmptyID),
		errors.Is(err, exclusion.ErrEmptyEntry):
		rw.Error(http.StatusBadRequest, ErrCodeValidation, err.Error())
	default:
		rw.InternalError("request failed", err)
	}
}
