// Reelcast - Feed Composition and Playback Continuation Engine
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/reelcast

// Package validation validates decoded API requests with a shared
// go-playground/validator instance.
//
// Besides the built-in tags it registers "identity" for content ids taken
// from clients. Errors name fields by their json name and convert to the
// API's VALIDATION_ERROR shape:
//
//	type progressRequest struct {
//	    Ratio *float64 `json:"ratio" validate:"omitempty,gte=0,lte=1"`
//	}
//
//	if verr := validation.ValidateStruct(&req); verr != nil {
//	    apiErr := verr.ToAPIError()
//	    ...
//	}
package validation
