// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/googlegenomics/zmw/internal/bamrecord"
	"github.com/googlegenomics/zmw/internal/format"
	"github.com/googlegenomics/zmw/internal/regiondb"
	"github.com/googlegenomics/zmw/internal/storage"
	"github.com/googlegenomics/zmw/internal/virtual"
	"google.golang.org/api/googleapi"
)

// apiError is used to capture errors that have been defined in the API.
type apiError struct {
	name  string
	code  int
	cause error
}

func (err *apiError) Error() string {
	return fmt.Sprintf("%s (%d): %v", err.name, err.code, err.cause)
}

func (err *apiError) Unwrap() error { return err.cause }

func newApiError(name string, code int, context string, err error) error {
	return &apiError{name, code, fmt.Errorf("%s: %w", context, err)}
}

func newInvalidAuthenticationError(context string, err error) error {
	return newApiError("InvalidAuthentication", http.StatusUnauthorized, context, err)
}

func newInvalidInputError(context string, err error) error {
	return newApiError("InvalidInput", http.StatusBadRequest, context, err)
}

func newInconsistentInputError(context string, err error) error {
	return newApiError("InconsistentInput", http.StatusUnprocessableEntity, context, err)
}

func newPermissionDeniedError(context string, err error) error {
	return newApiError("PermissionDenied", http.StatusForbidden, context, err)
}

func newUnsupportedFormatError(err error) error {
	return &apiError{"UnsupportedFormat", http.StatusBadRequest, err}
}

func newNotFoundError(context string, err error) error {
	return newApiError("NotFound", http.StatusNotFound, context, err)
}

func newStorageError(context string, err error) error {
	if errors.Is(err, storage.ErrMissingOrInvalidToken) || errors.Is(err, storage.ErrOutsideRoot) {
		return newPermissionDeniedError(context, err)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return newNotFoundError("object does not exist", err)
	}
	if errors.Is(err, format.ErrNotBAM) {
		return newInvalidInputError(context, err)
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		switch gerr.Code {
		case http.StatusUnauthorized:
			return newInvalidAuthenticationError(context, err)
		case http.StatusForbidden:
			return newPermissionDeniedError(context, err)
		case http.StatusNotFound:
			return newNotFoundError(context, err)
		}
	}
	return err
}

// newStitchingError reports ZMWs whose records cannot be stitched as
// InconsistentInput.
func newStitchingError(err error) error {
	var (
		consistency *virtual.ConsistencyError
		derivation  *virtual.RegionDerivationError
	)
	if errors.As(err, &consistency) || errors.As(err, &derivation) {
		return newInconsistentInputError("stitching", err)
	}
	if errors.Is(err, bamrecord.ErrMissingHoleNumber) {
		return newInvalidInputError("reading records", err)
	}
	return newStorageError("reading records", err)
}

func newRegionDBError(err error) error {
	if errors.Is(err, regiondb.ErrNotFound) {
		return newNotFoundError("looking up regions", err)
	}
	return err
}

// writeError writes either a JSON object or bare HTTP error describing err.
// A JSON object is written only when the error has a name and code defined by
// the API.
func writeError(c *gin.Context, err error) {
	var aerr *apiError
	if errors.As(err, &aerr) {
		c.JSON(aerr.code, gin.H{
			"error":   aerr.name,
			"message": fmt.Sprintf("%s: %v", http.StatusText(aerr.code), aerr.cause),
		})
		return
	}

	code := http.StatusInternalServerError
	c.String(code, "%s: %v", http.StatusText(code), err)
}
