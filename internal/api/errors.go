package api

import (
	"errors"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"pallet-cubing-backend/internal/workflow"
)

// errorResponse is the body of every failed workflow call. Screen is set when
// the UI should move somewhere else to recover.
type errorResponse struct {
	Error  string          `json:"error"`
	Screen workflow.Screen `json:"screen,omitempty"`
	Detail any             `json:"detail,omitempty"`
}

// abortWithError maps a workflow error onto a status code and JSON body.
func abortWithError(c *gin.Context, err error) {
	var (
		validationErr   *workflow.ValidationError
		storeErr        *workflow.StoreError
		duplicateErr    *workflow.DuplicateProError
		expectedErr     *workflow.ExpectedPalletsError
		confirmationErr *workflow.ConfirmationRequiredError
		missingErr      *workflow.MissingContextError
		staleErr        *workflow.StaleSequenceError
		transitionErr   *workflow.InvalidTransitionError
	)

	resp := errorResponse{Error: err.Error()}
	status := http.StatusInternalServerError

	switch {
	case errors.As(err, &validationErr):
		status = http.StatusBadRequest
		resp.Error = validationErr.Message
		resp.Detail = validationErr
	case errors.As(err, &storeErr):
		status = http.StatusServiceUnavailable
	case errors.As(err, &duplicateErr):
		status = http.StatusConflict
		resp.Detail = duplicateErr
	case errors.As(err, &expectedErr):
		status = http.StatusConflict
		resp.Detail = expectedErr
	case errors.As(err, &confirmationErr):
		status = http.StatusPreconditionRequired
		resp.Detail = confirmationErr
	case errors.As(err, &missingErr):
		status = http.StatusConflict
		resp.Screen = missingErr.Recovery
	case errors.As(err, &staleErr):
		status = http.StatusConflict
		resp.Detail = staleErr
	case errors.As(err, &transitionErr):
		status = http.StatusConflict
		resp.Screen = transitionErr.From
		resp.Detail = transitionErr
	case errors.Is(err, workflow.ErrNotLoggedIn):
		status = http.StatusUnauthorized
		resp.Screen = workflow.ScreenLogin
	case errors.Is(err, workflow.ErrSaveInProgress), errors.Is(err, workflow.ErrExportInProgress):
		status = http.StatusTooManyRequests
	case errors.Is(err, workflow.ErrNothingToExport):
		status = http.StatusNotFound
	}

	if status >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request.Method, c.FullPath(), err)
	}
	c.AbortWithStatusJSON(status, resp)
}
