package app_error

import (
	"errors"
	"fmt"

	"github.com/gin-gonic/gin"
)

type statusError struct {
	error
	status int
}

func (e statusError) Unwrap() error {
	return e.error
}

func (e statusError) HTTPStatus() int {
	return e.status
}

// ValidationFailed names the offending field so the caller can surface it.
func ValidationFailed(field string, reason string) error {
	return statusError{fmt.Errorf("validation failed: %s %s", field, reason), 400}
}

func DuplicatePending(athleteId int, target string) error {
	return statusError{fmt.Errorf("athlete %d already has a pending submission for %s", athleteId, target), 409}
}

func NotFound(what string, id int) error {
	return statusError{fmt.Errorf("%s %d not found", what, id), 404}
}

// NotPending is distinct from NotFound so a lost review race reads as
// "already processed" rather than a generic failure.
func NotPending(submissionId int) error {
	return statusError{fmt.Errorf("submission %d is not pending review", submissionId), 409}
}

func Internal(err error) error {
	return statusError{err, 500}
}

func HTTPStatus(err error) int {
	var se statusError
	if errors.As(err, &se) {
		return se.status
	}
	return 500
}

func Respond(c *gin.Context, err error) {
	c.JSON(HTTPStatus(err), gin.H{"error": err.Error()})
}
