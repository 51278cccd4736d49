package httptransport

import (
	"net/http"

	"github.com/iliamunaev/quote-wizard/internal/apperr"
	"github.com/iliamunaev/quote-wizard/internal/model"
)

const kindBadRequest = "bad_request"

// badRequest is a malformed request body.
type badRequest struct {
	msg string
}

func (e *badRequest) Error() string { return e.msg }
func (e *badRequest) Kind() string  { return kindBadRequest }

// httpStatus maps err to a status code. Domain kinds follow apperr.
func httpStatus(err error) int {
	if apperr.Kind(err) == kindBadRequest {
		return http.StatusBadRequest
	}
	return apperr.HTTPStatus(err)
}

// errorPayload describes err for the client.
func errorPayload(err error) *model.ErrorPayload {
	p := &model.ErrorPayload{
		Kind:    apperr.Kind(err),
		Message: apperr.Message(err),
	}
	if bad, ok := err.(*badRequest); ok {
		p.Message = bad.msg
	}
	if fe := apperr.Fields(err); len(fe) > 0 {
		p.Fields = fe
	}
	return p
}
