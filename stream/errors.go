package stream

import (
	"errors"
	"fmt"

	apierrors "k8s.io/apimachinery/pkg/api/errors"
)

// TransportError reports a failed list/watch request at the network/API
// layer. It is always recoverable: the reconciliation loop responds with
// a fixed back-off and retries.
type TransportError struct {
	// Code is the HTTP status code, or 0 when the request never reached
	// the server.
	Code int

	// Body is the response detail returned by the server, or the
	// underlying error text.
	Body string

	err error
}

func (e *TransportError) Error() string {
	if e.Code == 0 {
		return fmt.Sprintf("transport error: %s", e.Body)
	}
	return fmt.Sprintf("transport error: status %d: %s", e.Code, e.Body)
}

func (e *TransportError) Unwrap() error {
	return e.err
}

// asTransportError wraps err into a *TransportError, extracting the
// status code and message when the error carries an API status.
func asTransportError(err error) *TransportError {
	var status apierrors.APIStatus
	if errors.As(err, &status) {
		s := status.Status()
		return &TransportError{Code: int(s.Code), Body: s.Message, err: err}
	}
	return &TransportError{Body: err.Error(), err: err}
}
