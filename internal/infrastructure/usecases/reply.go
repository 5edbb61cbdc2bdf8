package usecases

import "github.com/fabiorvs/fake-requests/internal/domain/reqlog"

const contentTypeJSON = "application/json; charset=utf-8"

// Reply is the response a handler must send. Body is written verbatim when it is
// []byte and JSON-encoded otherwise.
type Reply struct {
	Status  int
	Headers map[string]string
	Body    any
	Record  reqlog.Record
}

// ErrorBody is the JSON envelope for per-request failures.
type ErrorBody struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

func jsonHeaders() map[string]string {
	return map[string]string{"Content-Type": contentTypeJSON}
}
