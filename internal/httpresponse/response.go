package httpresponse

import (
	"encoding/json"
	"fmt"
	"net/http"
)

type Response[T any] struct {
	Status int `json:"status"`
	Body   T   `json:"body,omitempty"`
}

type ErrorResponse struct {
	ErrorDescription string `json:"error"`
}

const internalErrorJSON = `{"status":500,"body":{"error":"internal server error"}}`

// WriteResponseWithStatus writes body wrapped in the status envelope.
func WriteResponseWithStatus(w http.ResponseWriter, status int, body any) {
	raw, err := json.Marshal(Response[any]{Status: status, Body: body})
	if err != nil {
		WriteInternalErrorResponse(w)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(raw)
}

func WriteError(w http.ResponseWriter, status int, err error) {
	WriteResponseWithStatus(w, status, ErrorResponse{ErrorDescription: err.Error()})
}

func WriteInternalErrorResponse(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusInternalServerError)
	_, _ = fmt.Fprintln(w, internalErrorJSON)
}
