package gateway

import (
	"encoding/json"
	"net/http"

	"github.com/tenderops/console-gateway/internal/upstream"
)

type messageBody struct {
	Message string `json:"message"`
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, messageBody{Message: message})
}

// writeUpstreamResponse maps a backend answer onto the client response:
// 5xx collapses to a generic 500 so backend internals never leak, 4xx
// passes through verbatim, 2xx passes through with content type intact.
func writeUpstreamResponse(w http.ResponseWriter, resp *upstream.Response) {
	if resp.Status >= http.StatusInternalServerError {
		writeMessage(w, http.StatusInternalServerError, "Server Error")
		return
	}
	contentType := resp.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/json"
	}
	w.Header().Set("Content-Type", contentType)
	w.WriteHeader(resp.Status)
	_, _ = w.Write(resp.Body)
}

// writeTransportError maps a failed forward (no backend answer at all) to
// the generic 500. The cause is logged by the handler, never sent to the
// client.
func writeTransportError(w http.ResponseWriter) {
	writeMessage(w, http.StatusInternalServerError, "Server Error")
}
