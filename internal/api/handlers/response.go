package handlers

import (
	"encoding/json"
	"net/http"
)

// Request bodies are small JSON documents; anything larger is abuse.
const maxBodyBytes = 1 << 20

// errorEnvelope is the wire shape of every failure response: a stable
// machine-readable code, a human-readable message and, for validation
// failures, a per-field detail map.
type errorEnvelope struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if v == nil {
		return
	}

	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string, details any) {
	writeJSON(w, status, struct {
		Error errorEnvelope `json:"error"`
	}{
		Error: errorEnvelope{Code: code, Message: message, Details: details},
	})
}

// decodeJSON parses the request body into dst, writing a 400 and returning
// false on any problem. Unknown fields and trailing data are rejected so
// client typos fail loudly instead of silently dropping input.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)

	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "malformed json body", map[string]string{"reason": err.Error()})
		return false
	}

	if dec.More() {
		writeError(w, http.StatusBadRequest, "bad_request", "trailing data after json body", nil)
		return false
	}

	return true
}
