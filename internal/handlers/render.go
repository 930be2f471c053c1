package handlers

import (
	"bytes"
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"

	"spinwheel/internal/viewmodel"
)

func renderHTML(w http.ResponseWriter, r *http.Request, component templ.Component) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := component.Render(r.Context(), w); err != nil {
		http.Error(w, "failed to render", http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, viewmodel.ErrorResponse{Error: message})
}

// decodeText reads a {"text": "..."} body. A missing field is an error, an empty string is not.
func decodeText(w http.ResponseWriter, r *http.Request) (string, bool) {
	var req viewmodel.TextRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 64<<10)).Decode(&req); err != nil {
		return "", false
	}
	if req.Text == nil {
		return "", false
	}
	return *req.Text, true
}

func writeSSE(w http.ResponseWriter, event string, payload any) {
	var buf bytes.Buffer
	_ = json.NewEncoder(&buf).Encode(payload)
	data := strings.TrimRight(buf.String(), "\n")
	_, _ = w.Write([]byte("event: " + event + "\n"))
	for _, line := range strings.Split(data, "\n") {
		_, _ = w.Write([]byte("data: " + line + "\n"))
	}
	_, _ = w.Write([]byte("\n"))
}
