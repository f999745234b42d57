package web

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/a-h/templ"
	"github.com/starfederation/datastar-go/datastar"
)

// Response renders itself to the client.
type Response interface {
	Render(w http.ResponseWriter, r *http.Request) error
}

// HandlerFunc produces the response for a request.
type HandlerFunc func(r *http.Request) Response

// isDataStar reports whether r was issued by datastar and expects an event
// stream.
func isDataStar(r *http.Request) bool {
	return strings.Contains(r.Header.Get("Accept"), "text/event-stream") ||
		r.Header.Get("Datastar-Request") == "true" ||
		r.URL.Query().Has("datastar")
}

type jsonResponse struct {
	status int
	body   any
}

func (j jsonResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(j.status)
	return json.NewEncoder(w).Encode(j.body)
}

// JSON writes body with status.
func JSON(status int, body any) Response {
	return jsonResponse{status: status, body: body}
}

type errorBody struct {
	Error string `json:"error"`
}

// Error writes {"error": message} with status.
func Error(status int, message string) Response {
	return JSON(status, errorBody{Error: message})
}

type templResponse struct {
	status    int
	component templ.Component
	options   []datastar.PatchElementOption
}

// Render patches the component over SSE for datastar requests and writes
// plain HTML otherwise.
func (t templResponse) Render(w http.ResponseWriter, r *http.Request) error {
	if isDataStar(r) {
		return datastar.NewSSE(w, r).PatchElementTempl(t.component, t.options...)
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(t.status)
	return t.component.Render(r.Context(), w)
}

// Templ renders a component with status 200.
func Templ(c templ.Component, opts ...datastar.PatchElementOption) Response {
	return templResponse{status: http.StatusOK, component: c, options: opts}
}

type rawResponse struct {
	contentType string
	body        string
}

func (b rawResponse) Render(w http.ResponseWriter, _ *http.Request) error {
	w.Header().Set("Content-Type", b.contentType)
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	_, err := w.Write([]byte(b.body))
	return err
}

// Raw writes body as-is with the given content type.
func Raw(contentType, body string) Response {
	return rawResponse{contentType: contentType, body: body}
}

// negotiate returns the first offered type named by the Accept header, in
// header order. Anything else yields offered[0].
func negotiate(accept string, offered ...string) string {
	for part := range strings.SplitSeq(accept, ",") {
		media, _, _ := strings.Cut(part, ";")
		media = strings.ToLower(strings.TrimSpace(media))
		for _, o := range offered {
			if media == o {
				return o
			}
		}
	}
	return offered[0]
}
