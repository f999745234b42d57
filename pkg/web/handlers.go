package web

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/dmitrymomot/dealdocs/pkg/clipboard"
	"github.com/dmitrymomot/dealdocs/pkg/deal"
	"github.com/dmitrymomot/dealdocs/pkg/mailclient"
	"github.com/dmitrymomot/dealdocs/pkg/pipeline"
	"github.com/dmitrymomot/dealdocs/pkg/templates"
)

type clientsBody struct {
	Default string                  `json:"default"`
	Clients []mailclient.Descriptor `json:"clients"`
}

func (s *Server) listClients(*http.Request) Response {
	return JSON(http.StatusOK, clientsBody{
		Default: s.registry.Default().ID,
		Clients: s.registry.Clients(),
	})
}

type preferenceBody struct {
	MailClient string `json:"mail_client"`
	Label      string `json:"label,omitempty"`
}

func (s *Server) getPreference(r *http.Request) Response {
	d := s.dispatcher(s.device(r)).Resolve(r.Context())
	return JSON(http.StatusOK, preferenceBody{MailClient: d.ID, Label: d.Label})
}

func (s *Server) putPreference(r *http.Request) Response {
	var body preferenceBody
	if err := json.NewDecoder(io.LimitReader(r.Body, 4<<10)).Decode(&body); err != nil {
		return s.fail(r, http.StatusBadRequest, errors.Join(ErrBadBody, err).Error())
	}

	prefs := mailclient.NewPreferences(s.device(r).Preferences, s.registry)
	if err := prefs.Set(r.Context(), body.MailClient); err != nil {
		if errors.Is(err, mailclient.ErrUnknownClient) {
			return s.fail(r, http.StatusUnprocessableEntity, "Unknown mail client.")
		}
		return s.fail(r, http.StatusInternalServerError, "Could not save the mail client.")
	}

	d, _ := s.registry.Lookup(body.MailClient)
	if isDataStar(r) {
		return Templ(Notice(string(pipeline.StatusSucceeded), d.Label+" will be used for new emails.", ""))
	}
	return JSON(http.StatusOK, preferenceBody{MailClient: d.ID, Label: d.Label})
}

type documentLink struct {
	Kind  string `json:"kind"`
	Title string `json:"title"`
	URL   string `json:"url"`
}

func (s *Server) listDocuments(r *http.Request) Response {
	dealID := chi.URLParam(r, "dealID")
	tpls := s.engine.Templates().Templates()
	out := make([]documentLink, 0, len(tpls))
	for _, t := range tpls {
		out = append(out, documentLink{
			Kind:  t.Kind(),
			Title: t.Title(),
			URL:   documentURL(dealID, t.Kind()),
		})
	}
	return JSON(http.StatusOK, out)
}

func (s *Server) viewDocument(r *http.Request) Response {
	dealID, kind := chi.URLParam(r, "dealID"), chi.URLParam(r, "kind")
	doc, err := s.engine.Render(r.Context(), dealID, kind)
	if err != nil {
		return s.fail(r, statusFor(err), noticeFor(err))
	}
	return Templ(DocumentPage(doc, Page{
		ShareURL:   documentURL(dealID, kind) + "/share",
		Clients:    s.registry.Clients(),
		MailClient: s.dispatcher(s.device(r)).Resolve(r.Context()).ID,
	}))
}

func (s *Server) share(r *http.Request) Response {
	dev := s.device(r)
	res := s.engine.CopyAndEmailTo(r.Context(), pipeline.Target{
		Clipboard:  dev.Clipboard,
		Dispatcher: s.dispatcher(dev),
	}, chi.URLParam(r, "dealID"), chi.URLParam(r, "kind"))

	if isDataStar(r) {
		return Templ(Notice(string(res.Status), res.Notice, res.URL))
	}
	status := http.StatusOK
	if res.Status == pipeline.StatusFailed {
		status = statusFor(res.Err)
	}
	return JSON(status, res)
}

// paste serves the device clipboard entry in the format the client asks for.
func (s *Server) paste(r *http.Request) Response {
	entry, err := s.device(r).Clipboard.Read(r.Context())
	if err != nil {
		if errors.Is(err, clipboard.ErrEmpty) {
			return Error(http.StatusNotFound, "Nothing has been copied yet.")
		}
		return Error(http.StatusInternalServerError, "Could not read the clipboard.")
	}

	format := clipboard.Format(negotiate(r.Header.Get("Accept"),
		string(clipboard.FormatHTML), string(clipboard.FormatPlain)))
	body, ok := entry.Get(format)
	if !ok {
		format = clipboard.FormatPlain
		body, _ = entry.Get(format)
	}
	return Raw(string(format)+"; charset=utf-8", body)
}

// fail answers datastar requests with a notice and everything else with a
// JSON error.
func (s *Server) fail(r *http.Request, status int, message string) Response {
	if isDataStar(r) {
		return Templ(Notice(string(pipeline.StatusFailed), message, ""))
	}
	return Error(status, message)
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, deal.ErrNotFound), errors.Is(err, deal.ErrInvalidID),
		errors.Is(err, templates.ErrUnknownTemplate):
		return http.StatusNotFound
	case errors.Is(err, templates.ErrMissingField):
		return http.StatusUnprocessableEntity
	}
	return http.StatusInternalServerError
}

func noticeFor(err error) string {
	switch {
	case errors.Is(err, deal.ErrNotFound), errors.Is(err, deal.ErrInvalidID):
		return pipeline.NoticeNotFound
	case errors.Is(err, templates.ErrUnknownTemplate):
		return pipeline.NoticeUnknownKind
	case errors.Is(err, templates.ErrMissingField):
		return pipeline.NoticeMissingData
	}
	return pipeline.NoticeRenderFailed
}

func documentURL(dealID, kind string) string {
	return "/deals/" + url.PathEscape(dealID) + "/documents/" + url.PathEscape(kind)
}
