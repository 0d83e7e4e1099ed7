package web

import (
	"bytes"
	"fmt"
	"html/template"
	"log/slog"
	"net/http"

	"github.com/gorilla/csrf"
	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"meetup/internal/adapters/http/middleware"
	"meetup/internal/domain/session"
)

// mdRenderer is a goldmark instance configured for safe HTML output.
// Raw HTML in markdown input is escaped (WithUnsafe is NOT set), preventing XSS.
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// pageNames lists every page template; each is parsed with the layout and
// the teams partial.
var pageNames = []string{
	"login.html",
	"home.html",
	"teams_page.html",
	"admin.html",
	"edit_user.html",
	"shuffle_confirm.html",
}

var pages = mustParsePages()

func renderMarkdown(md string) template.HTML {
	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md), &buf); err != nil {
		return template.HTML(template.HTMLEscapeString(md))
	}
	return template.HTML(buf.String())
}

// baseFuncs are request independent. The request-bound entries are
// placeholders replaced in renderTemplate.
func baseFuncs() template.FuncMap {
	return template.FuncMap{
		"renderMarkdown": renderMarkdown,
		"csrfField":      func() template.HTML { return "" },
		"currentUser":    func() *session.Session { return nil },
	}
}

func mustParsePages() map[string]*template.Template {
	out := make(map[string]*template.Template, len(pageNames))
	for _, name := range pageNames {
		tpl, err := template.New("layout.html").Funcs(baseFuncs()).ParseFS(templateFS,
			"templates/layout.html", "templates/teams.html", "templates/"+name)
		if err != nil {
			panic(fmt.Sprintf("parse template %s: %v", name, err))
		}
		out[name] = tpl
	}
	return out
}

func requestFuncs(r *http.Request) template.FuncMap {
	var cur *session.Session
	if sess, ok := middleware.GetSessionFromContext(r.Context()); ok {
		cur = &sess
	}
	return template.FuncMap{
		"csrfField":   func() template.HTML { return csrf.TemplateField(r) },
		"currentUser": func() *session.Session { return cur },
	}
}

// renderTemplate executes the layout of a page with data.
func renderTemplate(w http.ResponseWriter, r *http.Request, status int, name string, data any) {
	executeTemplate(w, r, status, name, "layout.html", data)
}

// renderFragment executes one named template of a page without the layout.
func renderFragment(w http.ResponseWriter, r *http.Request, status int, page, fragment string, data any) {
	executeTemplate(w, r, status, page, fragment, data)
}

func executeTemplate(w http.ResponseWriter, r *http.Request, status int, page, entry string, data any) {
	base, ok := pages[page]
	if !ok {
		internalError(w, fmt.Errorf("unknown template %s", page))
		return
	}
	tpl, err := base.Clone()
	if err != nil {
		internalError(w, err)
		return
	}
	tpl.Funcs(requestFuncs(r))

	var buf bytes.Buffer
	if err := tpl.ExecuteTemplate(&buf, entry, data); err != nil {
		internalError(w, fmt.Errorf("render %s: %w", page, err))
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = buf.WriteTo(w)
}

func internalError(w http.ResponseWriter, err error) {
	slog.Error("internal_error", "error", err.Error())
	http.Error(w, "internal server error", http.StatusInternalServerError)
}
