package http

import (
	"html/template"
	"net/http"
)

// Minimal HTML shells. The real dashboard UI is a separate front end; the
// gateway only serves enough to exercise navigation and the route guards.
var pageTemplate = template.Must(template.New("page").Parse(`<!doctype html>
<html>
<head><title>{{.Title}} | WahTabla Admin</title></head>
<body>
<h1>{{.Title}}</h1>
{{if .AdminName}}<p>Signed in as {{.AdminName}}</p>{{end}}
{{if .Redirect}}<p>You will return to {{.Redirect}} after signing in.</p>{{end}}
</body>
</html>
`))

type pageData struct {
	Title     string
	AdminName string
	Redirect  string
}

func renderPage(w http.ResponseWriter, data pageData) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_ = pageTemplate.Execute(w, data)
}

func (s *Server) handleLoginPage(w http.ResponseWriter, r *http.Request) {
	renderPage(w, pageData{Title: "Log in", Redirect: r.URL.Query().Get("redirect")})
}

func (s *Server) handleSignupPage(w http.ResponseWriter, _ *http.Request) {
	renderPage(w, pageData{Title: "Sign up"})
}

// The layout shell must render even when the upstream is down, so it uses
// the safe resolver: no refresh attempt, anonymous shell on any failure.
func (s *Server) handleDashboardPage(w http.ResponseWriter, r *http.Request) {
	data := pageData{Title: "Dashboard"}
	if sess := s.resolver.ResolveSafe(r.Context(), r); sess != nil {
		data.AdminName = sess.Admin.Name
	}
	renderPage(w, data)
}
