// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package dashboard serves a read-only web view over one run's enriched
// bill stream. It never writes pipeline artifacts; an absent or partial
// stream renders as an empty state, not an error.
package dashboard

import (
	"embed"
	"fmt"
	"html/template"
	"log"
	"net/http"
	"strings"

	"github.com/jmreed/billwatch/pkg/types"
)

//go:embed templates
var templateFS embed.FS

var funcMap = template.FuncMap{
	"statusClass": func(status string) string {
		s := strings.ToLower(status)
		switch {
		case strings.Contains(s, "law"), strings.Contains(s, "passed"):
			return "status status-passed"
		case strings.Contains(s, "failed"), strings.Contains(s, "died"):
			return "status status-dead"
		}
		return "status"
	},
	"issueWord": func(n int) string {
		if n == 1 {
			return "issue"
		}
		return "issues"
	},
}

// Server is the read-only dashboard server for a single run.
type Server struct {
	cfg types.DashboardConfig
	run string

	bills *loader

	listTmpl     *template.Template
	billTmpl     *template.Template
	issuesTmpl   *template.Template
	sponsorsTmpl *template.Template
}

// NewServer creates a Server with parsed templates for the given run.
func NewServer(cfg types.DashboardConfig, runID string) *Server {
	return &Server{
		cfg:          cfg,
		run:          runID,
		bills:        newLoader(cfg.DataDir, runID),
		listTmpl:     mustParseTmpl("base.html", "bills.html"),
		billTmpl:     mustParseTmpl("base.html", "bill.html"),
		issuesTmpl:   mustParseTmpl("base.html", "issues.html"),
		sponsorsTmpl: mustParseTmpl("base.html", "sponsors.html"),
	}
}

func mustParseTmpl(names ...string) *template.Template {
	patterns := make([]string, len(names))
	for i, n := range names {
		patterns[i] = "templates/" + n
	}
	return template.Must(template.New("").Funcs(funcMap).ParseFS(templateFS, patterns...))
}

// Handler returns the route table. Split from Start so tests can drive the
// server through httptest without binding a port.
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/":
			s.handleBills(w, r)
		case strings.HasPrefix(r.URL.Path, "/bill/"):
			s.handleBillDetail(w, r, strings.TrimPrefix(r.URL.Path, "/bill/"))
		default:
			http.NotFound(w, r)
		}
	})
	mux.HandleFunc("/issues", s.handleIssues)
	mux.HandleFunc("/sponsors", s.handleSponsors)
	return mux
}

// Start registers routes and listens until the process exits.
func (s *Server) Start() error {
	addr := fmt.Sprintf(":%d", s.cfg.Port)
	log.Printf("billwatch dashboard (run %s): http://localhost%s", s.run, addr)
	return http.ListenAndServe(addr, s.Handler())
}
