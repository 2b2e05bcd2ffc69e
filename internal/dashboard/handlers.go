// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"html/template"
	"log"
	"net/http"
	"os"
	"strconv"

	"github.com/jmreed/billwatch/pkg/types"
)

// ---- view models ----

type billsData struct {
	Run       string
	MinIssues int
	Total     int
	Bills     []types.EnrichedBill
}

type billData struct {
	Run  string
	Bill types.EnrichedBill
	// Text is the converted redline HTML, produced by this pipeline's own
	// converter and safe to embed as-is.
	Text    template.HTML
	TextErr bool
}

type histogramData struct {
	Run      string
	MinCount int
	Rows     []histogramRow
	Empty    bool
}

// intParam reads an integer query parameter, falling back to def when the
// parameter is absent or malformed.
func intParam(r *http.Request, name string, def int) int {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return def
	}
	return n
}

func (s *Server) handleBills(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.load()
	if err != nil {
		http.Error(w, "loading bills: "+err.Error(), http.StatusInternalServerError)
		return
	}

	min := intParam(r, "min", 0)
	data := billsData{
		Run:       s.run,
		MinIssues: min,
		Total:     len(bills),
		Bills:     filterMinIssues(bills, min),
	}
	s.render(w, s.listTmpl, data)
}

func (s *Server) handleBillDetail(w http.ResponseWriter, r *http.Request, number string) {
	bills, err := s.bills.load()
	if err != nil {
		http.Error(w, "loading bills: "+err.Error(), http.StatusInternalServerError)
		return
	}

	bill, ok := findBill(bills, number)
	if !ok {
		http.NotFound(w, r)
		return
	}

	data := billData{Run: s.run, Bill: bill}
	if bill.HTMLPath != "" {
		text, err := os.ReadFile(bill.HTMLPath)
		if err != nil {
			data.TextErr = true
		} else {
			data.Text = template.HTML(text)
		}
	} else {
		data.TextErr = true
	}
	s.render(w, s.billTmpl, data)
}

func (s *Server) handleIssues(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.load()
	if err != nil {
		http.Error(w, "loading bills: "+err.Error(), http.StatusInternalServerError)
		return
	}

	min := intParam(r, "min", 1)
	rows := issueHistogram(bills, min)
	s.render(w, s.issuesTmpl, histogramData{
		Run:      s.run,
		MinCount: min,
		Rows:     rows,
		Empty:    len(rows) == 0,
	})
}

func (s *Server) handleSponsors(w http.ResponseWriter, r *http.Request) {
	bills, err := s.bills.load()
	if err != nil {
		http.Error(w, "loading bills: "+err.Error(), http.StatusInternalServerError)
		return
	}

	min := intParam(r, "min", 1)
	rows := sponsorHistogram(bills, min)
	s.render(w, s.sponsorsTmpl, histogramData{
		Run:      s.run,
		MinCount: min,
		Rows:     rows,
		Empty:    len(rows) == 0,
	})
}

func (s *Server) render(w http.ResponseWriter, tmpl *template.Template, data any) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := tmpl.ExecuteTemplate(w, "base.html", data); err != nil {
		log.Printf("rendering template: %v", err)
	}
}
