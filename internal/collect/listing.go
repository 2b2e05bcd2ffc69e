// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/jmreed/billwatch/pkg/types"
)

// ParseListing extracts bill records from one listing page. Each bill sits
// in its own mini-data-table; the first two tables on the page are
// navigation chrome and are skipped. Rows without a detail link or with too
// few cells are ignored rather than failing the page.
func ParseListing(r io.Reader, baseURL string) ([]types.Bill, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parsing listing page: %w", err)
	}

	var bills []types.Bill
	tables := doc.Find("table.mini-data-table")
	tables.Each(func(i int, table *goquery.Selection) {
		if i < 2 {
			return
		}

		row := table.Find(`tr[id^="bill"]`).First()
		if row.Length() == 0 {
			return
		}

		cells := row.Find("td")
		if cells.Length() < 4 {
			return
		}

		href, ok := cells.Eq(0).Find("a").Attr("href")
		if !ok || href == "" {
			return
		}

		number := billNumberFromLink(href)
		if number == "" {
			return
		}

		bills = append(bills, types.Bill{
			Number:     number,
			Title:      strings.TrimSpace(cells.Eq(1).Text()),
			Status:     strings.TrimSpace(cells.Eq(3).Text()),
			DetailLink: href,
			PDFURL:     PDFURL(baseURL, href),
		})
	})

	return bills, nil
}

// ParseDetail extracts the sponsor name from a bill detail page. The
// sponsor sits in the third cell of the first bill-table row, prefixed
// with "by ".
func ParseDetail(r io.Reader) (string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return "", fmt.Errorf("parsing detail page: %w", err)
	}

	cells := doc.Find("table.bill-table tr").First().Find("td")
	if cells.Length() < 3 {
		return "", fmt.Errorf("detail page has no sponsor cell")
	}

	sponsor := strings.TrimSpace(cells.Eq(2).Text())
	sponsor = strings.TrimSpace(strings.TrimPrefix(sponsor, "by "))
	return sponsor, nil
}

// billNumberFromLink returns the last path segment of a detail link,
// which is the bill number (e.g. "/sessioninfo/2026/legislation/H0001").
func billNumberFromLink(href string) string {
	trimmed := strings.TrimRight(href, "/")
	idx := strings.LastIndex(trimmed, "/")
	if idx < 0 {
		return trimmed
	}
	return trimmed[idx+1:]
}

// PDFURL derives the bill text PDF location from the detail link. The
// legislature serves PDFs from wp-content/uploads mirroring the detail
// path.
func PDFURL(baseURL, detailLink string) string {
	path := strings.TrimRight(detailLink, "/")
	return baseURL + "/wp-content/uploads" + path + ".pdf"
}
