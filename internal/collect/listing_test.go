// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package collect

import (
	"strings"
	"testing"
)

const chromeTable = `<table class="mini-data-table"><tr><td>chrome</td></tr></table>`

// billTable renders one listing entry the way the legislature site does.
func billTable(number, title, status string) string {
	return `<table class="mini-data-table">
		<tr id="bill` + number + `">
			<td><a href="/sessioninfo/2026/legislation/` + number + `">` + number + `</a></td>
			<td> ` + title + ` </td>
			<td>links</td>
			<td> ` + status + ` </td>
		</tr>
	</table>`
}

func listingPage(tables ...string) string {
	return "<html><body>" + chromeTable + chromeTable + strings.Join(tables, "\n") + "</body></html>"
}

func TestParseListing(t *testing.T) {
	page := listingPage(
		billTable("H0001", "An act relating to water rights", "Introduced"),
		billTable("S1042", "An act relating to taxation", "In committee"),
		// Malformed: no bill row.
		`<table class="mini-data-table"><tr id="other"><td>x</td></tr></table>`,
		// Malformed: too few cells.
		`<table class="mini-data-table"><tr id="billH9999"><td><a href="/x/H9999">H9999</a></td></tr></table>`,
	)

	bills, err := ParseListing(strings.NewReader(page), "https://legislature.example.gov")
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}

	if len(bills) != 2 {
		t.Fatalf("got %d bills, want 2", len(bills))
	}

	b := bills[0]
	if b.Number != "H0001" {
		t.Errorf("Number = %q, want H0001", b.Number)
	}
	if b.Title != "An act relating to water rights" {
		t.Errorf("Title = %q", b.Title)
	}
	if b.Status != "Introduced" {
		t.Errorf("Status = %q", b.Status)
	}
	if b.DetailLink != "/sessioninfo/2026/legislation/H0001" {
		t.Errorf("DetailLink = %q", b.DetailLink)
	}
	want := "https://legislature.example.gov/wp-content/uploads/sessioninfo/2026/legislation/H0001.pdf"
	if b.PDFURL != want {
		t.Errorf("PDFURL = %q, want %q", b.PDFURL, want)
	}

	if bills[1].Number != "S1042" {
		t.Errorf("second bill Number = %q, want S1042", bills[1].Number)
	}
}

func TestParseListingSkipsChromeTables(t *testing.T) {
	// Only two tables on the page: both are chrome and must be skipped even
	// if they contain bill-shaped rows.
	page := "<html><body>" +
		billTable("H0001", "t", "s") + billTable("H0002", "t", "s") +
		"</body></html>"

	bills, err := ParseListing(strings.NewReader(page), "https://x")
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("got %d bills, want 0", len(bills))
	}
}

func TestParseListingEmptyPage(t *testing.T) {
	bills, err := ParseListing(strings.NewReader(listingPage()), "https://x")
	if err != nil {
		t.Fatalf("ParseListing: %v", err)
	}
	if len(bills) != 0 {
		t.Errorf("got %d bills, want 0", len(bills))
	}
}

func TestParseDetail(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		want    string
		wantErr bool
	}{
		{
			name: "sponsor with by prefix",
			html: `<table class="bill-table"><tr><td>H0001</td><td>title</td><td> by Jane Doe </td></tr></table>`,
			want: "Jane Doe",
		},
		{
			name: "sponsor without prefix",
			html: `<table class="bill-table"><tr><td>H0001</td><td>title</td><td>WAYS AND MEANS</td></tr></table>`,
			want: "WAYS AND MEANS",
		},
		{
			name:    "missing sponsor cell",
			html:    `<table class="bill-table"><tr><td>H0001</td></tr></table>`,
			wantErr: true,
		},
		{
			name:    "no bill table",
			html:    `<p>nothing here</p>`,
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseDetail(strings.NewReader(tt.html))
			if tt.wantErr {
				if err == nil {
					t.Fatalf("ParseDetail = %q, want error", got)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseDetail: %v", err)
			}
			if got != tt.want {
				t.Errorf("ParseDetail = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPDFURL(t *testing.T) {
	got := PDFURL("https://x", "/sessioninfo/2026/legislation/S1042/")
	want := "https://x/wp-content/uploads/sessioninfo/2026/legislation/S1042.pdf"
	if got != want {
		t.Errorf("PDFURL = %q, want %q", got, want)
	}
}
