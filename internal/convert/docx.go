// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"fmt"
	"html"
	"io"
	"strings"
)

// documentXML is the WordprocessingML main part inside a DOCX archive.
const documentXML = "word/document.xml"

// Minimal WordprocessingML model: paragraphs of runs, where each run may
// carry underline and strikethrough properties. Element names match by
// local name, so the w: namespace needs no declaration here.
type wordDocument struct {
	Body wordBody `xml:"body"`
}

type wordBody struct {
	Paragraphs []wordParagraph `xml:"p"`
}

type wordParagraph struct {
	Runs []wordRun `xml:"r"`
}

type wordRun struct {
	Props wordRunProps `xml:"rPr"`
	Texts []wordText   `xml:"t"`
}

type wordRunProps struct {
	Underline *wordToggle `xml:"u"`
	Strike    *wordToggle `xml:"strike"`
}

type wordToggle struct {
	Val string `xml:"val,attr"`
}

type wordText struct {
	Value string `xml:",chardata"`
}

// underlined reports whether the run property marks inserted text.
// An explicit val of "none" disables the underline.
func (p wordRunProps) underlined() bool {
	return p.Underline != nil && p.Underline.Val != "none"
}

// struck reports whether the run property marks deleted text. The strike
// element is a toggle: present means on unless val says otherwise.
func (p wordRunProps) struck() bool {
	if p.Strike == nil {
		return false
	}
	switch p.Strike.Val {
	case "false", "0", "none":
		return false
	}
	return true
}

// HTMLFromDocx renders the DOCX document as semantic HTML. Underline runs
// become <u> (inserted statutory text), strikethrough runs become <s>
// (deleted statutory text), and all text content is entity-escaped.
func HTMLFromDocx(docxData []byte) (string, error) {
	zr, err := zip.NewReader(bytes.NewReader(docxData), int64(len(docxData)))
	if err != nil {
		return "", fmt.Errorf("opening DOCX archive: %w", err)
	}

	var doc wordDocument
	found := false
	for _, f := range zr.File {
		if f.Name != documentXML {
			continue
		}
		rc, err := f.Open()
		if err != nil {
			return "", fmt.Errorf("opening %s: %w", documentXML, err)
		}
		data, err := io.ReadAll(rc)
		rc.Close()
		if err != nil {
			return "", fmt.Errorf("reading %s: %w", documentXML, err)
		}
		if err := xml.Unmarshal(data, &doc); err != nil {
			return "", fmt.Errorf("parsing %s: %w", documentXML, err)
		}
		found = true
		break
	}
	if !found {
		return "", fmt.Errorf("DOCX archive has no %s", documentXML)
	}

	var b strings.Builder
	for _, p := range doc.Body.Paragraphs {
		text := renderParagraph(p)
		if text == "" {
			continue
		}
		b.WriteString("<p>")
		b.WriteString(text)
		b.WriteString("</p>\n")
	}

	if b.Len() == 0 {
		return "", fmt.Errorf("DOCX document has no text content")
	}
	return b.String(), nil
}

func renderParagraph(p wordParagraph) string {
	var b strings.Builder
	for _, r := range p.Runs {
		var text strings.Builder
		for _, t := range r.Texts {
			text.WriteString(t.Value)
		}
		if text.Len() == 0 {
			continue
		}

		escaped := html.EscapeString(text.String())
		switch {
		case r.Props.struck():
			b.WriteString("<s>" + escaped + "</s>")
		case r.Props.underlined():
			b.WriteString("<u>" + escaped + "</u>")
		default:
			b.WriteString(escaped)
		}
	}
	return b.String()
}
