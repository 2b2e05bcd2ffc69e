// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
)

// convertAPIBase is the ConvertAPI endpoint. Package-level var for test
// substitution.
var convertAPIBase = "https://v2.convertapi.com"

// ConvertAPIConverter converts PDFs through the hosted ConvertAPI service.
// It requires the convertapi-secret credential.
type ConvertAPIConverter struct {
	Secret string
	Client *http.Client
}

// convertAPIResponse is the JSON body returned by a conversion job.
type convertAPIResponse struct {
	Files []convertAPIFile `json:"Files"`
}

// convertAPIFile is one converted file with inline base64 content.
type convertAPIFile struct {
	FileName string `json:"FileName"`
	FileData string `json:"FileData"`
}

// ToDocx uploads the PDF and returns the converted DOCX bytes.
func (c *ConvertAPIConverter) ToDocx(ctx context.Context, pdfPath string) ([]byte, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("File", filepath.Base(pdfPath))
	if err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, fmt.Errorf("reading PDF %s: %w", pdfPath, err)
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building upload: %w", err)
	}

	url := fmt.Sprintf("%s/convert/pdf/to/docx?Secret=%s&StoreFile=false", convertAPIBase, c.Secret)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &body)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	client := c.Client
	if client == nil {
		client = http.DefaultClient
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("calling ConvertAPI: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("ConvertAPI returned %d: %s", resp.StatusCode, string(msg))
	}

	var cr convertAPIResponse
	if err := json.NewDecoder(resp.Body).Decode(&cr); err != nil {
		return nil, fmt.Errorf("decoding ConvertAPI response: %w", err)
	}
	if len(cr.Files) == 0 {
		return nil, fmt.Errorf("ConvertAPI returned no files for %s", pdfPath)
	}

	data, err := base64.StdEncoding.DecodeString(cr.Files[0].FileData)
	if err != nil {
		return nil, fmt.Errorf("decoding ConvertAPI file data: %w", err)
	}
	if len(data) == 0 {
		return nil, fmt.Errorf("ConvertAPI produced empty output for %s", pdfPath)
	}
	return data, nil
}
