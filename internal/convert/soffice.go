// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package convert

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/jmreed/billwatch/internal/container"
)

const imageSoffice = "soffice-docx:latest"

// SofficeConverter converts PDFs by piping them through a LibreOffice
// container image that reads a PDF on stdin and writes the DOCX to stdout.
// It depends on a container.Runtime (docker or podman) injected at
// construction time, and needs no external credential.
type SofficeConverter struct {
	runtime container.Runtime
}

// NewSofficeConverter creates a converter that uses the given container
// runtime. It verifies that the soffice image exists locally before
// returning.
func NewSofficeConverter(rt container.Runtime) (*SofficeConverter, error) {
	if err := rt.ImageExists(imageSoffice); err != nil {
		return nil, fmt.Errorf("soffice image not available in %s: %w", rt.Name(), err)
	}
	return &SofficeConverter{runtime: rt}, nil
}

// ToDocx reads the PDF at pdfPath, pipes it through the soffice container,
// and returns the resulting DOCX bytes.
func (s *SofficeConverter) ToDocx(ctx context.Context, pdfPath string) ([]byte, error) {
	f, err := os.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening PDF %s: %w", pdfPath, err)
	}
	defer f.Close()

	var out bytes.Buffer
	if err := s.runtime.Run(imageSoffice, f, &out); err != nil {
		return nil, fmt.Errorf("converting %s with soffice: %w", pdfPath, err)
	}

	if out.Len() == 0 {
		return nil, fmt.Errorf("soffice produced empty output for %s", pdfPath)
	}
	return out.Bytes(), nil
}
