// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package dashboard

import (
	"os"
	"sync"
	"time"

	"github.com/jmreed/billwatch/internal/analyze"
	"github.com/jmreed/billwatch/pkg/types"
)

// loader memoizes the enriched stream so every page view does not re-parse
// the file. The cache is keyed by the file's modification time: when the
// analyzer rewrites the stream, the next request picks up the new contents.
type loader struct {
	path string

	mu      sync.Mutex
	modTime time.Time
	cached  []types.EnrichedBill
	valid   bool
}

func newLoader(dataDir, runID string) *loader {
	return &loader{path: analyze.EnrichedPath(dataDir, runID)}
}

// load returns the enriched bills, reading from disk only when the file
// changed since the last call. A missing file yields an empty slice.
func (l *loader) load() ([]types.EnrichedBill, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	info, err := os.Stat(l.path)
	if err != nil {
		if os.IsNotExist(err) {
			l.cached, l.modTime, l.valid = nil, time.Time{}, true
			return nil, nil
		}
		return nil, err
	}

	if l.valid && info.ModTime().Equal(l.modTime) {
		return l.cached, nil
	}

	bills, err := analyze.ReadEnriched(l.path)
	if err != nil {
		return nil, err
	}
	l.cached, l.modTime, l.valid = bills, info.ModTime(), true
	return bills, nil
}
