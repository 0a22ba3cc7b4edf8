// Package types holds the Checkpoint type shared between the checkpoint
// package (which loads and persists it) and validate (which checks it),
// kept separate to avoid an import cycle between the two.
package types

import (
	"encoding/json"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/dselans/gzmigrate/internal/gzip"
)

// Checkpoint tracks migration progress against a single source file: how
// far into the uncompressed stream we've read, and the gzip member index
// needed to resume without decoding from byte zero.
type Checkpoint struct {
	IndexFile   string     `json:"index_file"`
	IndexOffset int64      `json:"index_offset"`
	SourceFile  string     `json:"source_file"`
	StartedAt   time.Time  `json:"started_at"`
	LastUpdated time.Time  `json:"last_updated"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`

	// Not marshalled; loaded separately from IndexFile.
	Index gzip.Index `json:"-"`

	*sync.Mutex `json:"-"`
}

// Save writes the checkpoint's JSON fields to checkpointFile. The gzip
// index is persisted separately by the checkpoint package.
func (cp *Checkpoint) Save(checkpointFile string) error {
	cp.Lock()
	defer cp.Unlock()

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return errors.Wrap(err, "unable to marshal checkpoint file")
	}

	// TODO: write to a temp file and rename to avoid a truncated file on crash
	if err := os.WriteFile(checkpointFile, data, 0644); err != nil {
		return errors.Wrap(err, "unable to write checkpoint file")
	}

	return nil
}
