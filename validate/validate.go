// Package validate checks a loaded checkpoint before a migration run
// resumes from it. Destination mapping validation lives in config's own
// validateDestinationMappings; of this module's packages, this one
// imports only checkpoint/types.
package validate

import (
	"github.com/pkg/errors"

	"github.com/dselans/gzmigrate/checkpoint/types"
)

func Checkpoint(cp *types.Checkpoint) error {
	if cp == nil {
		return errors.New("checkpoint is nil")
	}

	if cp.SourceFile == "" {
		return errors.New("checkpoint.source_file cannot be empty")
	}

	if cp.IndexOffset < 0 {
		return errors.New("checkpoint.index_offset cannot be negative")
	}

	return nil
}

