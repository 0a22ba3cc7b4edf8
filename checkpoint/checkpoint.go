// Package checkpoint loads and persists migration progress: a JSON file
// recording how far into the source we've read, plus a gob-encoded
// internal/gzip.Index sitting alongside it so a resumed run can seek to
// the nearest member boundary instead of re-decoding from byte zero.
package checkpoint

import (
	"encoding/json"
	"io"
	"os"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/checkpoint/types"
	"github.com/dselans/gzmigrate/internal/gzip"
)

const (
	IndexSuffix = ".index"
)

func Load(checkpointFile, sourceFile, sourceFileType string) (*types.Checkpoint, error) {
	startedAt := time.Now()
	logrus.Debugf("checkpoint loading started at '%s'", startedAt)

	defer func() {
		endedAt := time.Now()
		logrus.Debugf("checkpoint loading completed at '%s'", endedAt)
		logrus.Debugf("checkpoint loading took '%s'", endedAt.Sub(startedAt))
	}()

	var createCheckpoint bool

	// Check if checkpoint file exists; if it does not exist - create it,
	// otherwise, try to load it.
	if _, err := os.Stat(checkpointFile); err != nil {
		if os.IsNotExist(err) {
			createCheckpoint = true
		} else {
			return nil, errors.Wrap(err, "unable to stat checkpoint file")
		}
	}

	if createCheckpoint {
		logrus.Debugf("creating checkpoint file '%s'", checkpointFile)
		return create(checkpointFile, sourceFile, sourceFileType)
	}

	logrus.Debugf("loading checkpoint file '%s'", checkpointFile)
	return load(checkpointFile)
}

func load(checkpointFile string) (*types.Checkpoint, error) {
	data, err := os.ReadFile(checkpointFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to read checkpoint file")
	}

	cp := &types.Checkpoint{Mutex: &sync.Mutex{}}
	if err := json.Unmarshal(data, cp); err != nil {
		return nil, errors.Wrap(err, "unable to unmarshal checkpoint file")
	}

	indexFile, err := os.Open(cp.IndexFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open checkpoint index file")
	}
	defer indexFile.Close()

	index, err := gzip.LoadIndex(indexFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load gzip index")
	}
	cp.Index = index

	return cp, nil
}

func create(checkpointFile, sourceFile, sourceFileType string) (*types.Checkpoint, error) {
	index, err := generateIndex(sourceFileType, sourceFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to generate gzip index")
	}

	indexFilename := checkpointFile + IndexSuffix

	indexFile, err := os.Create(indexFilename)
	if err != nil {
		return nil, errors.Wrapf(err, "unable to create checkpoint index file %s", indexFilename)
	}
	defer indexFile.Close()

	if err := index.WriteTo(indexFile); err != nil {
		return nil, errors.Wrap(err, "error writing index to file")
	}

	cp := &types.Checkpoint{
		IndexFile:   indexFilename,
		IndexOffset: 0,
		SourceFile:  sourceFile,
		StartedAt:   time.Now(),
		LastUpdated: time.Now(),
		Index:       index,
		Mutex:       &sync.Mutex{},
	}

	data, err := json.MarshalIndent(cp, "", "  ")
	if err != nil {
		return nil, errors.Wrap(err, "unable to marshal checkpoint file")
	}

	if err := os.WriteFile(checkpointFile, data, 0644); err != nil {
		return nil, errors.Wrap(err, "unable to write checkpoint file")
	}

	return cp, nil
}

// generateIndex builds a gzip.Index by decoding sourceFile in full once,
// recording a Point at the start of every member. "plain" sources have
// no members to index; an empty Index is valid, and Seek on it restarts
// from the beginning of the source and decodes forward to the target.
func generateIndex(sourceFileType, sourceFile string) (gzip.Index, error) {
	if sourceFileType != "gzip" {
		return gzip.Index{}, nil
	}

	f, err := os.Open(sourceFile)
	if err != nil {
		return nil, errors.Wrap(err, "unable to open source file")
	}
	defer f.Close()

	ir := gzip.NewIndexedReader(f, nil)
	if _, err := io.Copy(io.Discard, ir); err != nil {
		return nil, errors.Wrap(err, "error reading through file to build index")
	}

	return ir.Index(), nil
}
