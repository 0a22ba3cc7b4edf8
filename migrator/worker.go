package migrator

import (
	"context"
	"crypto/sha256"
	"fmt"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

func (m *Migrator) runWorker(
	shutdownCtx context.Context,
	id int,
	readCh <-chan *ReadJob,
	writeCh chan<- *WriterJob,
) error {
	llog := m.log.WithFields(logrus.Fields{
		"method": "runWorker",
		"id":     id,
	})

	llog.Debug("start")
	defer llog.Debug("exit")

	var numProcessed int

MAIN:
	for {
		select {
		case <-shutdownCtx.Done():
			llog.Debug("received shutdown signal")
			break MAIN
		case job, open := <-readCh:
			if !open {
				llog.Debug("read channel closed - exiting worker")
				break MAIN
			}

			llog.Debugf("received job at offset '%v'", job.Offset)

			jobs, err := m.processJob(job)
			if err != nil {
				if errors.Is(err, errDuplicateRow) {
					llog.Debugf("skipping duplicate row at offset '%d'", job.Offset)
					if m.status != nil {
						m.status.RecordSkipped()
					}
					continue
				}
				return errors.Wrap(err, "error processing job")
			}

			for _, wj := range jobs {
				writeCh <- wj
			}

			numProcessed++
		}
	}

	llog.Debugf("handled '%d' jobs", numProcessed)

	return nil
}

var errDuplicateRow = errors.New("row already seen")

// processJob maps one source line onto zero or more WriterJobs, one per
// configured destination mapping whose required source fields are
// present. A line is deduped by the sha256 of its raw bytes before any
// mapping is applied, so a dupe drops all of its would-be WriterJobs.
func (m *Migrator) processJob(j *ReadJob) ([]*WriterJob, error) {
	llog := m.log.WithFields(logrus.Fields{
		"method": "processJob",
	})

	llog.Debugf("processing job at offset '%v'", j.Offset)

	checksum := fmt.Sprintf("%x", sha256.Sum256([]byte(j.Line)))

	if !m.cfg.TOML.Config.DisableDupecheck {
		m.checksumsMu.Lock()
		_, seen := m.checksums[checksum]
		if !seen {
			m.checksums[checksum] = struct{}{}
		}
		m.checksumsMu.Unlock()

		if seen {
			return nil, errDuplicateRow
		}
	}

	src, err := parseLine(m.cfg.TOML.Source.FileContents, j.Line)
	if err != nil {
		return nil, errors.Wrap(err, "unable to parse source line")
	}

	jobs := make([]*WriterJob, 0, len(m.cfg.TOML.Mapping.Mapping))
	for name, entries := range m.cfg.TOML.Mapping.Mapping {
		missingRequired := false
		for _, e := range entries {
			if _, ok := src[e.Src]; e.Required && !ok {
				missingRequired = true
				break
			}
		}
		if missingRequired {
			continue
		}

		dst, err := applyMapping(src, entries)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to apply mapping '%s'", name)
		}

		jobs = append(jobs, &WriterJob{
			Offset:  j.Offset,
			Mapping: name,
			Fields:  dst,
		})
	}

	return jobs, nil
}
