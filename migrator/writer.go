package migrator

import (
	"context"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/internal/sink"
	"github.com/dselans/gzmigrate/internal/trace"
)

func (m *Migrator) runWriter(shutdownCtx context.Context, id int, writeCh <-chan *WriterJob, cpChan chan<- *CheckpointJob) error {
	llog := m.log.WithFields(logrus.Fields{
		"method": "runWriter",
		"id":     id,
	})

	llog.Debug("start")
	defer llog.Debug("exit")

	s, err := sink.New(m.cfg.TOML.Destination.Type, m.cfg.TOML.Destination.DSN)
	if err != nil {
		return errors.Wrap(err, "error creating destination sink")
	}
	defer s.Close()

	var numWritten int

MAIN:
	for {
		select {
		case <-shutdownCtx.Done():
			llog.Debug("received shutdown signal")
			break MAIN
		case job, open := <-writeCh:
			if !open {
				llog.Debug("writer channel closed - exiting writer")
				break MAIN
			}

			row := &sink.Row{
				Mapping: job.Mapping,
				Fields:  job.Fields,
				Offset:  job.Offset,
			}

			span, spanCtx := trace.StartSpan(shutdownCtx, "migrator.writeRow")
			err := s.Write(spanCtx, row)
			trace.FinishWithError(span, err)
			if err != nil {
				llog.Errorf("error writing job: %v", err)
				return errors.Wrap(err, "error writing job")
			}

			cpChan <- &CheckpointJob{
				Offset:   job.Offset,
				WorkerID: id,
			}

			if m.status != nil {
				m.status.RecordWritten(job.Offset)
			}

			numWritten++
		}
	}

	llog.Debugf("handled '%d' jobs", numWritten)

	return nil
}
