package migrator

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/internal/trace"
)

// runCheckpointer is responsible for writing checkpoints to disk.
//
// NOTE: This is a custom ctx that is created by Run() - Run cancels it once
// all workers and writers have exited, or at once when a stage reports an
// error.
func (m *Migrator) runCheckpointer(ctx context.Context, cpChan <-chan *CheckpointJob) error {
	llog := m.log.WithFields(logrus.Fields{
		"method": "runCheckpointer",
	})

	llog.Debug("start")
	defer llog.Debug("exit")

	var numSaved, numSkipped int

MAIN:
	for {
		select {
		case <-ctx.Done():
			llog.Debug("received shutdown signal")
			break MAIN
		case cp, ok := <-cpChan:
			if !ok {
				llog.Debug("checkpoint channel closed - exiting checkpointer")
				break MAIN
			}

			llog.Debugf("received checkpoint at offset '%v' worker id '%v'", cp.Offset, cp.WorkerID)

			saved, err := m.saveCheckpoint(ctx, cp)
			if err != nil {
				llog.Errorf("error saving checkpoint for offset '%v' worker id '%d': %v", cp.Offset, cp.WorkerID, err)
				continue
			}
			if saved {
				numSaved++
			} else {
				numSkipped++
			}
		}
	}

	llog.Debugf("saved '%d' checkpoints, skipped '%d'", numSaved, numSkipped)

	return nil
}

// saveCheckpoint persists cp to disk, subject to disable_checkpointing and
// checkpoint_interval throttling. The bool return reports whether a save
// actually happened, purely so the caller can keep a saved-vs-skipped tally.
func (m *Migrator) saveCheckpoint(ctx context.Context, cp *CheckpointJob) (bool, error) {
	llog := m.log.WithFields(logrus.Fields{
		"method": "saveCheckpoint",
	})

	if m.cfg.TOML.Config.DisableCheckpointing {
		return false, nil
	}

	// Skip checkpoint if it's NOT zero/unset AND we haven't passed CheckpointInterval
	if !m.last.IsZero() && m.last.Add(time.Duration(m.cfg.TOML.Config.CheckpointInterval)).After(time.Now()) {
		llog.Debugf("skipping checkpoint save, last save was %v ago", time.Since(m.last))
		return false, nil
	}

	llog.Debugf("saving checkpoint to '%s'", m.cfg.TOML.Config.CheckpointFile)

	span, _ := trace.StartSpan(ctx, "migrator.saveCheckpoint")

	// Update checkpoint
	m.cp.Lock()
	m.cp.IndexOffset = cp.Offset
	m.cp.LastUpdated = time.Now()
	m.cp.Unlock()

	// Save checkpoint to disk
	err := m.cp.Save(m.cfg.TOML.Config.CheckpointFile)
	trace.FinishWithError(span, err)
	if err != nil {
		return false, errors.Wrap(err, "unable to save checkpoint")
	}

	// Note that a checkpoint save has occurred
	m.last = time.Now()

	return true, nil
}
