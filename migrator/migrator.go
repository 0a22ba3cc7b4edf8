// Package migrator drives a single migration run: a reader goroutine
// decodes the source file into lines, a pool of worker goroutines maps
// each line onto a destination row and dedupes it, a pool of writer
// goroutines writes rows to the configured internal/sink.Sink, and a
// checkpointer goroutine periodically persists progress.
package migrator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/checkpoint"
	"github.com/dselans/gzmigrate/checkpoint/types"
	"github.com/dselans/gzmigrate/config"
	"github.com/dselans/gzmigrate/internal/status"
	"github.com/dselans/gzmigrate/internal/trace"
	"github.com/dselans/gzmigrate/validate"
)

// ReadJob is one source line, handed from the reader to a worker.
type ReadJob struct {
	Offset int64
	Line   string
}

// WriterJob is a row ready to be written, handed from a worker to a writer.
type WriterJob struct {
	Offset  int64
	Mapping string
	Fields  map[string]interface{}
}

// CheckpointJob records that everything up to Offset has been durably
// written, handed from a writer to the checkpointer.
type CheckpointJob struct {
	Offset   int64
	WorkerID int
}

type Migrator struct {
	cfg *config.Config
	log *logrus.Entry
	cp  *types.Checkpoint

	checksums   map[string]struct{}
	checksumsMu sync.Mutex

	last time.Time

	status *status.Server
}

// SetStatusServer attaches a status.Server that read/write/skip counts
// are reported to as the migration progresses. Optional; nil is safe.
func (m *Migrator) SetStatusServer(s *status.Server) {
	m.status = s
}

func New(cfg *config.Config) (*Migrator, error) {
	if err := config.Validate(cfg); err != nil {
		return nil, errors.Wrap(err, "error validating config")
	}

	// Load checkpoint (or create if it doesn't exist)
	cp, err := checkpoint.Load(cfg.TOML.Config.CheckpointFile, cfg.TOML.Source.File, cfg.TOML.Source.FileType)
	if err != nil {
		return nil, errors.Wrap(err, "unable to load checkpoint file")
	}

	if cfg.CLI.DisableResume {
		cp.IndexOffset = 0
	}

	if err := validate.Checkpoint(cp); err != nil {
		return nil, errors.Wrap(err, "invalid checkpoint")
	}

	return &Migrator{
		cfg:       cfg,
		cp:        cp,
		log:       logrus.WithField("pkg", "migrator"),
		checksums: make(map[string]struct{}),
	}, nil
}

func (m *Migrator) Run(shutdownCtx context.Context) error {
	span, shutdownCtx := trace.StartSpan(shutdownCtx, "migrator.Run")
	defer span.Finish()

	numWorkers := m.cfg.TOML.Config.NumProcessors
	numWriters := m.cfg.TOML.Config.NumWriters
	if numWriters == 0 {
		numWriters = 1
	}

	wg := &sync.WaitGroup{}
	errCh := make(chan error, numWorkers+numWriters+2)

	readCh := make(chan *ReadJob, numWorkers)
	writeCh := make(chan *WriterJob, numWorkers)

	cpWg := &sync.WaitGroup{}
	cpCtx, cpCancel := context.WithCancel(context.Background())
	cpCh := make(chan *CheckpointJob, 1000)

	for i := 0; i < numWorkers; i++ {
		wg.Add(1)
		go func(id int) {
			m.log.Debugf("worker %d start", id)
			defer m.log.Debugf("worker %d exit", id)
			defer wg.Done()

			if err := m.runWorker(shutdownCtx, id, readCh, writeCh); err != nil {
				errCh <- errors.Wrapf(err, "error in worker %d", id)
			}
		}(i)
	}

	writerWg := &sync.WaitGroup{}
	for i := 0; i < numWriters; i++ {
		writerWg.Add(1)
		go func(id int) {
			m.log.Debugf("writer %d start", id)
			defer m.log.Debugf("writer %d exit", id)
			defer writerWg.Done()

			if err := m.runWriter(shutdownCtx, id, writeCh, cpCh); err != nil {
				errCh <- errors.Wrapf(err, "error in writer %d", id)
			}
		}(i)
	}

	go func() {
		m.log.Debug("reader start")
		defer m.log.Debug("reader exit")
		defer close(readCh)

		if err := m.runReader(shutdownCtx, readCh); err != nil {
			errCh <- errors.Wrap(err, "error in reader")
		}
	}()

	go func() {
		m.log.Debug("checkpointer start")
		defer m.log.Debug("checkpointer exit")

		cpWg.Add(1)
		defer cpWg.Done()

		if err := m.runCheckpointer(cpCtx, cpCh); err != nil {
			errCh <- errors.Wrap(err, "error in checkpointer")
		}
	}()

	select {
	case <-shutdownCtx.Done():
		m.log.Debug("received context done, waiting for workers to stop")
		return m.waitWorkers(wg, writerWg, cpWg, cpCancel)
	case err := <-errCh:
		cpCancel()

		if err != nil {
			return fmt.Errorf("received error: %v", err)
		}

		m.log.Debug("migrator run completed")
		return m.waitWorkers(wg, writerWg, cpWg, cpCancel)
	}
}

func (m *Migrator) waitWorkers(wg, writerWg, cpWg *sync.WaitGroup, cpCancel context.CancelFunc) error {
	exitCh := make(chan bool, 1)

	go func() {
		wg.Wait()
		writerWg.Wait()
		exitCh <- true
	}()

	select {
	case <-exitCh:
		m.log.Debug("workers have exited successfully, stopping checkpointer")
		cpCancel()
		cpWg.Wait() // TODO: This needs a timeout as well

		return nil
	case <-time.After(5 * time.Second):
		m.log.Warn("timed out waiting for workers and/or checkpointer to exit")
		return fmt.Errorf("timed out waiting for workers and/or checkpointer to exit")
	}
}
