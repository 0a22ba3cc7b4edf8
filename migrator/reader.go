package migrator

import (
	"bufio"
	"context"
	"io"
	"os"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/dselans/gzmigrate/internal/gzip"
)

func (m *Migrator) runReader(shutdownCtx context.Context, readCh chan<- *ReadJob) error {
	llog := m.log.WithFields(logrus.Fields{
		"method": "runReader",
	})
	llog.Debug("start")
	defer llog.Debug("exit")

	f, err := os.Open(m.cfg.TOML.Source.File)
	if err != nil {
		return errors.Wrap(err, "unable to open source file")
	}
	defer f.Close()

	var r io.Reader

	switch m.cfg.TOML.Source.FileType {
	case "gzip":
		ir := gzip.NewIndexedReader(f, m.cp.Index)
		if m.cp.IndexOffset > 0 {
			if err := ir.Seek(m.cp.IndexOffset); err != nil {
				return errors.Wrap(err, "unable to seek to checkpoint offset")
			}
		}
		r = ir
	case "plain":
		if m.cp.IndexOffset > 0 {
			if _, err := f.Seek(m.cp.IndexOffset, io.SeekStart); err != nil {
				return errors.Wrap(err, "unable to seek to checkpoint offset")
			}
		}
		r = f
	default:
		return errors.Errorf("unsupported source.file_type '%s'", m.cfg.TOML.Source.FileType)
	}

	scanner := bufio.NewScanner(r)

	offset := m.cp.IndexOffset
	numRead := 0

MAIN:
	for scanner.Scan() {
		select {
		case <-shutdownCtx.Done():
			llog.Debug("received shutdown signal")
			break MAIN
		default:
			line := scanner.Text()
			offset += int64(len(line)) + 1

			llog.Debugf("sending job at offset: %d", offset)
			readCh <- &ReadJob{
				Offset: offset,
				Line:   line,
			}

			if m.status != nil {
				m.status.RecordRead()
			}

			numRead++
		}
	}

	if err := scanner.Err(); err != nil {
		return errors.Wrap(err, "error scanning source")
	}

	llog.Debugf("read '%d' lines", numRead)

	return nil
}
