// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package export

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"github.com/hashicorp/go-multierror"
	"github.com/spf13/afero"

	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/logging"
	"go.amzn.com/lambdalogs/lambda/model"
	"go.amzn.com/lambdalogs/lambda/workerpool"
)

const (
	dirPerm  os.FileMode = 0o755
	filePerm os.FileMode = 0o644
)

// Exporter writes one csv file per record under <outputFolder>/<functionName>.
type Exporter struct {
	fs          afero.Fs
	location    *time.Location
	concurrency int
}

type Option func(*Exporter)

func WithFs(fs afero.Fs) Option {
	return func(e *Exporter) { e.fs = fs }
}

// WithLocation sets the time zone of file names and rows. Defaults to the local zone.
func WithLocation(loc *time.Location) Option {
	return func(e *Exporter) { e.location = loc }
}

func WithConcurrency(n int) Option {
	return func(e *Exporter) { e.concurrency = n }
}

func New(opts ...Option) *Exporter {
	e := &Exporter{
		fs:          afero.NewOsFs(),
		location:    time.Local,
		concurrency: workerpool.DefaultLimit,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// OutputDir is the directory files of functionName are written to.
func OutputDir(outputFolder, functionName string) string {
	return filepath.Join(outputFolder, functionName)
}

// Export writes every record concurrently and returns the sorted paths written once
// every write has settled. A failed write is reported and leaves the others alone.
func (e *Exporter) Export(ctx context.Context, outputFolder, functionName string, records []model.LogRecord) ([]string, *multierror.Error) {
	dir := OutputDir(outputFolder, functionName)
	names := fileNames(records, e.location)

	var (
		mu      sync.Mutex
		written []string
	)
	errs := workerpool.Run(ctx, e.concurrency, len(records), func(ctx context.Context, i int) error {
		path := filepath.Join(dir, names[i])
		logger := logging.FromContext(ctx).WithField(logging.FileField, path)

		if err := e.write(ctx, dir, path, records[i].Events); err != nil {
			logger.WithError(err).Warn("Failed to write log file")
			return logerror.New(logerror.WriteFailure, path, err)
		}

		mu.Lock()
		written = append(written, path)
		mu.Unlock()
		logger.WithField("events", len(records[i].Events)).Debug("Wrote log file")
		return nil
	})

	sort.Strings(written)
	return written, errs
}

func (e *Exporter) write(ctx context.Context, dir, path string, events []model.LogEvent) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := e.fs.MkdirAll(dir, dirPerm); err != nil {
		return fmt.Errorf("could not create %s: %w", dir, err)
	}
	return afero.WriteFile(e.fs, path, Render(events, e.location), filePerm)
}
