// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.amzn.com/lambdalogs/lambda/aggregator"
	"go.amzn.com/lambdalogs/lambda/export"
	"go.amzn.com/lambdalogs/lambda/fetcher"
	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/logging"
	"go.amzn.com/lambdalogs/lambda/selector"
	"go.amzn.com/lambdalogs/lambda/source"
	"go.amzn.com/lambdalogs/lambda/workerpool"
)

// Result describes a run that completed, possibly with per-stream or per-file failures.
type Result struct {
	Discovered  int
	Selected    int
	Fetched     int
	Retained    int
	OutputDir   string
	Files       []string
	FetchErrors []error
	WriteErrors []error
}

// Pipeline exports the logs of one function: discover, select, fetch, filter, write.
type Pipeline struct {
	client      source.Client
	fs          afero.Fs
	location    *time.Location
	progress    fetcher.ProgressFunc
	fetcherOpts []fetcher.Option
}

type Option func(*Pipeline)

func WithFs(fs afero.Fs) Option {
	return func(p *Pipeline) { p.fs = fs }
}

func WithLocation(loc *time.Location) Option {
	return func(p *Pipeline) { p.location = loc }
}

func WithProgress(progress fetcher.ProgressFunc) Option {
	return func(p *Pipeline) { p.progress = progress }
}

// WithFetcherOptions passes extra options to the fetcher, applied last.
func WithFetcherOptions(opts ...fetcher.Option) Option {
	return func(p *Pipeline) { p.fetcherOpts = append(p.fetcherOpts, opts...) }
}

func New(client source.Client, opts ...Option) *Pipeline {
	p := &Pipeline{
		client:   client,
		fs:       afero.NewOsFs(),
		location: time.Local,
		progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Run executes one export. A returned error is fatal and means nothing was fetched
// or written; per-stream and per-file failures are reported in the Result.
func (p *Pipeline) Run(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	group := cfg.LogGroupName()
	ctx = logging.WithFields(ctx, logrus.Fields{logging.FunctionField: cfg.FunctionName})
	logger := logging.FromContext(ctx)

	logger.WithField("group", group).Info("Fetching log streams")
	streams, err := p.client.DescribeLogStreams(ctx, group, cfg.Profile)
	if err != nil {
		return nil, logerror.New(logerror.StreamDiscoveryFailure, group, err)
	}
	if len(streams) == 0 {
		return nil, logerror.New(logerror.NoStreamsFound, group, errors.New("no log streams found"))
	}

	selected, err := selector.Select(streams, cfg.Window)
	if err != nil {
		return nil, err
	}
	result := &Result{
		Discovered: len(streams),
		Selected:   len(selected),
		OutputDir:  export.OutputDir(cfg.outputFolder(), cfg.FunctionName),
	}

	logger.WithFields(logrus.Fields{"streams": len(streams), "selected": len(selected)}).Info("Fetching log events")
	fetchOpts := []fetcher.Option{
		fetcher.WithConcurrency(cfg.Concurrency),
		fetcher.WithProgress(p.progress),
		fetcher.WithRetries(cfg.FetchRetries),
	}
	if cfg.FetchTimeout > 0 {
		fetchOpts = append(fetchOpts, fetcher.WithTimeout(cfg.FetchTimeout))
	}
	collection, fetchErrs := fetcher.New(p.client, append(fetchOpts, p.fetcherOpts...)...).
		Fetch(ctx, group, cfg.Profile, selected)
	result.FetchErrors = workerpool.Errors(fetchErrs)
	result.Fetched = collection.Len()

	if cfg.ClipEvents {
		dropped := collection.ClipToWindow(cfg.Window)
		logger.WithField("dropped", dropped).Info("Dropped events outside the time window")
	}
	p.search(ctx, collection, cfg.SearchKeywords)
	records := collection.Records()
	result.Retained = len(records)

	logger.WithField("records", len(records)).Info("Writing csv files")
	exporter := export.New(
		export.WithFs(p.fs),
		export.WithLocation(p.location),
		export.WithConcurrency(cfg.Concurrency),
	)
	files, writeErrs := exporter.Export(ctx, cfg.outputFolder(), cfg.FunctionName, records)
	result.Files = files
	result.WriteErrors = workerpool.Errors(writeErrs)

	return result, nil
}

func (p *Pipeline) search(ctx context.Context, collection *aggregator.Collection, keywords []string) {
	keywords = aggregator.NormalizeKeywords(keywords)
	if len(keywords) == 0 {
		return
	}
	removed := collection.Search(keywords)
	logging.FromContext(ctx).WithFields(logrus.Fields{
		"keywords": keywords,
		"removed":  removed,
	}).Info("Filtered streams by keyword")
}
