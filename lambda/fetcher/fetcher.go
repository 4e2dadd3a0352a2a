// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package fetcher

import (
	"context"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/hashicorp/go-multierror"
	"github.com/sirupsen/logrus"

	"go.amzn.com/lambdalogs/lambda/aggregator"
	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/logging"
	"go.amzn.com/lambdalogs/lambda/model"
	"go.amzn.com/lambdalogs/lambda/source"
	"go.amzn.com/lambdalogs/lambda/workerpool"
)

const (
	DefaultTimeout = 5 * time.Minute
	DefaultRetries = 2
)

// ProgressFunc observes the fetch phase. completed increases by one per settled
// stream, successful or not.
type ProgressFunc func(completed, total int)

// Fetcher retrieves the events of many streams concurrently. A stream that cannot
// be read is skipped and reported; it never stops the others.
type Fetcher struct {
	client      source.Client
	concurrency int
	timeout     time.Duration
	retries     int
	newBackOff  func() backoff.BackOff
	progress    ProgressFunc
}

type Option func(*Fetcher)

func WithConcurrency(n int) Option {
	return func(f *Fetcher) { f.concurrency = n }
}

// WithTimeout bounds each stream's fetch, retries included.
func WithTimeout(d time.Duration) Option {
	return func(f *Fetcher) { f.timeout = d }
}

func WithRetries(n int) Option {
	return func(f *Fetcher) { f.retries = n }
}

func WithBackOff(newBackOff func() backoff.BackOff) Option {
	return func(f *Fetcher) { f.newBackOff = newBackOff }
}

func WithProgress(progress ProgressFunc) Option {
	return func(f *Fetcher) { f.progress = progress }
}

func New(client source.Client, opts ...Option) *Fetcher {
	f := &Fetcher{
		client:      client,
		concurrency: workerpool.DefaultLimit,
		timeout:     DefaultTimeout,
		retries:     DefaultRetries,
		newBackOff: func() backoff.BackOff {
			b := backoff.NewExponentialBackOff()
			b.InitialInterval = 500 * time.Millisecond
			return b
		},
		progress: func(int, int) {},
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Fetch reads every stream and returns the collected records along with the
// per-stream failures. It returns once every stream has settled.
func (f *Fetcher) Fetch(ctx context.Context, groupName, profile string, streams []model.LogStream) (*aggregator.Collection, *multierror.Error) {
	collection := aggregator.NewCollection()

	var (
		mu        sync.Mutex
		completed int
	)
	settled := func() {
		mu.Lock()
		defer mu.Unlock()
		completed++
		f.progress(completed, len(streams))
	}

	errs := workerpool.Run(ctx, f.concurrency, len(streams), func(ctx context.Context, i int) error {
		defer settled()

		stream := streams[i]
		logger := logging.FromContext(ctx).WithField(logging.StreamField, stream.Name)

		events, err := f.fetch(ctx, groupName, stream.Name, profile, logger)
		if err != nil {
			logger.WithError(err).Warn("Failed to fetch log events, skipping stream")
			return logerror.New(logerror.EventFetchFailure, stream.Name, err)
		}

		collection.Add(model.LogRecord{
			StreamTimestamp: stream.CreationTime,
			StreamName:      stream.Name,
			Events:          events,
		})
		logger.WithField("events", len(events)).Debug("Fetched log events")
		return nil
	})

	return collection, errs
}

func (f *Fetcher) fetch(ctx context.Context, groupName, streamName, profile string, logger *logrus.Entry) ([]model.LogEvent, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}

	var events []model.LogEvent
	op := func() error {
		var err error
		events, err = f.client.GetLogEvents(ctx, groupName, streamName, profile)
		if source.IsPermanent(err) {
			return backoff.Permanent(err)
		}
		return err
	}
	notify := func(err error, wait time.Duration) {
		logger.WithError(err).Debugf("Retrying in %s", wait)
	}

	retries := f.retries
	if retries < 0 {
		retries = 0
	}
	policy := backoff.WithContext(backoff.WithMaxRetries(f.newBackOff(), uint64(retries)), ctx)
	if err := backoff.RetryNotify(op, policy, notify); err != nil {
		return nil, err
	}
	return events, nil
}
