// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"context"
	"sync"

	"github.com/hashicorp/go-multierror"
	"golang.org/x/sync/errgroup"
)

// DefaultLimit caps concurrent tasks when no limit is configured.
const DefaultLimit = 10

// Task is one unit of work, identified by its index.
type Task func(ctx context.Context, i int) error

// Run calls task for every index in [0, n) on at most limit goroutines and returns once
// every task has settled. A failing task never cancels its siblings; failures are
// collected in completion order. The result is nil when every task succeeded.
func Run(ctx context.Context, limit, n int, task Task) *multierror.Error {
	if limit <= 0 {
		limit = DefaultLimit
	}

	var (
		g    errgroup.Group
		mu   sync.Mutex
		errs *multierror.Error
	)
	g.SetLimit(limit)

	for i := 0; i < n; i++ {
		i := i
		g.Go(func() error {
			if err := task(ctx, i); err != nil {
				mu.Lock()
				errs = multierror.Append(errs, err)
				mu.Unlock()
			}
			return nil
		})
	}

	_ = g.Wait()
	return errs
}

// Errors flattens a possibly nil result into a slice.
func Errors(errs *multierror.Error) []error {
	if errs == nil {
		return nil
	}
	return errs.Errors
}
