// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package workerpool

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRunCallsEveryTask(t *testing.T) {
	var calls int32
	seen := make([]int32, 20)

	errs := Run(context.Background(), 4, len(seen), func(ctx context.Context, i int) error {
		atomic.AddInt32(&calls, 1)
		atomic.AddInt32(&seen[i], 1)
		return nil
	})

	assert.Nil(t, errs)
	assert.Equal(t, int32(20), calls)
	for i := range seen {
		assert.Equal(t, int32(1), seen[i], "task %d", i)
	}
}

func TestRunIsolatesFailures(t *testing.T) {
	var completed int32

	errs := Run(context.Background(), 2, 5, func(ctx context.Context, i int) error {
		if i == 1 {
			return fmt.Errorf("task %d failed", i)
		}
		time.Sleep(5 * time.Millisecond)
		atomic.AddInt32(&completed, 1)
		return nil
	})

	require.NotNil(t, errs)
	assert.Len(t, Errors(errs), 1)
	assert.EqualError(t, errs.Errors[0], "task 1 failed")
	assert.Equal(t, int32(4), completed)
}

func TestRunRespectsLimit(t *testing.T) {
	var running, peak int32

	Run(context.Background(), 3, 12, func(ctx context.Context, i int) error {
		cur := atomic.AddInt32(&running, 1)
		for {
			old := atomic.LoadInt32(&peak)
			if cur <= old || atomic.CompareAndSwapInt32(&peak, old, cur) {
				break
			}
		}
		time.Sleep(2 * time.Millisecond)
		atomic.AddInt32(&running, -1)
		return nil
	})

	assert.LessOrEqual(t, peak, int32(3))
}

func TestRunCollectsAllFailures(t *testing.T) {
	boom := errors.New("boom")

	errs := Run(context.Background(), 0, 3, func(ctx context.Context, i int) error {
		return boom
	})

	assert.Len(t, Errors(errs), 3)
	assert.True(t, errors.Is(errs.ErrorOrNil(), boom))
}

func TestRunNoTasks(t *testing.T) {
	assert.Nil(t, Run(context.Background(), 1, 0, nil))
	assert.Nil(t, Errors(nil))
}
