// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

import (
	"fmt"

	"go.amzn.com/lambdalogs/lambda/logerror"
)

// Window is an optional, inclusive [Start, End] range in epoch milliseconds.
// A nil bound is unset.
type Window struct {
	Start *int64
	End   *int64
}

// NewWindow builds a window from optional bounds.
func NewWindow(start, end *int64) Window {
	return Window{Start: start, End: end}
}

// Bounded reports whether at least one bound is set.
func (w Window) Bounded() bool {
	return w.Start != nil || w.End != nil
}

// Validate fails when both bounds are set and End precedes Start.
func (w Window) Validate() error {
	if w.Start != nil && w.End != nil && *w.End < *w.Start {
		return logerror.New(logerror.InvalidTimeRange, "",
			fmt.Errorf("end %d is before start %d", *w.End, *w.Start))
	}
	return nil
}

// Contains reports whether ms falls within the window. An unbounded window contains everything.
func (w Window) Contains(ms int64) bool {
	if w.Start != nil && ms < *w.Start {
		return false
	}
	if w.End != nil && ms > *w.End {
		return false
	}
	return true
}
