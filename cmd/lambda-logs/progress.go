// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"fmt"
	"io"

	progressbar "github.com/schollz/progressbar/v3"
	"go.amzn.com/lambdalogs/lambda/fetcher"
)

// newProgressReporter draws the fetch phase on w. The fetcher serializes calls,
// so the bar is built lazily once the total is known.
func newProgressReporter(w io.Writer) fetcher.ProgressFunc {
	var bar *progressbar.ProgressBar
	return func(completed, total int) {
		if bar == nil {
			bar = progressbar.NewOptions(total,
				progressbar.OptionSetWriter(w),
				progressbar.OptionShowCount(),
				progressbar.OptionSetDescription("Fetching events"),
				progressbar.OptionOnCompletion(func() { fmt.Fprintln(w) }),
			)
		}
		_ = bar.Set(completed)
	}
}
