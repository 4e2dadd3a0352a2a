// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package selector

import (
	"go.amzn.com/lambdalogs/lambda/model"
)

// Select returns the streams whose creation time falls inside w, in input order.
// The window gates whole streams: events of a selected stream are not checked
// against it. An inverted window is rejected before any stream is examined.
func Select(streams []model.LogStream, w model.Window) ([]model.LogStream, error) {
	if err := w.Validate(); err != nil {
		return nil, err
	}

	selected := make([]model.LogStream, 0, len(streams))
	for _, s := range streams {
		if w.Contains(s.CreationTime) {
			selected = append(selected, s)
		}
	}
	return selected, nil
}
