// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package mocksource

import (
	"context"

	"github.com/stretchr/testify/mock"

	"go.amzn.com/lambdalogs/lambda/model"
)

// MockSource is a log source client used in unit tests
type MockSource struct{ mock.Mock }

func (m *MockSource) DescribeLogStreams(ctx context.Context, groupName, profile string) ([]model.LogStream, error) {
	args := m.Called(ctx, groupName, profile)
	streams, _ := args.Get(0).([]model.LogStream)
	return streams, args.Error(1)
}

func (m *MockSource) GetLogEvents(ctx context.Context, groupName, streamName, profile string) ([]model.LogEvent, error) {
	args := m.Called(ctx, groupName, streamName, profile)
	events, _ := args.Get(0).([]model.LogEvent)
	return events, args.Error(1)
}
