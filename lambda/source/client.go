// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"

	"go.amzn.com/lambdalogs/lambda/model"
)

var (
	// ErrStreamNotFound is returned for a stream the source does not have.
	ErrStreamNotFound = errors.New("StreamNotFound")
	// ErrMalformedResponse is returned when a source answers with output that cannot be parsed.
	ErrMalformedResponse = errors.New("malformed response")
)

// Client reads streams and events from a log group. Profile names an already
// configured credential profile and may be empty.
type Client interface {
	// DescribeLogStreams returns every stream of the group.
	DescribeLogStreams(ctx context.Context, groupName, profile string) ([]model.LogStream, error)
	// GetLogEvents returns every event of one stream, oldest first.
	GetLogEvents(ctx context.Context, groupName, streamName, profile string) ([]model.LogEvent, error)
}

// Kind selects a Client implementation.
type Kind string

const (
	KindSDK     Kind = "sdk"
	KindCLI     Kind = "cli"
	KindArchive Kind = "archive"
)

// IsPermanent reports whether err would fail again on retry: the stream is
// missing or the source answered with garbage.
func IsPermanent(err error) bool {
	var notFound *types.ResourceNotFoundException
	return errors.Is(err, ErrStreamNotFound) ||
		errors.Is(err, ErrMalformedResponse) ||
		errors.As(err, &notFound)
}
