// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"

	"go.amzn.com/lambdalogs/lambda/model"
)

// typecheck interface compliance
var _ Client = (*SDKClient)(nil)

// CloudWatchLogsAPI is the subset of the CloudWatch Logs API the SDK client needs.
type CloudWatchLogsAPI interface {
	cloudwatchlogs.DescribeLogStreamsAPIClient
	GetLogEvents(ctx context.Context, params *cloudwatchlogs.GetLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.GetLogEventsOutput, error)
}

// APIFactory builds an API client for a credential profile.
type APIFactory func(ctx context.Context, profile string) (CloudWatchLogsAPI, error)

// SDKClient talks to CloudWatch Logs through the AWS SDK. One API client is built
// per profile and reused across concurrent calls.
type SDKClient struct {
	factory APIFactory

	mu      sync.Mutex
	clients map[string]CloudWatchLogsAPI
}

// NewSDKClient returns a client loading the shared AWS configuration, optionally pinned to region.
func NewSDKClient(region string) *SDKClient {
	return NewSDKClientWithFactory(func(ctx context.Context, profile string) (CloudWatchLogsAPI, error) {
		var opts []func(*config.LoadOptions) error
		if profile != "" {
			opts = append(opts, config.WithSharedConfigProfile(profile))
		}
		if region != "" {
			opts = append(opts, config.WithRegion(region))
		}
		cfg, err := config.LoadDefaultConfig(ctx, opts...)
		if err != nil {
			return nil, fmt.Errorf("could not load aws config for profile %q: %w", profile, err)
		}
		return cloudwatchlogs.NewFromConfig(cfg), nil
	})
}

func NewSDKClientWithFactory(factory APIFactory) *SDKClient {
	return &SDKClient{
		factory: factory,
		clients: make(map[string]CloudWatchLogsAPI),
	}
}

func (c *SDKClient) api(ctx context.Context, profile string) (CloudWatchLogsAPI, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if api, ok := c.clients[profile]; ok {
		return api, nil
	}
	api, err := c.factory(ctx, profile)
	if err != nil {
		return nil, err
	}
	c.clients[profile] = api
	return api, nil
}

func (c *SDKClient) DescribeLogStreams(ctx context.Context, groupName, profile string) ([]model.LogStream, error) {
	api, err := c.api(ctx, profile)
	if err != nil {
		return nil, err
	}

	var streams []model.LogStream
	paginator := cloudwatchlogs.NewDescribeLogStreamsPaginator(api, &cloudwatchlogs.DescribeLogStreamsInput{
		LogGroupName: aws.String(groupName),
	})
	for paginator.HasMorePages() {
		page, err := paginator.NextPage(ctx)
		if err != nil {
			return nil, fmt.Errorf("describe log streams of %s: %w", groupName, err)
		}
		for _, s := range page.LogStreams {
			if s.LogStreamName == nil {
				return nil, fmt.Errorf("describe log streams of %s: stream without a name", groupName)
			}
			streams = append(streams, model.LogStream{
				Name:         aws.ToString(s.LogStreamName),
				CreationTime: aws.ToInt64(s.CreationTime),
			})
		}
	}
	return streams, nil
}

// GetLogEvents pages forward from the head of the stream. CloudWatch signals the
// end of a stream by returning the forward token it was given.
func (c *SDKClient) GetLogEvents(ctx context.Context, groupName, streamName, profile string) ([]model.LogEvent, error) {
	api, err := c.api(ctx, profile)
	if err != nil {
		return nil, err
	}

	var (
		events []model.LogEvent
		token  *string
	)
	for {
		out, err := api.GetLogEvents(ctx, &cloudwatchlogs.GetLogEventsInput{
			LogGroupName:  aws.String(groupName),
			LogStreamName: aws.String(streamName),
			StartFromHead: aws.Bool(true),
			NextToken:     token,
		})
		if err != nil {
			return nil, fmt.Errorf("get log events of %s: %w", streamName, err)
		}
		for _, e := range out.Events {
			events = append(events, model.LogEvent{
				Timestamp: aws.ToInt64(e.Timestamp),
				Message:   aws.ToString(e.Message),
			})
		}
		if out.NextForwardToken == nil || (token != nil && *token == *out.NextForwardToken) {
			return events, nil
		}
		token = out.NextForwardToken
	}
}
