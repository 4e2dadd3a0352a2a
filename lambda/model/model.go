// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package model

const logGroupPrefix = "/aws/lambda/"

// LogGroupName returns the CloudWatch log group a Lambda function writes to.
func LogGroupName(functionName string) string {
	return logGroupPrefix + functionName
}

// LogStream identifies one ordered sequence of events in a log group.
// CreationTime is in epoch milliseconds.
type LogStream struct {
	Name         string
	CreationTime int64
}

// LogEvent is one timestamped message within a stream.
type LogEvent struct {
	Timestamp int64
	Message   string
}

// LogRecord holds the events retrieved for a single stream. StreamTimestamp is the
// stream's creation time and names the exported file.
type LogRecord struct {
	StreamTimestamp int64
	StreamName      string
	Events          []LogEvent
}
