// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package logging

import (
	"context"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

type loggerKey int

const (
	ctxLoggerKey loggerKey = iota
)

const (
	RunIDField    = "runID"
	FunctionField = "function"
	StreamField   = "stream"
	FileField     = "file"
)

// WithFields returns a context whose logger carries the given fields in addition to the existing ones.
func WithFields(ctx context.Context, fields logrus.Fields) context.Context {
	entry := FromContext(ctx).WithFields(fields)
	return context.WithValue(ctx, ctxLoggerKey, entry)
}

// WithRunID tags every log line of a run with a fresh identifier.
func WithRunID(ctx context.Context) context.Context {
	return WithFields(ctx, logrus.Fields{RunIDField: uuid.New().String()})
}

// FromContext returns the logger attached to ctx, or the standard logger.
func FromContext(ctx context.Context) *logrus.Entry {
	if entry, ok := ctx.Value(ctxLoggerKey).(*logrus.Entry); ok {
		return entry
	}
	return logrus.NewEntry(logrus.StandardLogger())
}
