// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package pipeline

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"go.amzn.com/lambdalogs/lambda/logerror"
	"go.amzn.com/lambdalogs/lambda/model"
	"go.amzn.com/lambdalogs/lambda/testdata/mocksource"
)

const group = "/aws/lambda/f"

func ms(v int64) *int64 { return &v }

func newPipeline(src *mocksource.MockSource, fs afero.Fs) *Pipeline {
	return New(src, WithFs(fs), WithLocation(time.UTC))
}

func readLines(t *testing.T, fs afero.Fs, path string) []string {
	content, err := afero.ReadFile(fs, path)
	require.NoError(t, err)
	return strings.Split(string(content), "\n")
}

func TestRunExportsEveryStream(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "").Return([]model.LogStream{
		{Name: "2020/03/04/[$LATEST]aaa", CreationTime: 1583298367089},
		{Name: "2020/03/05/[$LATEST]bbb", CreationTime: 1583384767089},
	}, nil)
	src.On("GetLogEvents", mock.Anything, group, "2020/03/04/[$LATEST]aaa", "").Return([]model.LogEvent{{Timestamp: 1583298367100, Message: "hello"}}, nil)
	src.On("GetLogEvents", mock.Anything, group, "2020/03/05/[$LATEST]bbb", "").Return([]model.LogEvent{{Timestamp: 1583384767100, Message: "world"}}, nil)
	fs := afero.NewMemMapFs()

	result, err := newPipeline(src, fs).Run(context.Background(), Config{FunctionName: "f", OutputFolder: "out"})
	require.NoError(t, err)

	assert.Equal(t, []string{
		filepath.Join("out", "f", "3-4-2020--5-6-7.csv"),
		filepath.Join("out", "f", "3-5-2020--5-6-7.csv"),
	}, result.Files)
	assert.Equal(t, 2, result.Discovered)
	assert.Equal(t, 2, result.Selected)
	assert.Equal(t, 2, result.Retained)
	assert.Equal(t, filepath.Join("out", "f"), result.OutputDir)
	assert.Empty(t, result.FetchErrors)
	assert.Empty(t, result.WriteErrors)

	entries, err := afero.ReadDir(fs, filepath.Join("out", "f"))
	require.NoError(t, err)
	assert.Len(t, entries, 2)
	for _, path := range result.Files {
		assert.Len(t, readLines(t, fs, path), 2)
	}
	assert.Equal(t, `"3-4-2020", "5-6-7", "1583298367100", "hello"`, readLines(t, fs, result.Files[0])[1])
}

func TestRunNoStreamsFound(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "").Return([]model.LogStream{}, nil)
	fs := afero.NewMemMapFs()

	result, err := newPipeline(src, fs).Run(context.Background(), Config{FunctionName: "f", OutputFolder: "out"})

	assert.Nil(t, result)
	assert.True(t, errors.Is(err, logerror.ErrNoStreamsFound))
	exists, _ := afero.DirExists(fs, "out")
	assert.False(t, exists)
	src.AssertNotCalled(t, "GetLogEvents", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestRunDiscoveryFailure(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "prod").Return(nil, errors.New("ResourceNotFoundException"))

	_, err := newPipeline(src, afero.NewMemMapFs()).Run(context.Background(), Config{FunctionName: "f", Profile: "prod"})

	assert.True(t, errors.Is(err, logerror.ErrStreamDiscoveryFailure))
	assert.Contains(t, err.Error(), "ResourceNotFoundException")
}

func TestRunInvalidTimeRangeBeforeAnyCall(t *testing.T) {
	src := &mocksource.MockSource{}

	_, err := newPipeline(src, afero.NewMemMapFs()).Run(context.Background(), Config{
		FunctionName: "f",
		Window:       model.NewWindow(ms(2000), ms(1000)),
	})

	assert.True(t, errors.Is(err, logerror.ErrInvalidTimeRange))
	src.AssertNotCalled(t, "DescribeLogStreams", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunMissingFunctionName(t *testing.T) {
	src := &mocksource.MockSource{}

	_, err := newPipeline(src, afero.NewMemMapFs()).Run(context.Background(), Config{})

	assert.True(t, errors.Is(err, logerror.ErrInvalidConfig))
	src.AssertNotCalled(t, "DescribeLogStreams", mock.Anything, mock.Anything, mock.Anything)
}

func TestRunSurvivesOneFetchFailure(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "").Return([]model.LogStream{
		{Name: "a", CreationTime: 1583298367000},
		{Name: "b", CreationTime: 1583298368000},
		{Name: "c", CreationTime: 1583298369000},
	}, nil)
	src.On("GetLogEvents", mock.Anything, group, "b", "").Return(nil, errors.New("connection reset"))
	src.On("GetLogEvents", mock.Anything, group, mock.Anything, "").Return([]model.LogEvent{{Timestamp: 1583298367000, Message: "x"}}, nil)
	fs := afero.NewMemMapFs()

	result, err := newPipeline(src, fs).Run(context.Background(), Config{FunctionName: "f", OutputFolder: "out"})
	require.NoError(t, err)

	assert.Equal(t, 3, result.Selected)
	assert.Equal(t, 2, result.Fetched)
	assert.Len(t, result.FetchErrors, 1)
	assert.Equal(t, []string{
		filepath.Join("out", "f", "3-4-2020--5-6-7.csv"),
		filepath.Join("out", "f", "3-4-2020--5-6-9.csv"),
	}, result.Files)
}

func TestRunSelectsWindowAndSearches(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "").Return([]model.LogStream{
		{Name: "old", CreationTime: 1000},
		{Name: "error", CreationTime: 2000},
		{Name: "quiet", CreationTime: 3000},
		{Name: "new", CreationTime: 9000},
	}, nil)
	src.On("GetLogEvents", mock.Anything, group, "error", "").Return([]model.LogEvent{{Timestamp: 2001, Message: "[ERROR] boom"}}, nil)
	src.On("GetLogEvents", mock.Anything, group, "quiet", "").Return([]model.LogEvent{{Timestamp: 3001, Message: "ok"}}, nil)

	result, err := newPipeline(src, afero.NewMemMapFs()).Run(context.Background(), Config{
		FunctionName:   "f",
		Window:         model.NewWindow(ms(1500), ms(5000)),
		SearchKeywords: []string{"Error", ""},
	})
	require.NoError(t, err)

	assert.Equal(t, 4, result.Discovered)
	assert.Equal(t, 2, result.Selected)
	assert.Equal(t, 2, result.Fetched)
	assert.Equal(t, 1, result.Retained)
	assert.Equal(t, []string{filepath.Join("output", "f", "1-1-1970--0-0-2.csv")}, result.Files)
	src.AssertNotCalled(t, "GetLogEvents", mock.Anything, group, "old", "")
	src.AssertNotCalled(t, "GetLogEvents", mock.Anything, group, "new", "")
}

func TestRunClipsEventsWhenAsked(t *testing.T) {
	src := &mocksource.MockSource{}
	src.On("DescribeLogStreams", mock.Anything, group, "").Return([]model.LogStream{{Name: "s", CreationTime: 1000}}, nil)
	src.On("GetLogEvents", mock.Anything, group, "s", "").Return([]model.LogEvent{
		{Timestamp: 1500, Message: "inside"},
		{Timestamp: 6000, Message: "after end"},
	}, nil)
	fs := afero.NewMemMapFs()
	cfg := Config{FunctionName: "f", Window: model.NewWindow(ms(1000), ms(5000))}

	result, err := newPipeline(src, fs).Run(context.Background(), cfg)
	require.NoError(t, err)
	assert.Len(t, readLines(t, fs, result.Files[0]), 3)

	cfg.ClipEvents = true
	result, err = newPipeline(src, fs).Run(context.Background(), cfg)
	require.NoError(t, err)
	lines := readLines(t, fs, result.Files[0])
	require.Len(t, lines, 2)
	assert.Contains(t, lines[1], "inside")
}
