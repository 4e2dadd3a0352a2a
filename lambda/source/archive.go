// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package source

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sort"
	"sync"

	"github.com/aws/aws-lambda-go/events"
	"github.com/klauspost/compress/gzip"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/afero"

	"go.amzn.com/lambdalogs/lambda/model"
)

// typecheck interface compliance
var _ Client = (*ArchiveClient)(nil)

const controlMessage = "CONTROL_MESSAGE"

var gzipMagic = []byte{0x1f, 0x8b}

// ArchiveClient serves log groups from CloudWatch Logs subscription payloads stored
// on disk, as delivered by subscription filters or Firehose. Files may be gzip
// compressed and may hold several concatenated payloads. The archive is indexed on
// first use; profile is ignored.
type ArchiveClient struct {
	fs  afero.Fs
	dir string

	once    sync.Once
	loadErr error
	groups  map[string]map[string][]model.LogEvent
}

func NewArchiveClient(fs afero.Fs, dir string) *ArchiveClient {
	return &ArchiveClient{fs: fs, dir: dir}
}

func (c *ArchiveClient) DescribeLogStreams(ctx context.Context, groupName, profile string) ([]model.LogStream, error) {
	if err := c.load(); err != nil {
		return nil, err
	}

	streams := make([]model.LogStream, 0, len(c.groups[groupName]))
	for name, evs := range c.groups[groupName] {
		// archived payloads carry no stream metadata; the first event stands in for creation
		streams = append(streams, model.LogStream{Name: name, CreationTime: evs[0].Timestamp})
	}
	sort.Slice(streams, func(i, j int) bool {
		if streams[i].CreationTime != streams[j].CreationTime {
			return streams[i].CreationTime < streams[j].CreationTime
		}
		return streams[i].Name < streams[j].Name
	})
	return streams, nil
}

func (c *ArchiveClient) GetLogEvents(ctx context.Context, groupName, streamName, profile string) ([]model.LogEvent, error) {
	if err := c.load(); err != nil {
		return nil, err
	}

	evs, ok := c.groups[groupName][streamName]
	if !ok {
		return nil, fmt.Errorf("%s in %s: %w", streamName, groupName, ErrStreamNotFound)
	}
	out := make([]model.LogEvent, len(evs))
	copy(out, evs)
	return out, nil
}

func (c *ArchiveClient) load() error {
	c.once.Do(func() {
		c.groups = make(map[string]map[string][]model.LogEvent)
		c.loadErr = afero.Walk(c.fs, c.dir, func(path string, info os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			if info.IsDir() {
				return nil
			}
			return c.loadFile(path)
		})
		if c.loadErr != nil {
			c.loadErr = fmt.Errorf("could not read archive %s: %w", c.dir, c.loadErr)
			return
		}
		for _, streams := range c.groups {
			for _, evs := range streams {
				sort.SliceStable(evs, func(i, j int) bool { return evs[i].Timestamp < evs[j].Timestamp })
			}
		}
	})
	return c.loadErr
}

func (c *ArchiveClient) loadFile(path string) error {
	f, err := c.fs.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()

	payloads, err := decodePayloads(f)
	if err != nil {
		return fmt.Errorf("%s: %w", path, err)
	}

	for _, data := range payloads {
		if data.MessageType == controlMessage {
			continue
		}
		streams, ok := c.groups[data.LogGroup]
		if !ok {
			streams = make(map[string][]model.LogEvent)
			c.groups[data.LogGroup] = streams
		}
		for _, e := range data.LogEvents {
			streams[data.LogStream] = append(streams[data.LogStream], model.LogEvent{
				Timestamp: e.Timestamp,
				Message:   e.Message,
			})
		}
	}
	log.WithField("file", path).Debugf("indexed %d payloads", len(payloads))
	return nil
}

// decodePayloads reads every subscription payload in r, transparently gunzipping it.
func decodePayloads(r io.Reader) ([]events.CloudwatchLogsData, error) {
	br := bufio.NewReader(r)
	magic, err := br.Peek(len(gzipMagic))
	if err != nil && err != io.EOF {
		return nil, err
	}

	var body io.Reader = br
	if bytes.Equal(magic, gzipMagic) {
		zr, err := gzip.NewReader(br)
		if err != nil {
			return nil, err
		}
		defer zr.Close()
		body = zr
	}

	var payloads []events.CloudwatchLogsData
	dec := json.NewDecoder(body)
	for {
		var data events.CloudwatchLogsData
		if err := dec.Decode(&data); err == io.EOF {
			return payloads, nil
		} else if err != nil {
			return nil, fmt.Errorf("%w: subscription payload: %v", ErrMalformedResponse, err)
		}
		payloads = append(payloads, data)
	}
}
