// Copyright Amazon.com, Inc. or its affiliates. All Rights Reserved.
// SPDX-License-Identifier: Apache-2.0

package aggregator

import (
	"sync"

	"go.amzn.com/lambdalogs/lambda/model"
)

// Collection accumulates records from concurrent fetches. Order is completion
// order, not stream order.
type Collection struct {
	mutex   *sync.Mutex
	records []model.LogRecord
}

func NewCollection() *Collection {
	return &Collection{
		records: []model.LogRecord{},
		mutex:   &sync.Mutex{},
	}
}

// Add appends a record. Safe for concurrent use.
func (c *Collection) Add(record model.LogRecord) {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	c.records = append(c.records, record)
}

// Records returns a snapshot of the collection.
func (c *Collection) Records() []model.LogRecord {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	out := make([]model.LogRecord, len(c.records))
	copy(out, c.records)
	return out
}

func (c *Collection) Len() int {
	c.mutex.Lock()
	defer c.mutex.Unlock()
	return len(c.records)
}

// retain replaces the records with those keep accepts, compacted in order.
func (c *Collection) retain(keep func(model.LogRecord) bool) (removed int) {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	kept := make([]model.LogRecord, 0, len(c.records))
	for _, r := range c.records {
		if keep(r) {
			kept = append(kept, r)
		}
	}
	removed = len(c.records) - len(kept)
	c.records = kept
	return removed
}

// ClipToWindow drops the events whose own timestamp falls outside w. Records are
// kept even when left empty. Event slices are replaced, never modified in place.
func (c *Collection) ClipToWindow(w model.Window) (dropped int) {
	if !w.Bounded() {
		return 0
	}

	c.mutex.Lock()
	defer c.mutex.Unlock()

	for i, r := range c.records {
		events := make([]model.LogEvent, 0, len(r.Events))
		for _, e := range r.Events {
			if w.Contains(e.Timestamp) {
				events = append(events, e)
			}
		}
		dropped += len(r.Events) - len(events)
		c.records[i].Events = events
	}
	return dropped
}
