// Copyright 2026 Google Inc.
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// https://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package zmw

import (
	"context"
	"fmt"
	"io"
	"runtime"

	"github.com/googlegenomics/zmw/internal/virtual"
	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const defaultBatchSize = 256

// Pipeline stitches the ZMWs of a Reader concurrently.  Records are emitted in
// the order the reader produced their ZMWs.
type Pipeline struct {
	Header virtual.Header

	// Workers bounds the number of ZMWs stitched at once.  It defaults to
	// GOMAXPROCS.
	Workers int

	// BatchSize is the number of ZMWs read ahead of the writer.
	BatchSize int

	// SkipInvalid logs and counts ZMWs that cannot be stitched instead of
	// failing the run.
	SkipInvalid bool

	Log logrus.FieldLogger
}

type result struct {
	record *virtual.Record
	err    error
}

// Run stitches every ZMW produced by r and passes the records to emit.  It
// stops at the first error returned by r, by emit, or (unless SkipInvalid is
// set) by stitching.
func (p *Pipeline) Run(ctx context.Context, r *Reader, emit func(*virtual.Record) error) (*Summary, error) {
	workers := p.Workers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	batchSize := p.BatchSize
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	log := p.Log
	if log == nil {
		log = logrus.StandardLogger()
	}

	summary := NewSummary()
	for {
		batch, readErr := readBatch(r, batchSize)
		if readErr != nil && readErr != io.EOF {
			return summary, readErr
		}

		results := make([]result, len(batch))
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(workers)
		for i, group := range batch {
			g.Go(func() error {
				if err := gctx.Err(); err != nil {
					return err
				}
				record, err := virtual.Build(group.Sources, p.Header)
				results[i] = result{record, err}
				return nil
			})
		}
		if err := g.Wait(); err != nil {
			return summary, err
		}

		for i, res := range results {
			if res.err != nil {
				if !p.SkipInvalid {
					return summary, fmt.Errorf("stitching ZMW %d: %w", batch[i].HoleNumber, res.err)
				}
				log.WithFields(logrus.Fields{
					"hole":    batch[i].HoleNumber,
					"sources": len(batch[i].Sources),
				}).WithError(res.err).Warn("Skipping ZMW")
				summary.Skip()
				continue
			}
			if err := emit(res.record); err != nil {
				return summary, fmt.Errorf("writing ZMW %d: %v", batch[i].HoleNumber, err)
			}
			summary.Add(res.record)
		}

		if readErr == io.EOF {
			return summary, nil
		}
	}
}

func readBatch(r *Reader, size int) ([]*Group, error) {
	batch := make([]*Group, 0, size)
	for len(batch) < size {
		group, err := r.Next()
		if err != nil {
			return batch, err
		}
		batch = append(batch, group)
	}
	return batch, nil
}
