// Copyright 2018 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"context"
	"io"

	"golang.org/x/sync/errgroup"
)

// ParallelWalk walks every chunk of p concurrently across workers
// goroutines, calling fn once per successfully decoded record. fn may be
// called from multiple goroutines concurrently and must synchronize any
// shared state itself. Chunks are handed out through a shared channel, each
// to whichever worker is free next; record order within a chunk is
// preserved, but no ordering is guaranteed
// across chunks. If fn returns an error, ParallelWalk stops dispatching
// new chunks, waits for in-flight work to finish, and returns the first
// error observed.
func ParallelWalk(ctx context.Context, p *Parser, workers int, fn func(*Record) error) error {
	if workers < 1 {
		workers = int(p.settings.NumThreads)
	}
	if workers < 1 {
		workers = 1
	}

	g, ctx := errgroup.WithContext(ctx)
	chunkIndexes := make(chan int)

	g.Go(func() error {
		defer close(chunkIndexes)
		for i := 0; i < p.ChunkCount(); i++ {
			select {
			case chunkIndexes <- i:
			case <-ctx.Done():
				return ctx.Err()
			}
		}
		return nil
	})

	for w := 0; w < workers; w++ {
		g.Go(func() error {
			for idx := range chunkIndexes {
				chunk, err := p.Chunk(idx)
				if err != nil {
					if p.settings.ContinueOnChunkError {
						continue
					}
					return err
				}
				it := chunk.Records()
				for {
					rec, err := it.Next()
					if err == io.EOF {
						break
					}
					if err != nil {
						if p.settings.ContinueOnRecordError {
							continue
						}
						return err
					}
					if err := fn(rec); err != nil {
						return err
					}
				}
			}
			return nil
		})
	}

	return g.Wait()
}
