// Copyright 2021 Saferwall. All rights reserved.
// Use of this source code is governed by Apache v2 license
// license that can be found in the LICENSE file.

package evtx

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
)

func TestParallelWalkVisitsEveryRecord(t *testing.T) {
	data := buildSyntheticFile(t)
	p, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	for _, workers := range []int{1, 4, 8} {
		var count int32
		err := ParallelWalk(context.Background(), p, workers, func(rec *Record) error {
			atomic.AddInt32(&count, 1)
			return nil
		})
		if err != nil {
			t.Fatalf("ParallelWalk(workers=%d): %v", workers, err)
		}
		if count != 1 {
			t.Fatalf("ParallelWalk(workers=%d) visited %d records, want 1", workers, count)
		}
	}
}

func TestParallelWalkFallsBackToSettingsNumThreads(t *testing.T) {
	data := buildSyntheticFile(t)
	settings := DefaultSettings()
	settings.NumThreads = 3
	p, err := OpenBytes(data, &settings)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	var count int32
	// workers <= 0 asks ParallelWalk to use Settings.NumThreads instead.
	err = ParallelWalk(context.Background(), p, 0, func(rec *Record) error {
		atomic.AddInt32(&count, 1)
		return nil
	})
	if err != nil {
		t.Fatalf("ParallelWalk: %v", err)
	}
	if count != 1 {
		t.Fatalf("ParallelWalk visited %d records, want 1", count)
	}
}

func TestParallelWalkPropagatesFnError(t *testing.T) {
	data := buildSyntheticFile(t)
	p, err := OpenBytes(data, nil)
	if err != nil {
		t.Fatalf("OpenBytes: %v", err)
	}

	sentinel := errors.New("boom")
	err = ParallelWalk(context.Background(), p, 2, func(rec *Record) error {
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("err = %v, want %v", err, sentinel)
	}
}
