// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workload

import (
	"context"
	"fmt"

	"github.com/luxfi/snapsynth/pkg/snaprange"
	"github.com/luxfi/snapsynth/pkg/ux"
)

// SyncMode states the replication state machine. The caller transitions
// Seed → Incremental after the first successful pass.
type SyncMode int

const (
	// SyncSeed replicates only the newest snapshot, as a full-through
	// copy seeding the destination with complete state.
	SyncSeed SyncMode = iota
	// SyncIncremental replicates every snapshot after the cursor in
	// order, each as that snapshot's own delta.
	SyncIncremental
)

func (m SyncMode) String() string {
	if m == SyncIncremental {
		return "incremental"
	}
	return "full"
}

// CopyBucket replicates the source objects visible in rng into dest under
// identical keys, in ascending key order. Reads are pinned to the range's
// target snapshot so every object is fetched from the same point in time.
// Overwrite-idempotent; never deletes. The first failed transfer aborts
// the copy.
func (w *Workload) CopyBucket(ctx context.Context, dest string, rng snaprange.Range) error {
	if err := w.env.Store.CreateBucket(ctx, dest); err != nil {
		return err
	}

	objs, err := w.env.Store.ListObjects(ctx, w.env.Bucket, w.env.Prefix, rng.String())
	if err != nil {
		return err
	}

	for _, obj := range objs {
		ux.Logger.PrintToUser("copying %s/%s -> %s/%s", w.env.Bucket, obj.Key, dest, obj.Key)

		data, err := w.env.Store.GetObject(ctx, w.env.Bucket, obj.Key, rng.Target)
		if err != nil {
			return fmt.Errorf("failed to fetch %s/%s: %w", w.env.Bucket, obj.Key, err)
		}
		if err := w.env.Store.PutObject(ctx, dest, obj.Key, data); err != nil {
			return fmt.Errorf("failed to store %s/%s: %w", dest, obj.Key, err)
		}
	}
	return nil
}

// SyncBucket replicates source state into dest. Without followSnapshots it
// is a single unbounded copy. With it, snapshots after cursor drive the
// copies per the mode. Returns the id of the last fully replicated
// snapshot: the cursor for the next invocation, and the only progress
// marker kept. Re-invoking with the returned cursor resumes after a
// failure.
func (w *Workload) SyncBucket(ctx context.Context, dest string, followSnapshots bool, cursor int64, mode SyncMode) (int64, error) {
	if !followSnapshots {
		return cursor, w.CopyBucket(ctx, dest, snaprange.Range{})
	}

	snaps, _, err := w.env.Snaps.List(ctx, cursor)
	if err != nil {
		return cursor, err
	}
	if mode == SyncSeed && len(snaps) > 0 {
		// seed from the newest snapshot only
		snaps = snaps[len(snaps)-1:]
	}

	for _, snap := range snaps {
		rng := snaprange.Point(snap.ID)
		if mode == SyncSeed {
			rng = snaprange.FullThrough(snap.ID)
		}

		ux.Logger.PrintToUser("Syncing snapshot: %s (%s sync)", snap.Name, mode)
		if err := w.CopyBucket(ctx, dest, rng); err != nil {
			return cursor, err
		}
		cursor = snap.ID
		ux.Logger.PrintToUser("Finished syncing snapshot: %s (%s sync)", snap.Name, mode)
	}
	return cursor, nil
}
