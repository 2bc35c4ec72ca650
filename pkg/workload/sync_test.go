// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workload

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/snapsynth/pkg/snaprange"
	"github.com/luxfi/snapsynth/pkg/store"
)

func takeSnapshot(t *testing.T, st *store.MemStore, bucket, name string) store.Snapshot {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, st.EnableSnapshots(ctx, bucket))
	snap, err := st.CreateSnapshot(ctx, bucket, name, "")
	require.NoError(t, err)
	return snap
}

func bucketContent(t *testing.T, st *store.MemStore, bucket, prefix string) map[string]string {
	t.Helper()
	ctx := context.Background()
	objs, err := st.ListObjects(ctx, bucket, prefix, "")
	require.NoError(t, err)
	content := map[string]string{}
	for _, obj := range objs {
		data, err := st.GetObject(ctx, bucket, obj.Key, 0)
		require.NoError(t, err)
		content[obj.Key] = string(data)
	}
	return content
}

func TestCopyBucketUnbounded(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "one")
	seedObject(t, w, 2, "two")

	require.NoError(t, w.CopyBucket(ctx, "dst", snaprange.Range{}))
	require.Equal(t, bucketContent(t, st, "src", w.env.Prefix), bucketContent(t, st, "dst", w.env.Prefix))
}

func TestCopyBucketIsIdempotent(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "one")
	seedObject(t, w, 2, "two")

	require.NoError(t, w.CopyBucket(ctx, "dst", snaprange.Range{}))
	once := bucketContent(t, st, "dst", w.env.Prefix)

	require.NoError(t, w.CopyBucket(ctx, "dst", snaprange.Range{}))
	require.Equal(t, once, bucketContent(t, st, "dst", w.env.Prefix))
}

func TestCopyBucketHonorsPointInTime(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "old")
	snap := takeSnapshot(t, st, "src", "s1")

	// mutate after the snapshot; the copy must still see "old"
	require.NoError(t, st.PutObject(ctx, "src", w.env.ObjectKey(1), []byte("new")))
	seedObject(t, w, 2, "late")

	require.NoError(t, w.CopyBucket(ctx, "dst", snaprange.FullThrough(snap.ID)))

	dst := bucketContent(t, st, "dst", w.env.Prefix)
	require.Equal(t, "old", dst[w.env.ObjectKey(1)])
	require.NotContains(t, dst, w.env.ObjectKey(2))
}

func TestSyncBucketWithoutFollowIsUnboundedCopy(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "one")

	cursor, err := w.SyncBucket(ctx, "dst", false, 0, SyncSeed)
	require.NoError(t, err)
	require.Zero(t, cursor)
	require.Equal(t, bucketContent(t, st, "src", w.env.Prefix), bucketContent(t, st, "dst", w.env.Prefix))
}

func TestSyncBucketSeedCollapsesToNewestSnapshot(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "v1")
	takeSnapshot(t, st, "src", "s1")
	seedObject(t, w, 2, "v2")
	takeSnapshot(t, st, "src", "s2")
	seedObject(t, w, 3, "v3")
	last := takeSnapshot(t, st, "src", "s3")

	cursor, err := w.SyncBucket(ctx, "dst", true, 0, SyncSeed)
	require.NoError(t, err)
	require.Equal(t, last.ID, cursor)

	// the single full seed carries complete state as of the newest snapshot
	dst := bucketContent(t, st, "dst", w.env.Prefix)
	require.Equal(t, "v1", dst[w.env.ObjectKey(1)])
	require.Equal(t, "v2", dst[w.env.ObjectKey(2)])
	require.Equal(t, "v3", dst[w.env.ObjectKey(3)])
}

func TestSyncBucketIncrementalConverges(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "v1")
	takeSnapshot(t, st, "src", "s1")

	cursor, err := w.SyncBucket(ctx, "dst", true, 0, SyncSeed)
	require.NoError(t, err)

	seedObject(t, w, 2, "v2")
	takeSnapshot(t, st, "src", "s2")
	seedObject(t, w, 1, "v1-updated")
	seedObject(t, w, 3, "v3")
	last := takeSnapshot(t, st, "src", "s3")

	cursor, err = w.SyncBucket(ctx, "dst", true, cursor, SyncIncremental)
	require.NoError(t, err)
	require.Equal(t, last.ID, cursor)

	dst := bucketContent(t, st, "dst", w.env.Prefix)
	require.Equal(t, "v1-updated", dst[w.env.ObjectKey(1)])
	require.Equal(t, "v2", dst[w.env.ObjectKey(2)])
	require.Equal(t, "v3", dst[w.env.ObjectKey(3)])
}

func TestSyncBucketNoNewSnapshotsKeepsCursor(t *testing.T) {
	w, st := newTestWorkload(t, Options{Bucket: "src"})
	ctx := context.Background()

	seedObject(t, w, 1, "v1")
	snap := takeSnapshot(t, st, "src", "s1")

	cursor, err := w.SyncBucket(ctx, "dst", true, snap.ID, SyncIncremental)
	require.NoError(t, err)
	require.Equal(t, snap.ID, cursor)
}

func TestSyncModeString(t *testing.T) {
	require.Equal(t, "full", SyncSeed.String())
	require.Equal(t, "incremental", SyncIncremental.String())
}
