// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
)

// newMemFixture builds a bucket with three snapshot generations:
//
//	snap 1: a=a1, b=b1
//	snap 2: a=a2, c=c2
//	snap 3: b=b3
//	live:   d=live (not captured by any snapshot)
func newMemFixture(t *testing.T) *MemStore {
	t.Helper()
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.CreateBucket(ctx, "b"))
	require.NoError(t, m.EnableSnapshots(ctx, "b"))

	require.NoError(t, m.PutObject(ctx, "b", "a", []byte("a1")))
	require.NoError(t, m.PutObject(ctx, "b", "b", []byte("b1")))
	_, err := m.CreateSnapshot(ctx, "b", "s1", "")
	require.NoError(t, err)

	require.NoError(t, m.PutObject(ctx, "b", "a", []byte("a2")))
	require.NoError(t, m.PutObject(ctx, "b", "c", []byte("c2")))
	_, err = m.CreateSnapshot(ctx, "b", "s2", "")
	require.NoError(t, err)

	require.NoError(t, m.PutObject(ctx, "b", "b", []byte("b3")))
	_, err = m.CreateSnapshot(ctx, "b", "s3", "")
	require.NoError(t, err)

	require.NoError(t, m.PutObject(ctx, "b", "d", []byte("live")))
	return m
}

func listKeys(t *testing.T, m *MemStore, snapRange string) []string {
	t.Helper()
	infos, err := m.ListObjects(context.Background(), "b", "", snapRange)
	require.NoError(t, err)
	keys := make([]string, 0, len(infos))
	for _, info := range infos {
		keys = append(keys, info.Key)
	}
	return keys
}

func TestMemListObjectsRanges(t *testing.T) {
	m := newMemFixture(t)

	tests := []struct {
		name      string
		snapRange string
		want      []string
	}{
		{"live state", "", []string{"a", "b", "c", "d"}},
		{"point snap 1", "1", []string{"a", "b"}},
		{"point snap 2", "2", []string{"a", "c"}},
		{"point snap 3", "3", []string{"b"}},
		{"full through 2", "-2", []string{"a", "b", "c"}},
		{"delta 1 to 3", "1-3", []string{"a", "b", "c"}},
		{"delta 2 through current", "2-", []string{"b", "d"}},
		{"all history", "-", []string{"a", "b", "c", "d"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.Equal(t, tt.want, listKeys(t, m, tt.snapRange))
		})
	}
}

func TestMemListObjectsRejectsBadRange(t *testing.T) {
	m := newMemFixture(t)
	_, err := m.ListObjects(context.Background(), "b", "", "abc")
	require.ErrorContains(t, err, "invalid snapshot range")
}

func TestMemListObjectsPrefix(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.CreateBucket(ctx, "b"))
	require.NoError(t, m.PutObject(ctx, "b", "data/x", []byte("x")))
	require.NoError(t, m.PutObject(ctx, "b", "other/y", []byte("y")))

	require.Equal(t, []string{"data/x"}, listKeys(t, m, ""))

	infos, err := m.ListObjects(ctx, "b", "data/", "")
	require.NoError(t, err)
	require.Len(t, infos, 1)
	require.Equal(t, "data/x", infos[0].Key)
}

func TestMemGetObjectPinsSnapshot(t *testing.T) {
	m := newMemFixture(t)
	ctx := context.Background()

	data, err := m.GetObject(ctx, "b", "a", 1)
	require.NoError(t, err)
	require.Equal(t, "a1", string(data))

	data, err = m.GetObject(ctx, "b", "a", 3)
	require.NoError(t, err)
	require.Equal(t, "a2", string(data))

	data, err = m.GetObject(ctx, "b", "a", 0)
	require.NoError(t, err)
	require.Equal(t, "a2", string(data))

	// d exists only as a live version, invisible at any snapshot
	_, err = m.GetObject(ctx, "b", "d", 3)
	require.ErrorIs(t, err, ErrNotFound)
	data, err = m.GetObject(ctx, "b", "d", 0)
	require.NoError(t, err)
	require.Equal(t, "live", string(data))
}

func TestMemGetObjectNotFound(t *testing.T) {
	m := newMemFixture(t)
	_, err := m.GetObject(context.Background(), "b", "nope", 0)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestMemPutOverwritesLiveState(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.CreateBucket(ctx, "b"))
	require.NoError(t, m.PutObject(ctx, "b", "k", []byte("one")))
	require.NoError(t, m.PutObject(ctx, "b", "k", []byte("two")))

	data, err := m.GetObject(ctx, "b", "k", 0)
	require.NoError(t, err)
	require.Equal(t, "two", string(data))
}

func TestMemCreateBucketIsIdempotent(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.CreateBucket(ctx, "b"))
	require.NoError(t, m.PutObject(ctx, "b", "k", []byte("kept")))
	require.NoError(t, m.CreateBucket(ctx, "b"))

	data, err := m.GetObject(ctx, "b", "k", 0)
	require.NoError(t, err)
	require.Equal(t, "kept", string(data))
}

func TestMemSnapshotRequiresEnable(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()
	require.NoError(t, m.CreateBucket(ctx, "b"))

	_, err := m.CreateSnapshot(ctx, "b", "s1", "")
	require.ErrorContains(t, err, "snapshots not enabled")

	require.NoError(t, m.EnableSnapshots(ctx, "b"))
	snap, err := m.CreateSnapshot(ctx, "b", "s1", "desc")
	require.NoError(t, err)
	require.Equal(t, int64(1), snap.ID)
	require.Equal(t, "s1", snap.Name)
	require.Equal(t, "desc", snap.Description)
}

func TestMemSnapshotIDsAscend(t *testing.T) {
	m := newMemFixture(t)
	snaps, err := m.ListSnapshots(context.Background(), "b")
	require.NoError(t, err)
	require.Len(t, snaps, 3)
	for i, snap := range snaps {
		require.Equal(t, int64(i+1), snap.ID)
	}
}

func TestMemMissingBucket(t *testing.T) {
	ctx := context.Background()
	m := NewMemStore()

	require.ErrorIs(t, m.PutObject(ctx, "nope", "k", nil), ErrNotFound)
	_, err := m.GetObject(ctx, "nope", "k", 0)
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.ListObjects(ctx, "nope", "", "")
	require.ErrorIs(t, err, ErrNotFound)
	require.ErrorIs(t, m.EnableSnapshots(ctx, "nope"), ErrNotFound)
	_, err = m.CreateSnapshot(ctx, "nope", "s", "")
	require.ErrorIs(t, err, ErrNotFound)
	_, err = m.ListSnapshots(ctx, "nope")
	require.ErrorIs(t, err, ErrNotFound)
}
