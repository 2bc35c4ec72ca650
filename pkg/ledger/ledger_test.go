// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package ledger

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/luxfi/snapsynth/pkg/store"
)

const metaKey = "demo-objects/metadata.json"

func newBucket(t *testing.T) (*store.MemStore, context.Context) {
	t.Helper()
	ctx := context.Background()
	st := store.NewMemStore()
	require.NoError(t, st.CreateBucket(ctx, "demo"))
	return st, ctx
}

func TestLoadMissingMetadataIsEmptyLedger(t *testing.T) {
	st, ctx := newBucket(t)

	l := Load(ctx, st, "demo", metaKey, 0)
	require.NotNil(t, l)
	require.Empty(t, l.Objects)
	require.Nil(t, l.GeneratedAt)
}

func TestLoadCorruptMetadataIsEmptyLedger(t *testing.T) {
	st, ctx := newBucket(t)
	require.NoError(t, st.PutObject(ctx, "demo", metaKey, []byte("{not json")))

	l := Load(ctx, st, "demo", metaKey, 0)
	require.Empty(t, l.Objects)
}

func TestFlushLoadRoundTrip(t *testing.T) {
	st, ctx := newBucket(t)

	l := New()
	l.Record(1, ObjectEntry{ObjectKey: "demo-objects/object_1.txt", Size: 11, SHA256: "aa"})
	l.Record(42, ObjectEntry{ObjectKey: "demo-objects/object_42.txt", Size: 7, SHA256: "bb"})

	digest, err := l.Flush(ctx, st, "demo", metaKey)
	require.NoError(t, err)
	require.Len(t, digest, 64)
	require.NotNil(t, l.GeneratedAt)

	loaded := Load(ctx, st, "demo", metaKey, 0)
	require.Equal(t, l.Objects, loaded.Objects)
	require.NotNil(t, loaded.GeneratedAt)
}

func TestLoadPinnedToSnapshot(t *testing.T) {
	st, ctx := newBucket(t)
	require.NoError(t, st.EnableSnapshots(ctx, "demo"))

	l := New()
	l.Record(1, ObjectEntry{ObjectKey: "demo-objects/object_1.txt", Size: 2, SHA256: "aa"})
	_, err := l.Flush(ctx, st, "demo", metaKey)
	require.NoError(t, err)
	snap, err := st.CreateSnapshot(ctx, "demo", "s1", "")
	require.NoError(t, err)

	l.Record(2, ObjectEntry{ObjectKey: "demo-objects/object_2.txt", Size: 2, SHA256: "bb"})
	_, err = l.Flush(ctx, st, "demo", metaKey)
	require.NoError(t, err)

	pinned := Load(ctx, st, "demo", metaKey, snap.ID)
	require.Len(t, pinned.Objects, 1)
	require.Contains(t, pinned.Objects, 1)

	live := Load(ctx, st, "demo", metaKey, 0)
	require.Len(t, live.Objects, 2)
}

func TestRecordUpsertsByID(t *testing.T) {
	l := New()
	l.Record(3, ObjectEntry{ObjectKey: "k", Size: 1, SHA256: "aa"})
	l.Record(3, ObjectEntry{ObjectKey: "k", Size: 9, SHA256: "cc"})

	require.Len(t, l.Objects, 1)
	require.Equal(t, int64(9), l.Objects[3].Size)
	require.Equal(t, "cc", l.Objects[3].SHA256)
}

func TestIDsAscending(t *testing.T) {
	l := New()
	for _, id := range []int{30, 2, 17, 1} {
		l.Record(id, ObjectEntry{})
	}
	require.Equal(t, []int{1, 2, 17, 30}, l.IDs())
}

func TestWireFormat(t *testing.T) {
	st, ctx := newBucket(t)

	l := New()
	l.Record(5, ObjectEntry{ObjectKey: "demo-objects/object_5.txt", Size: 3, SHA256: "dd"})
	_, err := l.Flush(ctx, st, "demo", metaKey)
	require.NoError(t, err)

	raw, err := st.GetObject(ctx, "demo", metaKey, 0)
	require.NoError(t, err)

	var wire map[string]json.RawMessage
	require.NoError(t, json.Unmarshal(raw, &wire))
	require.Contains(t, wire, "objects")
	require.Contains(t, wire, "generated_at")

	var objs map[string]map[string]interface{}
	require.NoError(t, json.Unmarshal(wire["objects"], &objs))
	require.Contains(t, objs, "5")
	require.Equal(t, "demo-objects/object_5.txt", objs["5"]["object_key"])
	require.Equal(t, float64(3), objs["5"]["size"])
	require.Equal(t, "dd", objs["5"]["sha256"])
}
