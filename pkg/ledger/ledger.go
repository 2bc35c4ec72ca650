// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package ledger maintains the content-addressed index of generated
// objects, persisted as a single JSON object in the bucket itself.
package ledger

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"sort"
	"time"

	"github.com/luxfi/snapsynth/pkg/store"
)

// ObjectEntry records one generated object. Immutable once written;
// regenerating an id replaces the whole entry.
type ObjectEntry struct {
	ObjectKey string `json:"object_key"`
	Size      int64  `json:"size"`
	SHA256    string `json:"sha256"`
}

// Ledger indexes generated objects by numeric id. The JSON wire format
// keys the objects map by decimal string, which encoding/json gives us for
// free on integer-keyed maps.
type Ledger struct {
	Objects     map[int]ObjectEntry `json:"objects"`
	GeneratedAt *time.Time          `json:"generated_at"`
}

func New() *Ledger {
	return &Ledger{Objects: map[int]ObjectEntry{}}
}

// Load fetches the metadata object from the bucket, as of snapshot snapID
// (0 = live). Any retrieval or parse failure yields the empty ledger: a
// fresh bucket legitimately has no metadata yet, so this is recoverable,
// not an error.
func Load(ctx context.Context, os store.ObjectStore, bucket, key string, snapID int64) *Ledger {
	data, err := os.GetObject(ctx, bucket, key, snapID)
	if err != nil {
		return New()
	}
	var l Ledger
	if err := json.Unmarshal(data, &l); err != nil {
		return New()
	}
	if l.Objects == nil {
		l.Objects = map[int]ObjectEntry{}
	}
	return &l
}

// Record upserts the entry for id.
func (l *Ledger) Record(id int, entry ObjectEntry) {
	l.Objects[id] = entry
}

// IDs returns the recorded object ids in ascending order.
func (l *Ledger) IDs() []int {
	ids := make([]int, 0, len(l.Objects))
	for id := range l.Objects {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

// Flush stamps generated_at, serializes the ledger and overwrites the
// metadata object in a single write. Returns the sha256 of the objects-only
// sub-map for external auditing. There is no multi-writer coordination:
// concurrent generate runs against the same bucket and prefix can silently
// drop each other's updates.
func (l *Ledger) Flush(ctx context.Context, os store.ObjectStore, bucket, key string) (string, error) {
	now := time.Now().UTC()
	l.GeneratedAt = &now

	objsJSON, err := json.Marshal(l.Objects)
	if err != nil {
		return "", err
	}
	sum := sha256.Sum256(objsJSON)
	digest := hex.EncodeToString(sum[:])

	payload, err := json.Marshal(l)
	if err != nil {
		return "", err
	}
	if err := os.PutObject(ctx, bucket, key, payload); err != nil {
		return "", err
	}
	return digest, nil
}
