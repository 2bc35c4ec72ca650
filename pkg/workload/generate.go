// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"math/rand/v2"
	"sort"

	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/ledger"
	"github.com/luxfi/snapsynth/pkg/store"
	"github.com/luxfi/snapsynth/pkg/ux"
)

const contentAlphabet = "abcdefghijklmnopqrstuvwxyzABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789 "

// Workload binds the environment to the bucket's metadata ledger. The
// constructor ensures the bucket exists and loads the ledger once per run.
type Workload struct {
	env    *Env
	ledger *ledger.Ledger
}

func New(ctx context.Context, env *Env) (*Workload, error) {
	if err := env.Store.CreateBucket(ctx, env.Bucket); err != nil {
		return nil, err
	}
	return &Workload{
		env:    env,
		ledger: ledger.Load(ctx, env.Store, env.Bucket, env.MetadataKey, env.SnapID),
	}, nil
}

// Metadata exposes the loaded ledger.
func (w *Workload) Metadata() *ledger.Ledger {
	return w.ledger
}

// GenerateObjects uploads a random batch of synthetic objects and records
// them in the ledger. Ids are sampled without replacement from
// [1, MaxObjectIDs] and written in ascending order; a resampled id
// overwrites the previous generation of that object. The ledger is not
// flushed here.
func (w *Workload) GenerateObjects(ctx context.Context) (int, error) {
	n := rand.IntN(w.env.MaxObjects) + 1
	if n > w.env.MaxObjectIDs {
		n = w.env.MaxObjectIDs
	}
	ids := rand.Perm(w.env.MaxObjectIDs)[:n]
	for i := range ids {
		ids[i]++
	}
	sort.Ints(ids)

	for _, id := range ids {
		entry, err := w.generateObject(ctx, id)
		if err != nil {
			return 0, err
		}
		w.ledger.Record(id, entry)
	}

	ux.Logger.PrintToUser("Created %d objects", n)
	return n, nil
}

func (w *Workload) generateObject(ctx context.Context, id int) (ledger.ObjectEntry, error) {
	size := rand.IntN(w.env.MaxObjectSize)
	content := []byte(randomText(size))
	sum := sha256.Sum256(content)
	digest := hex.EncodeToString(sum[:])

	key := w.env.ObjectKey(id)
	if err := w.env.Store.PutObject(ctx, w.env.Bucket, key, content); err != nil {
		return ledger.ObjectEntry{}, err
	}

	ux.Logger.PrintToUser("uploaded: %s\tsize=%d\thash=%s", key, size, digest)
	return ledger.ObjectEntry{
		ObjectKey: key,
		Size:      int64(size),
		SHA256:    digest,
	}, nil
}

// FlushMetadata persists the ledger in a single overwrite of the metadata
// object.
func (w *Workload) FlushMetadata(ctx context.Context) error {
	digest, err := w.ledger.Flush(ctx, w.env.Store, w.env.Bucket, w.env.MetadataKey)
	if err != nil {
		return err
	}
	ux.Logger.PrintToUser("Uploaded metadata to: s3://%s/%s", w.env.Bucket, w.env.MetadataKey)
	ux.Logger.PrintToUser("meta hash: %s", digest)
	return nil
}

// CreateSnapshot enables snapshotting on the bucket and records a new
// snapshot.
func (w *Workload) CreateSnapshot(ctx context.Context, name, description string) (store.Snapshot, error) {
	if err := w.env.Store.EnableSnapshots(ctx, w.env.Bucket); err != nil {
		return store.Snapshot{}, err
	}
	return w.env.Store.CreateSnapshot(ctx, w.env.Bucket, name, description)
}

// AutoSnapshotName names snapshots taken by generate --auto-snap.
func AutoSnapshotName() string {
	return "snap-" + randomName(constants.AutoSnapNameLen)
}

func randomText(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = contentAlphabet[rand.IntN(len(contentAlphabet))]
	}
	return string(b)
}

// randomName draws from the alphabet minus the space, so the result is
// safe for snapshot names.
func randomName(n int) string {
	b := make([]byte, n)
	for i := range b {
		b[i] = contentAlphabet[rand.IntN(len(contentAlphabet)-1)]
	}
	return string(b)
}
