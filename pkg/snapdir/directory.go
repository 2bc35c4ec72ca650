// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snapdir resolves snapshot names to ids and lists snapshots in
// creation order on top of the store's snapshot service.
package snapdir

import (
	"context"
	"errors"
	"fmt"

	"github.com/luxfi/snapsynth/pkg/store"
)

// ErrSnapshotNotFound reports a snapshot name with no match in the bucket.
var ErrSnapshotNotFound = errors.New("snapshot not found")

// Directory looks up snapshots for one bucket. Lookups always hit the
// service; nothing is cached past a call, so long-running sync loops see
// snapshots created after the directory was built.
type Directory struct {
	svc    store.SnapshotService
	bucket string
}

func New(svc store.SnapshotService, bucket string) *Directory {
	return &Directory{svc: svc, bucket: bucket}
}

// Resolve maps an id/name pair to a snapshot id. A non-zero id is returned
// unchecked, trusting the caller. A name is looked up exactly; when the
// service lists duplicate names, the last-listed one wins, because the
// name index is built in listing order with overwrites. Both absent
// resolves to 0 (no snapshot).
func (d *Directory) Resolve(ctx context.Context, id int64, name string) (int64, error) {
	if id != 0 {
		return id, nil
	}
	if name == "" {
		return 0, nil
	}

	_, byName, err := d.List(ctx, 0)
	if err != nil {
		return 0, err
	}
	snapID, ok := byName[name]
	if !ok {
		return 0, fmt.Errorf("%w: %s", ErrSnapshotNotFound, name)
	}
	return snapID, nil
}

// List returns the bucket's snapshots with id > startAfter, preserving the
// service's listing order, plus a name→id index over the filtered subset.
func (d *Directory) List(ctx context.Context, startAfter int64) ([]store.Snapshot, map[string]int64, error) {
	all, err := d.svc.ListSnapshots(ctx, d.bucket)
	if err != nil {
		return nil, nil, err
	}

	var snaps []store.Snapshot
	byName := map[string]int64{}
	for _, snap := range all {
		if snap.ID <= startAfter {
			continue
		}
		snaps = append(snaps, snap)
		byName[snap.Name] = snap.ID
	}
	return snaps, byName, nil
}
