// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"
)

// MemStore is an in-memory Store modelling the snapshot semantics of the
// backend under test: every put creates a version, creating a snapshot
// stamps all not-yet-captured versions with the new snapshot id, and
// listings/reads select versions by snapshot interval. It backs the engine
// tests and the "mem" provider.
type MemStore struct {
	mu         sync.Mutex
	buckets    map[string]*memBucket
	nextSnapID int64
}

type memBucket struct {
	snapshotsEnabled bool
	objects          map[string]*memObject
	snapshots        []Snapshot
}

type memObject struct {
	versions []memVersion
}

// snap is the id of the snapshot that captured this version, 0 while the
// version is still live-only.
type memVersion struct {
	data     []byte
	snap     int64
	modified time.Time
}

func NewMemStore() *MemStore {
	return &MemStore{
		buckets:    map[string]*memBucket{},
		nextSnapID: 1,
	}
}

func (m *MemStore) CreateBucket(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.buckets[bucket]; !ok {
		m.buckets[bucket] = &memBucket{objects: map[string]*memObject{}}
	}
	return nil
}

func (m *MemStore) PutObject(_ context.Context, bucket, key string, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	obj, ok := b.objects[key]
	if !ok {
		obj = &memObject{}
		b.objects[key] = obj
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	obj.versions = append(obj.versions, memVersion{data: cp, modified: time.Now().UTC()})
	return nil
}

func (m *MemStore) GetObject(_ context.Context, bucket, key string, snapID int64) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	obj, ok := b.objects[key]
	if !ok {
		return nil, fmt.Errorf("%s/%s: %w", bucket, key, ErrNotFound)
	}
	for i := len(obj.versions) - 1; i >= 0; i-- {
		v := obj.versions[i]
		if snapID == 0 || (v.snap != 0 && v.snap <= snapID) {
			cp := make([]byte, len(v.data))
			copy(cp, v.data)
			return cp, nil
		}
	}
	return nil, fmt.Errorf("%s/%s@%d: %w", bucket, key, snapID, ErrNotFound)
}

func (m *MemStore) ListObjects(_ context.Context, bucket, prefix, snapRange string) ([]ObjectInfo, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}

	visible, err := parseRange(snapRange)
	if err != nil {
		return nil, err
	}

	var infos []ObjectInfo
	for key, obj := range b.objects {
		if prefix != "" && !strings.HasPrefix(key, prefix) {
			continue
		}
		if v, ok := latestVisible(obj.versions, visible); ok {
			infos = append(infos, ObjectInfo{
				Key:          key,
				Size:         int64(len(v.data)),
				LastModified: v.modified,
			})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].Key < infos[j].Key })
	return infos, nil
}

func (m *MemStore) EnableSnapshots(_ context.Context, bucket string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	b.snapshotsEnabled = true
	return nil
}

func (m *MemStore) CreateSnapshot(_ context.Context, bucket, name, description string) (Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return Snapshot{}, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	if !b.snapshotsEnabled {
		return Snapshot{}, fmt.Errorf("snapshots not enabled for bucket %s", bucket)
	}

	snap := Snapshot{ID: m.nextSnapID, Name: name, Description: description}
	m.nextSnapID++
	b.snapshots = append(b.snapshots, snap)

	// Capture everything written since the previous snapshot.
	for _, obj := range b.objects {
		for i := range obj.versions {
			if obj.versions[i].snap == 0 {
				obj.versions[i].snap = snap.ID
			}
		}
	}
	return snap, nil
}

func (m *MemStore) ListSnapshots(_ context.Context, bucket string) ([]Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	b, ok := m.buckets[bucket]
	if !ok {
		return nil, fmt.Errorf("bucket %s: %w", bucket, ErrNotFound)
	}
	snaps := make([]Snapshot, len(b.snapshots))
	copy(snaps, b.snapshots)
	return snaps, nil
}

// visibleWindow is a parsed range expression. Zero value = live state.
type visibleWindow struct {
	point int64 // bare "S": versions captured exactly by snapshot S
	from  int64 // exclusive lower bound
	to    int64 // inclusive upper bound, 0 = through current
	span  bool  // true for the "-S", "F-S", "F-", "-" forms
}

func parseRange(snapRange string) (visibleWindow, error) {
	if snapRange == "" {
		return visibleWindow{}, nil
	}
	idx := strings.Index(snapRange, "-")
	if idx < 0 {
		point, err := strconv.ParseInt(snapRange, 10, 64)
		if err != nil {
			return visibleWindow{}, fmt.Errorf("invalid snapshot range %q", snapRange)
		}
		return visibleWindow{point: point}, nil
	}

	w := visibleWindow{span: true}
	if fromStr := snapRange[:idx]; fromStr != "" {
		from, err := strconv.ParseInt(fromStr, 10, 64)
		if err != nil {
			return visibleWindow{}, fmt.Errorf("invalid snapshot range %q", snapRange)
		}
		w.from = from
	}
	if toStr := snapRange[idx+1:]; toStr != "" {
		to, err := strconv.ParseInt(toStr, 10, 64)
		if err != nil {
			return visibleWindow{}, fmt.Errorf("invalid snapshot range %q", snapRange)
		}
		w.to = to
	}
	return w, nil
}

// latestVisible returns the newest version of one object falling inside the
// window. Windows with an inclusive upper bound only see captured versions;
// open-ended windows also see live ones.
func latestVisible(versions []memVersion, w visibleWindow) (memVersion, bool) {
	for i := len(versions) - 1; i >= 0; i-- {
		v := versions[i]
		switch {
		case w.point != 0:
			if v.snap == w.point {
				return v, true
			}
		case w.span:
			if w.to != 0 {
				if v.snap != 0 && v.snap > w.from && v.snap <= w.to {
					return v, true
				}
			} else if v.snap == 0 || v.snap > w.from {
				return v, true
			}
		default:
			// live state: newest version, captured or not
			return v, true
		}
	}
	return memVersion{}, false
}
