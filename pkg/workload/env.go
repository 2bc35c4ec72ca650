// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package workload generates synthetic bucket content, validates it against
// the metadata ledger and replicates it between buckets by snapshot range.
package workload

import (
	"context"
	"errors"
	"fmt"

	luxlog "github.com/luxfi/log"

	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/snapdir"
	"github.com/luxfi/snapsynth/pkg/snaprange"
	"github.com/luxfi/snapsynth/pkg/store"
)

// Options carries the per-invocation command line selections an Env is
// built from.
type Options struct {
	Bucket       string
	Prefix       string
	SnapID       int64
	SnapName     string
	FromSnapID   int64
	FromSnapName string
	AllObjects   bool

	// ResolveSnapshots resolves snapshot names to ids up front.
	// create-snapshot leaves it off: the named snapshot does not exist yet.
	ResolveSnapshots bool

	MaxObjects    int
	MaxObjectIDs  int
	MaxObjectSize int
}

// Env is the immutable per-command environment: the store clients, bucket
// coordinates, the resolved snapshot ids and the canonical range
// expression. Constructed once and passed by reference to each component.
type Env struct {
	Store store.Store
	Snaps *snapdir.Directory
	Log   luxlog.Logger

	Bucket      string
	Prefix      string
	MetadataKey string

	SnapID     int64
	FromSnapID int64
	Range      snaprange.Range

	MaxObjects    int
	MaxObjectIDs  int
	MaxObjectSize int
}

// NewEnv resolves snapshot names through the directory and fixes the range
// expression for the rest of the command. A named snapshot that does not
// exist is fatal here, before any workload I/O.
func NewEnv(ctx context.Context, st store.Store, opts Options, log luxlog.Logger) (*Env, error) {
	if opts.Bucket == "" {
		return nil, errors.New("bucket is required")
	}
	if opts.Prefix == "" {
		opts.Prefix = constants.DefaultPrefix
	}
	if opts.MaxObjects <= 0 {
		opts.MaxObjects = constants.DefaultMaxObjects
	}
	if opts.MaxObjectIDs <= 0 {
		opts.MaxObjectIDs = constants.DefaultMaxObjectIDs
	}
	if opts.MaxObjectSize <= 0 {
		opts.MaxObjectSize = constants.DefaultMaxObjectSize
	}

	dir := snapdir.New(st, opts.Bucket)

	snapID := opts.SnapID
	fromID := opts.FromSnapID
	if opts.ResolveSnapshots {
		var err error
		if snapID, err = dir.Resolve(ctx, opts.SnapID, opts.SnapName); err != nil {
			return nil, err
		}
		if fromID, err = dir.Resolve(ctx, opts.FromSnapID, opts.FromSnapName); err != nil {
			return nil, err
		}
	}

	return &Env{
		Store:         st,
		Snaps:         dir,
		Log:           log,
		Bucket:        opts.Bucket,
		Prefix:        opts.Prefix,
		MetadataKey:   opts.Prefix + constants.MetadataFileName,
		SnapID:        snapID,
		FromSnapID:    fromID,
		Range:         snaprange.Resolve(snapID, fromID, opts.AllObjects),
		MaxObjects:    opts.MaxObjects,
		MaxObjectIDs:  opts.MaxObjectIDs,
		MaxObjectSize: opts.MaxObjectSize,
	}, nil
}

// ObjectKey returns the bucket key of a synthetic object id.
func (e *Env) ObjectKey(id int) string {
	return fmt.Sprintf("%sobject_%d.txt", e.Prefix, id)
}
