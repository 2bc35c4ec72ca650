// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package store

import (
	"context"
	"errors"
	"fmt"
	"time"
)

// Provider represents an object store backend type.
type Provider string

const (
	ProviderS3  Provider = "s3"
	ProviderMem Provider = "mem"
)

// ErrNotFound reports a missing object or bucket.
var ErrNotFound = errors.New("not found")

// ObjectInfo contains listing metadata about a stored object.
type ObjectInfo struct {
	Key          string
	Size         int64
	LastModified time.Time
}

// Snapshot is one point-in-time marker over a bucket's object history.
// IDs are assigned by the backend and ascend with creation time.
type Snapshot struct {
	ID          int64
	Name        string
	Description string
}

// ObjectStore defines the object operations consumed by the workload.
//
// snapID and snapRange select the snapshot interval of history visible to
// the call; the zero values mean live state. The range expression grammar
// is the one produced by pkg/snaprange.
type ObjectStore interface {
	// CreateBucket ensures the bucket exists. Creating an existing
	// bucket is not an error.
	CreateBucket(ctx context.Context, bucket string) error

	// PutObject writes data under key, overwriting any previous content.
	PutObject(ctx context.Context, bucket, key string, data []byte) error

	// GetObject reads the object content as of snapshot snapID
	// (0 = live state). Returns ErrNotFound when the key is not visible.
	GetObject(ctx context.Context, bucket, key string, snapID int64) ([]byte, error)

	// ListObjects lists objects under prefix whose history falls within
	// snapRange, in ascending key order.
	ListObjects(ctx context.Context, bucket, prefix, snapRange string) ([]ObjectInfo, error)
}

// SnapshotService defines the bucket snapshot operations.
type SnapshotService interface {
	// EnableSnapshots turns on snapshotting for the bucket. Idempotent.
	EnableSnapshots(ctx context.Context, bucket string) error

	// CreateSnapshot records a new named snapshot of the bucket.
	CreateSnapshot(ctx context.Context, bucket, name, description string) (Snapshot, error)

	// ListSnapshots returns the bucket's snapshots in creation order.
	ListSnapshots(ctx context.Context, bucket string) ([]Snapshot, error)
}

// Store combines the object and snapshot surfaces of one backend.
type Store interface {
	ObjectStore
	SnapshotService
}

// Config holds configuration for store backends.
type Config struct {
	Provider Provider
	Region   string
	Endpoint string // Custom endpoint for S3-compatible stores (RGW, MinIO, etc.)

	// AWS-specific
	Profile      string
	AccessKey    string
	SecretKey    string
	SessionToken string

	// Common options
	PathStyle  bool // Use path-style URLs
	MaxRetries int
}

// New creates a new Store instance based on the config.
func New(ctx context.Context, cfg *Config) (Store, error) {
	switch cfg.Provider {
	case ProviderS3, "":
		return NewS3Store(ctx, cfg)
	case ProviderMem:
		return NewMemStore(), nil
	default:
		return nil, fmt.Errorf("unsupported store provider: %s", cfg.Provider)
	}
}
