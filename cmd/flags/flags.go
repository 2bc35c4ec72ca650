// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package flags

import (
	"github.com/spf13/pflag"

	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/store"
	"github.com/luxfi/snapsynth/pkg/workload"
)

const (
	bucketFlag       = "bucket"
	prefixFlag       = "prefix"
	snapIDFlag       = "snap-id"
	snapNameFlag     = "snap-name"
	fromSnapIDFlag   = "from-snap-id"
	fromSnapNameFlag = "from-snap-name"
	allObjsFlag      = "all-objs"

	storeFlag      = "store"
	endpointFlag   = "endpoint"
	regionFlag     = "region"
	profileFlag    = "profile"
	pathStyleFlag  = "path-style"
	maxRetriesFlag = "max-retries"
)

// AddWorkloadFlags registers the bucket and snapshot selection flags
// shared by every command.
func AddWorkloadFlags(fs *pflag.FlagSet, opts *workload.Options) {
	fs.StringVar(&opts.Bucket, bucketFlag, "", "bucket holding the synthetic objects (required)")
	fs.StringVar(&opts.Prefix, prefixFlag, constants.DefaultPrefix, "key prefix of the synthetic objects")
	fs.Int64Var(&opts.SnapID, snapIDFlag, 0, "target snapshot id (0 = live state)")
	fs.StringVar(&opts.SnapName, snapNameFlag, "", "target snapshot name, resolved to an id")
	fs.Int64Var(&opts.FromSnapID, fromSnapIDFlag, 0, "lower bound snapshot id of a delta range")
	fs.StringVar(&opts.FromSnapName, fromSnapNameFlag, "", "lower bound snapshot name of a delta range")
	fs.BoolVar(&opts.AllObjects, allObjsFlag, false, "include full object history through the target")
}

// AddStoreFlags registers the backend selection flags.
func AddStoreFlags(fs *pflag.FlagSet, cfg *store.Config) {
	fs.StringVar((*string)(&cfg.Provider), storeFlag, string(store.ProviderS3), "store backend (s3 or mem)")
	fs.StringVar(&cfg.Endpoint, endpointFlag, "", "custom endpoint for S3-compatible stores (RGW, MinIO, etc.)")
	fs.StringVar(&cfg.Region, regionFlag, "", "store region")
	fs.StringVar(&cfg.Profile, profileFlag, "", "credentials profile")
	fs.BoolVar(&cfg.PathStyle, pathStyleFlag, false, "use path-style bucket addressing")
	fs.IntVar(&cfg.MaxRetries, maxRetriesFlag, 0, "max request retry attempts (0 = SDK default)")
}
