// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package constants

import (
	"time"
)

const (
	DefaultPerms755    = 0o755
	WriteReadReadPerms = 0o644

	BaseDirName = ".snapsynth"
	LogDir      = "logs"

	DefaultConfigFileName = "cli"
	DefaultConfigFileType = "json"

	// DefaultPrefix is the key prefix under which synthetic objects and
	// the metadata ledger live.
	DefaultPrefix    = "demo-objects/"
	MetadataFileName = "metadata.json"

	// Workload sizing, overridable per run via generate flags.
	DefaultMaxObjectIDs  = 100
	DefaultMaxObjects    = 20
	DefaultMaxObjectSize = 10000

	// DefaultAutoSnapRatio creates one automatic snapshot per this many
	// generation cycles.
	DefaultAutoSnapRatio = 5
	AutoSnapNameLen      = 8

	// PollInterval separates iterations of --forever loops.
	PollInterval = 2 * time.Second

	DefaultRegion = "us-east-1"

	MaxLogFileSize   = 4
	MaxNumOfLogFiles = 5
	RetainOldFiles   = 0 // retain all old log files

	ConfigEndpointKey  = "endpoint"
	ConfigRegionKey    = "region"
	ConfigProfileKey   = "profile"
	ConfigPathStyleKey = "path-style"

	EnvEndpoint = "SNAPSYNTH_ENDPOINT"
	EnvRegion   = "SNAPSYNTH_REGION"
	EnvProfile  = "SNAPSYNTH_PROFILE"
)
