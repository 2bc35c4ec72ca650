// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

// Package snaprange resolves a target snapshot, an optional lower bound and
// the all-objects flag into the canonical range expression consumed by the
// object store listing API.
package snaprange

import "strconv"

// Range identifies the snapshot interval of object history visible to a
// listing or read. The zero value is the unbounded range (live state).
//
// Encoded forms:
//
//	""     unbounded, current live state
//	"S"    point: objects captured by snapshot S
//	"-S"   full-through: everything up to and including snapshot S
//	"F-S"  delta: everything after snapshot F through snapshot S
//	"F-"   delta through current
//	"-"    all history to now
type Range struct {
	From   int64 // exclusive lower bound, 0 = none
	Target int64 // inclusive upper bound, 0 = none
	All    bool  // full history through Target
}

// Resolve builds the range for the given target snapshot id, optional
// "from" id and all-objects flag. Pure: ids are taken as already resolved,
// 0 meaning absent. A from >= target pair is encoded as-is and yields an
// empty, not erroneous, result at the store.
func Resolve(target, from int64, allObjects bool) Range {
	switch {
	case allObjects:
		return Range{Target: target, All: true}
	case from != 0:
		return Range{From: from, Target: target}
	default:
		return Range{Target: target}
	}
}

// Point returns the range seeing exactly snapshot id.
func Point(id int64) Range {
	return Range{Target: id}
}

// FullThrough returns the range seeing all history up to and including
// snapshot id.
func FullThrough(id int64) Range {
	return Range{Target: id, All: true}
}

// Unbounded reports whether r places no snapshot constraint.
func (r Range) Unbounded() bool {
	return !r.All && r.From == 0 && r.Target == 0
}

// String encodes r in the listing API grammar. The unbounded range encodes
// as the empty string, meaning "send no range at all".
func (r Range) String() string {
	target := ""
	if r.Target != 0 {
		target = strconv.FormatInt(r.Target, 10)
	}
	switch {
	case r.All:
		return "-" + target
	case r.From != 0:
		return strconv.FormatInt(r.From, 10) + "-" + target
	default:
		return target
	}
}
