// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package workload

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	"github.com/luxfi/snapsynth/pkg/ux"
)

// errorDigest is the sentinel "actual" digest reported when the object
// cannot be fetched. A fetch failure counts as a mismatch, not a crash.
const errorDigest = "<error>"

// Validate replays the ledger against live object content in ascending id
// order and reports the number of mismatches. Reads honor the environment's
// target snapshot, so a bucket can be validated as of a snapshot.
func (w *Workload) Validate(ctx context.Context) int {
	mismatches := 0
	for _, id := range w.ledger.IDs() {
		entry := w.ledger.Objects[id]

		actual := errorDigest
		if data, err := w.env.Store.GetObject(ctx, w.env.Bucket, entry.ObjectKey, w.env.SnapID); err == nil {
			sum := sha256.Sum256(data)
			actual = hex.EncodeToString(sum[:])
		}

		status := "OK"
		if actual != entry.SHA256 {
			status = "ERROR"
			mismatches++
		}
		ux.Logger.PrintToUser("%3d : expected: %-65s actual: %-65s ... %s", id, entry.SHA256, actual, status)
	}

	if mismatches == 0 {
		ux.Logger.GreenCheckmarkToUser("SUCCESS")
	} else {
		ux.Logger.PrintToUser("%d objects with unexpected content", mismatches)
		ux.Logger.RedXToUser("FAIL")
	}
	return mismatches
}
