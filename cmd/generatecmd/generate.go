// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package generatecmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/luxfi/snapsynth/pkg/application"
	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/ux"
	"github.com/luxfi/snapsynth/pkg/workload"
)

var app *application.Snapsynth

var (
	forever       bool
	autoSnap      bool
	autoSnapRatio int
)

// NewCmd creates the generate command
func NewCmd(injectedApp *application.Snapsynth) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate synthetic objects and record them in the metadata ledger",
		Long: `The generate command uploads a random batch of synthetic objects.

Each cycle picks a random number of object ids, uploads random printable
content under each id's key and records key, size and SHA-256 digest in
the bucket's metadata ledger. The ledger is flushed once per cycle, so a
later validate run can replay it against live or snapshotted content.

USAGE:

  # One generation cycle
  snapsynth generate --bucket demo

  # Generate continuously, snapshotting every 5th cycle
  snapsynth generate --bucket demo --forever --auto-snap

Re-generated ids overwrite their previous content; with snapshots
enabled the store keeps the captured generations readable.`,
		RunE: generateObjects,
	}

	cmd.Flags().BoolVar(&forever, "forever", false, "generate in a loop until interrupted")
	cmd.Flags().BoolVar(&autoSnap, "auto-snap", false, "create a snapshot every auto-snap-ratio cycles")
	cmd.Flags().IntVar(&autoSnapRatio, "auto-snap-ratio", constants.DefaultAutoSnapRatio, "generation cycles per automatic snapshot")
	cmd.Flags().IntVar(&app.Workload.MaxObjects, "max-objects", constants.DefaultMaxObjects, "max objects generated per cycle")
	cmd.Flags().IntVar(&app.Workload.MaxObjectIDs, "max-object-ids", constants.DefaultMaxObjectIDs, "size of the object id space")
	cmd.Flags().IntVar(&app.Workload.MaxObjectSize, "max-object-size", constants.DefaultMaxObjectSize, "max object content size in bytes")

	return cmd
}

func generateObjects(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := app.NewEnv(ctx, false)
	if err != nil {
		return err
	}
	w, err := workload.New(ctx, env)
	if err != nil {
		return err
	}

	for cycle := 1; ; cycle++ {
		if _, err := w.GenerateObjects(ctx); err != nil {
			return err
		}
		if err := w.FlushMetadata(ctx); err != nil {
			return err
		}

		if autoSnap && autoSnapRatio > 0 && cycle%autoSnapRatio == 0 {
			snap, err := w.CreateSnapshot(ctx, workload.AutoSnapshotName(), "automatic snapshot")
			if err != nil {
				return err
			}
			ux.Logger.PrintToUser("Created snapshot %q (id %d)", snap.Name, snap.ID)
		}

		if !forever {
			return nil
		}
		time.Sleep(constants.PollInterval)
	}
}
