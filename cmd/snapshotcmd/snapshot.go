// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package snapshotcmd

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/luxfi/snapsynth/pkg/application"
	"github.com/luxfi/snapsynth/pkg/ux"
	"github.com/luxfi/snapsynth/pkg/workload"
)

var app *application.Snapsynth

var description string

// NewCreateCmd creates the create-snapshot command
func NewCreateCmd(injectedApp *application.Snapsynth) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "create-snapshot",
		Short: "Create a named snapshot of the bucket",
		Long: `The create-snapshot command records a point-in-time snapshot.

Snapshotting is enabled on the bucket first, so the command works on a
fresh bucket. The backend assigns the snapshot id; ids ascend with
creation time and anchor the snapshot range selections of the other
commands.

  snapsynth create-snapshot --bucket demo --snap-name nightly --description "nightly capture"`,
		RunE: createSnapshot,
	}

	cmd.Flags().StringVar(&description, "description", "", "snapshot description")

	return cmd
}

func createSnapshot(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	if app.Workload.SnapName == "" {
		return errors.New("--snap-name is required")
	}

	// the named snapshot does not exist yet, skip name resolution
	env, err := app.NewEnv(ctx, false)
	if err != nil {
		return err
	}
	w, err := workload.New(ctx, env)
	if err != nil {
		return err
	}

	snap, err := w.CreateSnapshot(ctx, app.Workload.SnapName, description)
	if err != nil {
		return fmt.Errorf("failed to create snapshot: %w", err)
	}
	ux.Logger.GreenCheckmarkToUser("Created snapshot %q (id %d)", snap.Name, snap.ID)
	return nil
}

// NewListCmd creates the list-snapshots command
func NewListCmd(injectedApp *application.Snapsynth) *cobra.Command {
	app = injectedApp
	cmd := &cobra.Command{
		Use:   "list-snapshots",
		Short: "List the bucket's snapshots in creation order",
		RunE:  listSnapshots,
	}
	return cmd
}

func listSnapshots(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()

	env, err := app.NewEnv(ctx, false)
	if err != nil {
		return err
	}

	snaps, err := env.Store.ListSnapshots(ctx, env.Bucket)
	if err != nil {
		return err
	}
	if len(snaps) == 0 {
		ux.Logger.PrintToUser("No snapshots found for bucket %s", env.Bucket)
		return nil
	}

	table := ux.DefaultTable([]string{"ID", "Name", "Description"})
	for _, snap := range snaps {
		_ = table.Append([]string{strconv.FormatInt(snap.ID, 10), snap.Name, snap.Description})
	}
	return table.Render()
}
