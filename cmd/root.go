// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.

package cmd

import (
	"fmt"
	"os"
	"os/user"
	"path/filepath"

	luxlog "github.com/luxfi/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/luxfi/snapsynth/cmd/bucketcmd"
	"github.com/luxfi/snapsynth/cmd/flags"
	"github.com/luxfi/snapsynth/cmd/generatecmd"
	"github.com/luxfi/snapsynth/cmd/snapshotcmd"
	"github.com/luxfi/snapsynth/cmd/synccmd"
	"github.com/luxfi/snapsynth/pkg/application"
	"github.com/luxfi/snapsynth/pkg/config"
	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/ux"
)

var (
	app        *application.Snapsynth
	logFactory luxlog.Factory

	logLevel string
	Version  = "0.3.1"
	cfgFile  string
)

func NewRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use: "snapsynth",
		Long: `snapsynth - synthetic snapshot workload for S3-compatible stores.

snapsynth fills a bucket with random objects, tracks every upload in a
content-addressed metadata ledger, and drives the bucket snapshot
extension of snapshot-capable backends (RGW and compatible stores).
Snapshots select which interval of object history reads and listings
see, which makes point-in-time validation and incremental bucket
replication possible.

QUICK START:

  # Generate a batch of objects and record them in the ledger
  snapsynth generate --bucket demo --endpoint http://rgw:8000

  # Snapshot the bucket
  snapsynth create-snapshot --bucket demo --snap-name nightly --description "nightly capture"

  # Validate content against the ledger, as of a snapshot
  snapsynth validate --bucket demo --snap-name nightly

  # Replicate snapshot deltas into a second bucket
  snapsynth sync-bucket --bucket demo --dest-bucket replica --follow-snapshots

For detailed command help, use: snapsynth <command> --help`,
		PersistentPreRunE: createApp,
		Version:           Version,
	}

	// Disable printing the completion command
	rootCmd.CompletionOptions.HiddenDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.snapsynth/cli.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "ERROR", "log level for the application")
	flags.AddWorkloadFlags(rootCmd.PersistentFlags(), &app.Workload)
	flags.AddStoreFlags(rootCmd.PersistentFlags(), &app.Store)

	// add sub commands
	rootCmd.AddCommand(generatecmd.NewCmd(app))
	rootCmd.AddCommand(snapshotcmd.NewCreateCmd(app))
	rootCmd.AddCommand(snapshotcmd.NewListCmd(app))
	rootCmd.AddCommand(bucketcmd.NewListObjectsCmd(app))
	rootCmd.AddCommand(bucketcmd.NewGetMetaCmd(app))
	rootCmd.AddCommand(bucketcmd.NewValidateCmd(app))
	rootCmd.AddCommand(synccmd.NewCopyCmd(app))
	rootCmd.AddCommand(synccmd.NewSyncCmd(app))

	return rootCmd
}

func createApp(cmd *cobra.Command, _ []string) error {
	baseDir, err := setupEnv()
	if err != nil {
		return err
	}
	log, err := setupLogging(baseDir)
	if err != nil {
		return err
	}

	// Adjust log level based on flags (must be done after flags are parsed)
	if logLevel != "" {
		if level, err := luxlog.ToLevel(logLevel); err == nil {
			logFactory.SetLogLevel("snapsynth", level)
			logFactory.SetDisplayLevel("snapsynth", level)
		}
	}

	app.Setup(baseDir, log, config.New())

	initConfig()
	return nil
}

func setupEnv() (string, error) {
	// Set base dir
	usr, err := user.Current()
	if err != nil {
		// no logger here yet
		fmt.Printf("unable to get system user %s\n", err)
		return "", err
	}
	baseDir := filepath.Join(usr.HomeDir, constants.BaseDirName)

	// Create base dir if it doesn't exist
	if err = os.MkdirAll(baseDir, constants.DefaultPerms755); err != nil {
		// no logger here yet
		fmt.Printf("failed creating the basedir %s: %s\n", baseDir, err)
		return "", err
	}

	return baseDir, nil
}

func setupLogging(baseDir string) (luxlog.Logger, error) {
	var err error

	config := luxlog.Config{}
	config.LogLevel = luxlog.Level(-6) // Info level for file logging
	config.DisplayLevel, _ = luxlog.ToLevel("WARN")

	config.Directory = filepath.Join(baseDir, constants.LogDir)
	if err := os.MkdirAll(config.Directory, constants.DefaultPerms755); err != nil {
		return nil, fmt.Errorf("failed creating log directory: %w", err)
	}

	// some logging config params
	config.LogFormat = luxlog.Colors
	config.MaxSize = constants.MaxLogFileSize
	config.MaxFiles = constants.MaxNumOfLogFiles
	config.MaxAge = constants.RetainOldFiles

	// Register ux package as internal so caller tracking shows actual source, not the wrapper
	luxlog.RegisterInternalPackages("github.com/luxfi/snapsynth/pkg/ux")

	factory := luxlog.NewFactoryWithConfig(config)
	log, err := factory.Make("snapsynth")
	if err != nil {
		factory.Close()
		return nil, fmt.Errorf("failed setting up logging, exiting: %w", err)
	}
	// Store factory globally so we can adjust levels later
	logFactory = factory
	// User output goes to stdout, logs go to stderr
	ux.NewUserLog(log, os.Stdout)
	return log, nil
}

// initConfig reads in config file and ENV variables if set.
// Priority: flags > env vars > config file > defaults
func initConfig() {
	if cfgFile != "" {
		// Use config file from the flag.
		viper.SetConfigFile(cfgFile)
	} else {
		// Search for config in ~/.snapsynth/ directory
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)
		baseDir := filepath.Join(home, constants.BaseDirName)
		viper.AddConfigPath(baseDir)
		viper.SetConfigType(constants.DefaultConfigFileType)
		viper.SetConfigName(constants.DefaultConfigFileName) // cli.json
	}

	// SNAPSYNTH_ENDPOINT -> endpoint, etc.
	_ = viper.BindEnv(constants.ConfigEndpointKey, constants.EnvEndpoint)
	_ = viper.BindEnv(constants.ConfigRegionKey, constants.EnvRegion)
	_ = viper.BindEnv(constants.ConfigProfileKey, constants.EnvProfile)

	viper.AutomaticEnv() // read in environment variables that match

	// If a config file is found, read it in.
	if err := viper.ReadInConfig(); err == nil {
		app.Log.Debug("using config file", "config-file", viper.ConfigFileUsed())
	}
	// No config file is normal - most users don't have one, so we silently continue
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	app = application.New()
	rootCmd := NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "\nERROR: %s\n", err)
		os.Exit(1)
	}
}
