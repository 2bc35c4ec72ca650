// Copyright (C) 2022-2025, Lux Industries Inc. All rights reserved.
// See the file LICENSE for licensing terms.
package application

import (
	"context"
	"path/filepath"

	luxlog "github.com/luxfi/log"

	"github.com/luxfi/snapsynth/pkg/config"
	"github.com/luxfi/snapsynth/pkg/constants"
	"github.com/luxfi/snapsynth/pkg/store"
	"github.com/luxfi/snapsynth/pkg/workload"
)

// Snapsynth is the application context threaded through every command.
// Store and Workload are bound to the root command's persistent flags and
// hold the raw command line selections; ResolveStoreConfig applies the
// config file and default fallbacks on top.
type Snapsynth struct {
	Log     luxlog.Logger
	Conf    *config.Config
	baseDir string

	Store    store.Config
	Workload workload.Options
}

func New() *Snapsynth {
	return &Snapsynth{}
}

func (app *Snapsynth) Setup(baseDir string, log luxlog.Logger, conf *config.Config) {
	app.baseDir = baseDir
	app.Log = log
	app.Conf = conf
}

func (app *Snapsynth) GetBaseDir() string {
	return app.baseDir
}

func (app *Snapsynth) GetLogDir() string {
	return filepath.Join(app.baseDir, constants.LogDir)
}

func (app *Snapsynth) ConfigFileExists() bool {
	return app.Conf.ConfigFileExists()
}

// ResolveStoreConfig merges flag values with the config file.
// Priority: flags > env vars > config file > defaults.
func (app *Snapsynth) ResolveStoreConfig() *store.Config {
	cfg := app.Store
	if cfg.Endpoint == "" {
		cfg.Endpoint = app.Conf.GetConfigStringValue(constants.ConfigEndpointKey)
	}
	if cfg.Region == "" {
		cfg.Region = app.Conf.GetConfigStringValue(constants.ConfigRegionKey)
	}
	if cfg.Region == "" {
		cfg.Region = constants.DefaultRegion
	}
	if cfg.Profile == "" {
		cfg.Profile = app.Conf.GetConfigStringValue(constants.ConfigProfileKey)
	}
	if !cfg.PathStyle {
		cfg.PathStyle = app.Conf.GetConfigBoolValue(constants.ConfigPathStyleKey)
	}
	return &cfg
}

// ConnectStore builds the store client selected by flags and config.
func (app *Snapsynth) ConnectStore(ctx context.Context) (store.Store, error) {
	return store.New(ctx, app.ResolveStoreConfig())
}

// NewEnv connects the store and builds the command environment from the
// flag-bound workload options. Commands targeting existing snapshots pass
// resolveSnapshots so name lookups fail before any workload I/O.
func (app *Snapsynth) NewEnv(ctx context.Context, resolveSnapshots bool) (*workload.Env, error) {
	st, err := app.ConnectStore(ctx)
	if err != nil {
		return nil, err
	}
	opts := app.Workload
	opts.ResolveSnapshots = resolveSnapshots
	return workload.NewEnv(ctx, st, opts, app.Log)
}
