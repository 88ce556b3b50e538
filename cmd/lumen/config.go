// Copyright (c) 2025 The Lumen Authors. All rights reserved.
// Use of this source code is governed by the MIT license in the LICENSE file.

package main

import (
	"time"

	"github.com/spf13/cast"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/urfave/cli/v2"
)

// config is the fully resolved set of knobs internal/node.Config needs,
// after layering flag, environment, and config-file sources (spec.md
// §10: datadir, JWT secret path, log verbosity, snap-sync pivot
// retention window, healing-cache size).
type config struct {
	DataDir        string
	GenesisFile    string
	HTTPAddr       string
	WSAddr         string
	MetricsAddr    string
	ColdCacheBytes int
	HealCacheSize  int
	PivotMaxAge    time.Duration
	LogLevel       string
	LogFile        string
}

var cliFlags = []cli.Flag{
	&cli.StringFlag{Name: "config", Usage: "path to a YAML/JSON config file layered under flags and env"},
	&cli.StringFlag{Name: "datadir", Value: "./lumen-data", Usage: "directory holding the hot and cold trie tiers"},
	&cli.StringFlag{Name: "genesis", Value: "./genesis.json", Usage: "path to the genesis allocation file"},
	&cli.StringFlag{Name: "http-addr", Value: "127.0.0.1:8545", Usage: "JSON-RPC HTTP listen address, empty disables it"},
	&cli.StringFlag{Name: "ws-addr", Value: "127.0.0.1:8546", Usage: "JSON-RPC WebSocket listen address, empty disables it"},
	&cli.StringFlag{Name: "metrics-addr", Value: "", Usage: "Prometheus metrics listen address, empty disables it"},
	&cli.IntFlag{Name: "cold-cache-bytes", Value: 64 << 20, Usage: "cold-tier page-file read cache size in bytes"},
	&cli.IntFlag{Name: "heal-cache-size", Value: 1 << 20, Usage: "snap-sync healing cache entry capacity"},
	&cli.DurationFlag{Name: "pivot-max-age", Value: 2 * time.Minute, Usage: "snap-sync pivot retention window before re-anchoring"},
	&cli.StringFlag{Name: "log-level", Value: "info", Usage: "root logger level"},
	&cli.StringFlag{Name: "log-file", Value: "", Usage: "rotate access logs to this file instead of stdout"},
}

// loadConfig layers, in increasing precedence: config defaults, the
// optional config file, environment variables prefixed LUMEN_, and
// explicitly-set CLI flags. pflag mirrors the cli.Context flag set so
// viper.BindPFlags can read it; cast coerces whatever a config file or
// environment variable supplied (viper leaves file/env values as
// interface{}) into the types config's fields need.
func loadConfig(c *cli.Context) (*config, error) {
	v := viper.New()
	v.SetEnvPrefix("LUMEN")
	v.AutomaticEnv()

	fs := pflag.NewFlagSet("lumen", pflag.ContinueOnError)
	for _, f := range cliFlags {
		switch sf := f.(type) {
		case *cli.StringFlag:
			fs.String(sf.Name, sf.Value, sf.Usage)
		case *cli.IntFlag:
			fs.Int(sf.Name, sf.Value, sf.Usage)
		case *cli.DurationFlag:
			fs.Duration(sf.Name, sf.Value, sf.Usage)
		}
	}
	if err := v.BindPFlags(fs); err != nil {
		return nil, err
	}

	if path := c.String("config"); path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, err
		}
	}

	// CLI flags the user actually typed take precedence over the file
	// and environment layers viper otherwise resolved.
	for _, name := range []string{"datadir", "genesis", "http-addr", "ws-addr", "metrics-addr", "log-level", "log-file"} {
		if c.IsSet(name) {
			v.Set(name, c.String(name))
		}
	}
	if c.IsSet("cold-cache-bytes") {
		v.Set("cold-cache-bytes", c.Int("cold-cache-bytes"))
	}
	if c.IsSet("heal-cache-size") {
		v.Set("heal-cache-size", c.Int("heal-cache-size"))
	}
	if c.IsSet("pivot-max-age") {
		v.Set("pivot-max-age", c.Duration("pivot-max-age"))
	}

	cfg := &config{
		DataDir:        cast.ToString(v.Get("datadir")),
		GenesisFile:    cast.ToString(v.Get("genesis")),
		HTTPAddr:       cast.ToString(v.Get("http-addr")),
		WSAddr:         cast.ToString(v.Get("ws-addr")),
		MetricsAddr:    cast.ToString(v.Get("metrics-addr")),
		ColdCacheBytes: cast.ToInt(v.Get("cold-cache-bytes")),
		HealCacheSize:  cast.ToInt(v.Get("heal-cache-size")),
		PivotMaxAge:    cast.ToDuration(v.Get("pivot-max-age")),
		LogLevel:       cast.ToString(v.Get("log-level")),
		LogFile:        cast.ToString(v.Get("log-file")),
	}
	if cfg.DataDir == "" {
		cfg.DataDir = "./lumen-data"
	}
	if cfg.HealCacheSize <= 0 {
		cfg.HealCacheSize = 1 << 20
	}
	if cfg.ColdCacheBytes <= 0 {
		cfg.ColdCacheBytes = 64 << 20
	}
	return cfg, nil
}
