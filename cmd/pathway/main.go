// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package main

import (
	"fmt"
	"log"
	"log/slog"
	"os"
	"strings"

	"github.com/poiesic/pathway"
	"github.com/poiesic/pathway/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

// openEngine opens the engine for a command. Tests replace it to inject a
// deterministic embedder.
var openEngine = func(cfg *config.Config, opts ...pathway.Option) (*pathway.Engine, error) {
	base := []pathway.Option{
		pathway.WithAIConfig(cfg.AIConfig()),
		pathway.WithIndexOptions(cfg.IndexOptions()...),
		pathway.WithLogger(slog.Default()),
	}
	return pathway.Open(cfg.Database.Path, append(base, opts...)...)
}

func main() {
	if err := newApp().Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "pathway",
		Usage: "Hybrid academic program recommender",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error); overrides the config file",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML config file",
			},
			&cli.StringFlag{
				Name:    "db",
				Aliases: []string{"d"},
				Usage:   "Path to BadgerDB database directory; overrides database.path",
			},
		},
		Before: func(c *cli.Context) error {
			if err := loadConfig(c); err != nil {
				return err
			}
			return setupLogger(c)
		},
		Commands: []*cli.Command{
			importCommand(),
			reindexCommand(),
			recommendCommand(),
			serveCommand(),
		},
	}
}

func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	if db := c.String("db"); db != "" {
		cfg.Database.Path = db
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

// configFrom returns the configuration loaded by the Before hook.
func configFrom(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	return config.Default()
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))
	if levelStr == "" {
		levelStr = configFrom(c).Logging.Level
	}

	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}
