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
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/poiesic/docindex/config"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newApp().RunContext(ctx, os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:  "docindex",
		Usage: "Document upload, ingestion and semantic search",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a TOML config file",
				EnvVars: []string{"DOCINDEX_CONFIG"},
			},
			&cli.StringFlag{
				Name:  "env-file",
				Usage: "Path to a .env file",
				Value: ".env",
			},
			&cli.StringSliceFlag{
				Name:  "brokers",
				Usage: "Kafka bootstrap servers",
			},
			&cli.StringFlag{
				Name:  "topic",
				Usage: "Topic carrying document events",
			},
			&cli.StringFlag{
				Name:  "storage-root",
				Usage: "Directory for uploaded documents (disk backend)",
			},
			&cli.StringFlag{
				Name:  "badger-path",
				Usage: "Directory for the badger store",
			},
			&cli.StringFlag{
				Name:  "vector-backend",
				Usage: "Vector index backend (badger, pgvector)",
			},
			&cli.StringFlag{
				Name:  "ai-provider",
				Usage: "AI provider (openai, gemini)",
			},
		},
		Before: func(c *cli.Context) error {
			if err := setupLogger(c); err != nil {
				return err
			}
			return loadConfig(c)
		},
		Commands: []*cli.Command{
			serveCommand(),
			workerCommand(),
			uploadCommand(),
			getCommand(),
			downloadCommand(),
			searchCommand(),
			reindexCommand(),
			statusCommand(),
		},
	}
}

func setupLogger(c *cli.Context) error {
	levelStr := strings.ToLower(c.String("log-level"))

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

// loadConfig layers global flags over the file and environment settings and
// stores the result in the app metadata.
func loadConfig(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"), c.String("env-file"))
	if err != nil {
		return err
	}

	if c.IsSet("brokers") {
		cfg.Brokers = c.StringSlice("brokers")
	}
	overrideString(c, "topic", &cfg.Topic)
	overrideString(c, "storage-root", &cfg.StorageRoot)
	overrideString(c, "badger-path", &cfg.BadgerPath)
	overrideString(c, "vector-backend", &cfg.VectorBackend)
	overrideString(c, "ai-provider", &cfg.AIProvider)

	if err := cfg.Validate(); err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = make(map[string]any)
	}
	c.App.Metadata[configKey] = cfg
	return nil
}

func overrideString(c *cli.Context, flag string, dst *string) {
	if c.IsSet(flag) {
		*dst = c.String(flag)
	}
}

func configFrom(c *cli.Context) (*config.Config, error) {
	cfg, ok := c.App.Metadata[configKey].(*config.Config)
	if !ok {
		return nil, errors.New("configuration not loaded")
	}
	return cfg, nil
}
