package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/shivavenkatesh/bigtext/internal/bigtext"
	"github.com/shivavenkatesh/bigtext/internal/config"
	"github.com/shivavenkatesh/bigtext/internal/store"
	"github.com/shivavenkatesh/bigtext/internal/store/sqlite"
	"github.com/shivavenkatesh/bigtext/pkg/types"
)

// loadConfig merges the config file, the environment and global flags, in that order
func loadConfig() (*config.Config, error) {
	cfg := config.Default()
	if configPath != "" {
		loaded, err := config.Load(configPath)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}
	if err := cfg.ApplyEnv(); err != nil {
		return nil, err
	}

	if encodingFl != "" {
		cfg.Encoding = encodingFl
	}
	if chunkSize != 0 {
		cfg.ChunkSize = chunkSize
	}
	if outDir != "" {
		cfg.OutputDir = outDir
	}
	if dataDir != "" {
		cfg.DataDir = dataDir
	}
	if noJournal {
		cfg.Journal = false
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// initService creates and initializes the text service
func initService() (bigtext.Service, *config.Config, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, nil, err
	}

	level, _ := cfg.Level()
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	var st store.Store
	if cfg.Journal {
		dir, err := cfg.ResolveDataDir()
		if err != nil {
			return nil, nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, nil, fmt.Errorf("failed to create data directory: %w", err)
		}

		dbPath := filepath.Join(dir, "bigtext.db")
		st, err = sqlite.New(sqlite.Config{Path: dbPath})
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize store: %w", err)
		}
		logger.Debug("journal opened", "path", dbPath)
	}

	namer, _ := cfg.Namer() // checked by Validate
	svc := bigtext.NewService(st, bigtext.Config{
		ChunkSize:       cfg.ChunkSize,
		DefaultEncoding: cfg.Encoding,
		Locale:          cfg.Locale,
		OutputDir:       cfg.OutputDir,
		LengthCacheSize: cfg.LengthCacheSize,
		Namer:           namer,
	}, logger)

	return svc, cfg, nil
}

func source(path string) types.Source {
	return types.Source{Path: path}
}

func printOutputs(resp *types.OutputResponse) {
	for _, p := range resp.Outputs {
		fmt.Println(p)
	}
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
