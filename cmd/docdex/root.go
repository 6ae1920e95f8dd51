package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/docdex/internal/config"
	logpkg "github.com/kailas-cloud/docdex/internal/logger"
)

// cli holds global flags and lazily loaded configuration shared by all commands.
type cli struct {
	env        string
	configPath string
	envFile    string

	cfg    config.Config
	logger *zap.Logger
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "docdex",
		Short: "Document ingestion and keyword retrieval",
		Long: `docdex ingests PDF, DOCX, XLSX, PPTX, Markdown and plain text documents,
splits them into overlapping chunks and ranks them against queries by keyword overlap.`,
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&c.env, "env", config.GetEnv(), "environment; selects config/<env>.yaml")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "explicit config file path (overrides --env lookup)")
	root.PersistentFlags().StringVar(&c.envFile, "env-file", ".env", "dotenv file loaded before the config")

	root.AddCommand(
		newServeCmd(c),
		newIngestCmd(c),
		newSearchCmd(c),
		newDocumentsCmd(c),
		newDeleteCmd(c),
		newWatchCmd(c),
		newVersionCmd(),
	)
	return root
}

// load reads the dotenv file, the config and builds the logger.
func (c *cli) load() error {
	if c.logger != nil {
		return nil
	}

	if err := godotenv.Load(c.envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", c.envFile, err)
	}

	var err error
	if c.configPath != "" {
		c.cfg, err = config.LoadFile(c.configPath)
	} else {
		c.cfg, err = config.Load(c.env)
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	c.logger, err = logpkg.NewLogger(c.env, c.cfg.Logging.Level)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	return nil
}

// open loads configuration and assembles the application.
func (c *cli) open(ctx context.Context) (*app, error) {
	if err := c.load(); err != nil {
		return nil, err
	}
	return newApp(ctx, c.cfg, c.logger)
}
