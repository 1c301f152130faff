package main

import (
	"context"
	"os"

	"github.com/fatih/color"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/unalkalkan/bucketblob/internal/config"
	"github.com/unalkalkan/bucketblob/internal/logger"
	"github.com/unalkalkan/bucketblob/internal/storage"
	"github.com/unalkalkan/bucketblob/pkg/types"
)

var (
	cfgFile  string
	blobPath string

	store     *storage.BlobStore
	container *storage.BlobContainer
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:           "blobctl",
	Short:         "Inspect and manage blobs stored in a bucket",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}
		if err := logger.Setup(cfg.Log.Level, cfg.Log.Format, os.Stderr); err != nil {
			return err
		}

		path := cfg.Storage.BasePath
		if cmd.Flags().Changed("path") {
			path = blobPath
		}

		l := logger.WithValues(&log.Logger,
			"command", cmd.Name(),
			"bucket", cfg.Storage.Bucket,
			"path", path,
		)
		ctx := logger.WithContext(cmd.Context(), l)
		cmd.SetContext(ctx)

		store, err = storage.Open(ctx, cfg.Storage)
		if err != nil {
			return err
		}
		container = store.BlobContainer(types.ParseBlobPath(path))
		return nil
	},
}

// Execute runs the root command
func Execute() {
	if err := execute(context.Background()); err != nil {
		color.Red("%v", err)
		os.Exit(1)
	}
}

// execute runs the command and closes the store it opened, whether or not the command failed
func execute(ctx context.Context) error {
	err := rootCmd.ExecuteContext(ctx)
	if store != nil {
		if closeErr := store.Close(); err == nil {
			err = closeErr
		}
		store, container = nil, nil
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "config/blobctl.yaml", "config file")
	rootCmd.PersistentFlags().StringVarP(&blobPath, "path", "p", "", "blob path to operate on (default is storage.base_path)")
}
