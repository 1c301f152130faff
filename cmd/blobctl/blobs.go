package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/unalkalkan/bucketblob/internal/logger"
	"github.com/unalkalkan/bucketblob/internal/storage"
)

var lsCmd = &cobra.Command{
	Use:   "ls [prefix]",
	Short: "List blobs under the path",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dirs, _ := cmd.Flags().GetBool("dirs")
		if dirs {
			names, err := container.ChildNames(cmd.Context())
			if err != nil {
				return err
			}
			for _, name := range names {
				color.Cyan("%s/", name)
			}
			return nil
		}

		prefix := ""
		if len(args) == 1 {
			prefix = args[0]
		}
		blobs, err := container.ListBlobsByPrefix(cmd.Context(), prefix)
		if err != nil {
			return err
		}

		names := make([]string, 0, len(blobs))
		for name := range blobs {
			names = append(names, name)
		}
		sort.Strings(names)
		for _, name := range names {
			fmt.Fprintf(cmd.OutOrStdout(), "%12d  %s\n", blobs[name].Length, name)
		}
		return nil
	},
}

var catCmd = &cobra.Command{
	Use:   "cat <name>",
	Short: "Write a blob to stdout",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		rc, err := container.ReadBlob(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		defer rc.Close()

		_, err = io.Copy(cmd.OutOrStdout(), rc)
		return err
	},
}

var putCmd = &cobra.Command{
	Use:   "put <name> <file>",
	Short: "Upload a local file as a blob",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		noOverwrite, _ := cmd.Flags().GetBool("no-overwrite")

		file, err := os.Open(args[1])
		if err != nil {
			return err
		}
		defer file.Close()

		info, err := file.Stat()
		if err != nil {
			return err
		}

		if err := container.WriteBlob(cmd.Context(), args[0], file, info.Size(), noOverwrite); err != nil {
			return err
		}
		color.Green("wrote %s (%d bytes)", args[0], info.Size())
		return nil
	},
}

var rmCmd = &cobra.Command{
	Use:   "rm <name>...",
	Short: "Delete blobs",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		force, _ := cmd.Flags().GetBool("force")
		if force || len(args) > 1 {
			if err := container.DeleteBlobsIgnoringIfNotExists(cmd.Context(), args); err != nil {
				return err
			}
		} else if err := container.DeleteBlob(cmd.Context(), args[0]); err != nil {
			return err
		}
		color.Green("deleted %d blob(s)", len(args))
		return nil
	},
}

var rmdirCmd = &cobra.Command{
	Use:   "rmdir",
	Short: "Delete every blob under the path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := container.Delete(cmd.Context()); err != nil {
			return err
		}
		color.Green("deleted %s", container.Path())
		return nil
	},
}

var mvCmd = &cobra.Command{
	Use:   "mv <source> <target>",
	Short: "Move a blob by copying it and deleting the source",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		err := container.Move(cmd.Context(), args[0], args[1])
		var moveErr *storage.MoveError
		if errors.As(err, &moveErr) && moveErr.Copied {
			logger.FromContext(cmd.Context()).Warn().
				Str("source", moveErr.Source).
				Str("target", moveErr.Target).
				Msg("blob duplicated by partial move")
			color.Yellow("%s was copied to %s but the source could not be removed", args[0], args[1])
		}
		if err != nil {
			return err
		}
		color.Green("moved %s -> %s", args[0], args[1])
		return nil
	},
}

func init() {
	lsCmd.Flags().BoolP("dirs", "d", false, "list immediate sub-paths instead of blobs")
	putCmd.Flags().Bool("no-overwrite", false, "fail if the blob already exists")
	rmCmd.Flags().BoolP("force", "f", false, "ignore missing blobs")

	rootCmd.AddCommand(lsCmd, catCmd, putCmd, rmCmd, rmdirCmd, mvCmd)
}
