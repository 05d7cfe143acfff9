package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/neex-build/neex/internal/hashing"
	"github.com/neex-build/neex/internal/turbopath"
)

func buildHashCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash <file>",
		Short: "Print a single file's combined content hash",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			abs, err := filepath.Abs(args[0])
			if err != nil {
				return err
			}
			fh, err := hashing.HashFileCombined(turbopath.AbsoluteSystemPathFromUpstream(abs))
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), fh.Digest)
			return nil
		},
	}
}
