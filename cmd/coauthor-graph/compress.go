// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/coauthor-graph/internal/source"
)

var compressCmd = &cobra.Command{
	Use:   "compress <file> [dest]",
	Short: "Repair a GraphML file and write a gzip copy",
	Long: `Compress repairs a local GraphML file and writes it gzipped to dest
(<file>.gz by default). The written file is read back and its structure
checked before the sizes and compression ratio are printed.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runCompress,
}

func runCompress(cmd *cobra.Command, args []string) error {
	dst := ""
	if len(args) > 1 {
		dst = args[1]
	}

	result, err := source.Compress(args[0], dst)
	if err != nil {
		return err
	}
	logger.Info("compressed graph",
		"source", result.Source,
		"dest", result.Dest,
		"original_bytes", result.OriginalSize,
		"compressed_bytes", result.CompressedSize,
	)
	fmt.Fprintln(cmd.OutOrStdout(), result.Summary())
	if !result.After.Complete() {
		return fmt.Errorf("%s: compressed document is missing closing tags", result.Dest)
	}
	return nil
}

func init() {
	rootCmd.AddCommand(compressCmd)
}
