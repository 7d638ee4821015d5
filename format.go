package main

import (
	contextpkg "context"
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/tminor/lspjust/implementation"
)

var formatCommand = &cobra.Command{
	Use:   "format [path]",
	Short: "Format one Justfile the way the server would and print the replacement text",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		path, err := filepath.Abs(args[0])
		if err != nil {
			return err
		}

		sink, err := newSink()
		if err != nil {
			return err
		}

		formatter := implementation.NewFormatter(justPath, implementation.ExecRunner{Timeout: timeout}, sink.Log)
		edits, err := formatter.FormatPath(contextpkg.Background(), path)
		if err != nil {
			return err
		}

		for _, edit := range edits {
			fmt.Fprint(cmd.OutOrStdout(), edit.NewText)
		}
		return nil
	},
}
