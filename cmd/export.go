package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/lilypond"
)

var exportOut string

func init() {
	exportCmd.Flags().StringVarP(&exportOut, "output", "o", "", "output .ly path (default: next to the input)")
	rootCmd.AddCommand(exportCmd)
}

var exportCmd = &cobra.Command{
	Use:   "export <score>",
	Short: "Exports a score to LilyPond",
	Long:  `Exports a score (.json, .mid) to LilyPond source.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if !export(args[0], exportOut) {
			os.Exit(1)
		}
	},
}

func export(in, out string) bool {
	if out == "" {
		out = strings.TrimSuffix(in, filepath.Ext(in)) + ".ly"
	}
	err := lilypond.New(loadComposition(in)).WriteFile(out)
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		return false
	}
	fmt.Printf("Exported %s\n", out)
	return true
}
