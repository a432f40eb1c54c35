package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/layout"
)

var layoutJSON bool

func init() {
	layoutCmd.Flags().BoolVar(&layoutJSON, "json", false, "print the layout as JSON")
	rootCmd.AddCommand(layoutCmd)
}

var layoutCmd = &cobra.Command{
	Use:   "layout <score>",
	Short: "Lays out a score",
	Long:  `Lays out a score (.json, .mid) and prints each staff's bars.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		runLayout(args[0])
	},
}

func runLayout(path string) {
	h := layout.New(loadComposition(path))
	h.LayoutAll()

	if layoutJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		cobra.CheckErr(enc.Encode(h.Response()))
		return
	}

	comp := h.Composition()
	fmt.Printf("%s: %d staves, total width %d\n", comp.Name, len(comp.Staves), h.TotalWidth())
	for _, staff := range comp.Staves {
		fmt.Printf("\n%s (width %d)\n", staff.Name, h.StaffWidth(staff))
		fmt.Printf("%6s %8s %8s %8s %s\n", "bar", "x", "width", "fixed", "")
		for _, bd := range h.BarData(staff) {
			if bd.BarNo < 0 {
				continue
			}
			mark := ""
			if !bd.Correct {
				mark = "(starts mid-bar)"
			}
			fmt.Printf("%6d %8d %8d %8d %s\n", bd.BarNo+1, bd.X, bd.IdealWidth, bd.FixedWidth, mark)
		}
	}
}
