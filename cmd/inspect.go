package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/chord"
	"github.com/jsphweid/hlayout/layout"
)

func init() {
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <score>",
	Short: "Inspects a laid out score",
	Long:  `Lays out a score and prints every event with its position and derived properties.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		inspect(args[0])
	},
}

func inspect(path string) {
	h := layout.New(loadComposition(path))
	h.LayoutAll()
	for _, staff := range h.Composition().Staves {
		fmt.Printf("staff: %v (%s)\n", staff.Name, staff.ID)
		seg := staff.Segment
		for i := 0; i < seg.Len(); i++ {
			e := seg.At(i)
			fmt.Printf("  x: %5d  %v\n", e.X, e)
			if e.Derived.Len() > 0 {
				fmt.Printf("           %s\n", e.DerivedString())
			}
			if c := chord.At(seg, i); c.Size() > 1 && c.IsFinal(i) {
				fmt.Printf("           chord: %v\n", chord.CreateChordKey(c.Pitches()))
			}
		}
		for _, b := range h.Beams(staff) {
			fmt.Printf("  beam %d: %d..%d (%d)\n", b.Group, b.StartX, b.EndX, b.Count)
		}
	}
}
