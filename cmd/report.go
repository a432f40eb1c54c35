package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jsphweid/hlayout/layout"
	"github.com/jsphweid/hlayout/util"
)

func init() {
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report <score>",
	Short: "Creates a layout report",
	Long:  `Lays out a score and reports bar width statistics per staff.`,
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		printReport(report(layout.New(loadComposition(args[0]))))
	},
}

type staffReport struct {
	name         string
	numBars      int
	numPadding   int
	numIncorrect int
	numBeams     int
	widths       []int
}

type layoutReport struct {
	totalWidth int
	staves     []staffReport
}

func report(h *layout.HLayout) layoutReport {
	h.LayoutAll()
	r := layoutReport{totalWidth: h.TotalWidth()}
	for _, staff := range h.Composition().Staves {
		sr := staffReport{name: staff.Name, numBeams: len(h.Beams(staff))}
		for _, bd := range h.BarData(staff) {
			if bd.BarNo < 0 {
				sr.numPadding++
				continue
			}
			sr.numBars++
			sr.widths = append(sr.widths, bd.IdealWidth)
			if !bd.Correct {
				sr.numIncorrect++
			}
		}
		r.staves = append(r.staves, sr)
	}
	return r
}

func printReport(r layoutReport) {
	fmt.Printf("Total width: %d\n", r.totalWidth)
	for _, sr := range r.staves {
		fmt.Printf("\n%s\n", sr.name)
		fmt.Printf("  bars: %d (%d padding, %d starting mid-bar)\n", sr.numBars, sr.numPadding, sr.numIncorrect)
		if len(sr.widths) > 0 {
			widest, _ := util.MaxOf(sr.widths)
			avg := float32(util.Sum(sr.widths)) / float32(len(sr.widths))
			fmt.Printf("  widths: avg %.1f, max %d\n", avg, widest)
		}
		fmt.Printf("  beams: %d\n", sr.numBeams)
	}
}
