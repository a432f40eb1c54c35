package constants

import (
	"os"
	"time"

	"github.com/jsphweid/hlayout/model"
)

func GetMetricsPath() string {
	return os.Getenv("HLAYOUT_METRICS")
}

func GetListenAddr() string {
	addr := os.Getenv("HLAYOUT_ADDR")
	if addr != "" {
		return addr
	}
	return ":8080"
}

const Version = "0.3.0"

// width substituted for events the width estimator has no case for
const DefaultMinWidth = 24

// Bars with fewer than this many copies of their shortest note get less
// slack per note. Empirical tuning, not a notation rule.
const ShortCountThreshold = 3

const MaxDots = 2

// NOTE: the smallest unit a late-starting voice is padded with on export
const MinSkipNoteType = model.ThirtySecondNote

const RelayoutDelay = 150 * time.Millisecond
