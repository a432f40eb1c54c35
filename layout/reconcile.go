package layout

// ReconcileBars makes concurrent bars on all staves the same width, the
// widest any staff asks for. Staves that start late are first padded with
// synthetic bars so that bar lists line up index by index.
func (h *HLayout) ReconcileBars() {
	for _, id := range h.order {
		list := h.barData[id]
		if len(list) == 0 || list[0].BarNo < 0 {
			continue // nothing scanned, or padded already
		}
		pad := make(BarDataList, list[0].BarNo, list[0].BarNo+len(list))
		for i := range pad {
			pad[i] = BarData{
				BarNo:   -1,
				Start:   h.staves[id].Segment.Len(),
				X:       -1,
				Correct: true,
			}
		}
		h.barData[id] = append(pad, list...)
	}

	for barNo := 0; ; barNo++ {
		maxWidth := -1
		reachedEnd := true

		for _, id := range h.order {
			list := h.barData[id]
			if len(list) > barNo {
				reachedEnd = false
				if list[barNo].IdealWidth > maxWidth {
					maxWidth = list[barNo].IdealWidth
				}
			}
		}
		if reachedEnd {
			break
		}

		for _, id := range h.order {
			list := h.barData[id]
			if len(list) <= barNo {
				continue
			}
			bd := &list[barNo]
			if bd.IdealWidth == maxWidth {
				continue
			}
			// stretch the fixed-width items by half the bar's stretch
			if bd.IdealWidth > 0 {
				ratio := float64(maxWidth) / float64(bd.IdealWidth)
				bd.FixedWidth += int(float64(bd.FixedWidth) * (ratio - 1.0) / 2.0)
			}
			bd.IdealWidth = maxWidth
			bd.NeedsLayout = true
		}
	}
}
