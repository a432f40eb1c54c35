package model

type BarLayout struct {
	Number     int  `json:"number"`
	X          int  `json:"x"`
	Width      int  `json:"width"`
	FixedWidth int  `json:"fixed_width"`
	Correct    bool `json:"correct"`
}

type ElementLayout struct {
	Type              EventType `json:"type"`
	Time              Time      `json:"time"`
	X                 int       `json:"x"`
	Height            *int      `json:"height,omitempty"`
	DisplayAccidental string    `json:"display_accidental,omitempty"`
	MinWidth          int       `json:"min_width"`
}

type StaffLayout struct {
	ID       string          `json:"id"`
	Name     string          `json:"name"`
	Bars     []BarLayout     `json:"bars"`
	Elements []ElementLayout `json:"elements"`
}

type LayoutResponse struct {
	TotalWidth int           `json:"total_width"`
	Staves     []StaffLayout `json:"staves"`
}

type RemoveEventsResponse struct {
	Removed int `json:"removed"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
