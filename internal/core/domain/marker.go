package domain

// MarkerStyle is the drawing style of a circle marker.
type MarkerStyle struct {
	Radius      int     `json:"radius"`
	FillColor   string  `json:"fill_color"`
	Color       string  `json:"color"`
	Weight      int     `json:"weight"`
	Opacity     float64 `json:"opacity"`
	FillOpacity float64 `json:"fill_opacity"`
	Dashed      bool    `json:"dashed"`
}

// Popup is the summary shown when a marker is opened.
type Popup struct {
	Title       string `json:"title"`
	Language    string `json:"language"`
	BadgeColor  string `json:"badge_color"`
	Description string `json:"description,omitempty"`
	Author      string `json:"author"`
	PubDate     string `json:"pub_date"`
	Visits      int    `json:"visits"`
	// Editable exposes the "edit coordinates" control.
	Editable bool `json:"editable"`
}

// MarkerView is the on-map projection of a PointRecord.
type MarkerView struct {
	Record    *PointRecord
	Position  LatLng
	Style     MarkerStyle
	Popup     Popup
	Tooltip   string
	Draggable bool
	Pending   bool
}

// ID returns the identifier of the backing record.
func (m *MarkerView) ID() string {
	if m == nil || m.Record == nil {
		return ""
	}
	return m.Record.ID
}

// LegendRow is one language entry of the legend.
type LegendRow struct {
	Language string `json:"language"`
	Color    string `json:"color"`
	Count    int    `json:"count"`
}

// Legend is the derived per-language summary of the loaded feed. When Rows
// is empty, Placeholder holds the text to display instead.
type Legend struct {
	Rows        []LegendRow `json:"rows"`
	Placeholder string      `json:"placeholder,omitempty"`
}

// Sum returns the sum of all row counts.
func (l Legend) Sum() int {
	n := 0
	for _, r := range l.Rows {
		n += r.Count
	}
	return n
}
