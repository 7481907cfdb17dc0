package domain

// PointRecord is one geolocated snippet as served by the feed.
type PointRecord struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description,omitempty"`
	Language    string `json:"language"`
	Author      string `json:"author"`
	PubDate     string `json:"pub_date"`
	VisitCount  int    `json:"visit_count"`
	Position    LatLng `json:"position"`
	// HasPoint is false when the feature carried no usable point geometry.
	// Such records count towards totals but are not drawn.
	HasPoint bool `json:"has_point"`
	// LocalID marks an ID assigned by the client to a feature that carried
	// none. The server cannot address such records, so they are read-only.
	LocalID bool `json:"-"`
}

// Feed is a snapshot of the server's current point records, one per feature.
type Feed struct {
	Records []PointRecord
}

// Len returns the number of features in the feed.
func (f *Feed) Len() int {
	if f == nil {
		return 0
	}
	return len(f.Records)
}

// LessID is the feed order of record ids: all-digit ids first, shorter
// before longer, then bytewise. The SQL store orders the same way.
func LessID(a, b string) bool {
	da, db := allDigits(a), allDigits(b)
	if da != db {
		return da
	}
	if da && len(a) != len(b) {
		return len(a) < len(b)
	}
	return a < b
}

func allDigits(s string) bool {
	if s == "" {
		return false
	}
	for i := 0; i < len(s); i++ {
		if s[i] < '0' || s[i] > '9' {
			return false
		}
	}
	return true
}
