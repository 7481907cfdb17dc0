package snippetapi

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/samirrijal/snippetmap/internal/core/domain"
)

// DecodeFeed parses a GeoJSON FeatureCollection into point records. A body
// that is not JSON or lacks a features array yields ErrMalformedFeed.
// Features whose geometry is missing or not a valid point are kept with
// HasPoint unset. Features without an id or pk get a local "anon-<index>"
// id so every feature keeps its own marker.
func DecodeFeed(body []byte) (*domain.Feed, error) {
	var probe struct {
		Features json.RawMessage `json:"features"`
	}
	if err := json.Unmarshal(body, &probe); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFeed, err)
	}
	raw := bytes.TrimSpace(probe.Features)
	if len(raw) == 0 || raw[0] != '[' {
		return nil, fmt.Errorf("%w: features is not an array", domain.ErrMalformedFeed)
	}
	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrMalformedFeed, err)
	}

	feed := &domain.Feed{Records: make([]domain.PointRecord, 0, len(items))}
	anonymous := 0
	for i, item := range items {
		r := decodeFeature(item)
		if r.ID == "" {
			r.ID = fmt.Sprintf("anon-%d", i)
			r.LocalID = true
			anonymous++
		}
		feed.Records = append(feed.Records, r)
	}
	if anonymous > 0 {
		slog.Warn("feed features without id", "count", anonymous)
	}
	return feed, nil
}

func decodeFeature(raw json.RawMessage) domain.PointRecord {
	f, err := geojson.UnmarshalFeature(raw)
	if err != nil {
		// Bad geometry: keep id and properties so the record still counts.
		var loose struct {
			ID         any            `json:"id"`
			Properties map[string]any `json:"properties"`
		}
		_ = json.Unmarshal(raw, &loose)
		return recordFrom(loose.ID, loose.Properties, nil)
	}
	return recordFrom(f.ID, f.Properties, f.Geometry)
}

func recordFrom(id any, props map[string]any, g orb.Geometry) domain.PointRecord {
	r := domain.PointRecord{
		ID:          scalarString(id),
		Title:       stringProp(props, "title"),
		Description: stringProp(props, "description"),
		Language:    stringProp(props, "language"),
		Author:      authorName(props["author"]),
		PubDate:     stringProp(props, "pub_date"),
	}
	if r.ID == "" {
		r.ID = scalarString(props["pk"])
	}
	if v, ok := props["visit_count"]; ok && v != nil {
		r.VisitCount = intValue(v)
	} else {
		r.VisitCount = intValue(props["cont_visited"])
	}

	if pt, ok := g.(orb.Point); ok {
		pos := domain.LatLng{Lat: pt.Lat(), Lng: pt.Lon()}
		if pos.Valid() {
			r.Position = pos
			r.HasPoint = true
		}
	}
	return r
}

func stringProp(props map[string]any, key string) string {
	s, _ := props[key].(string)
	return s
}

// authorName accepts a plain name, a numeric id or a serialized user object.
func authorName(v any) string {
	switch a := v.(type) {
	case map[string]any:
		if u, ok := a["username"].(string); ok {
			return u
		}
		return ""
	default:
		return scalarString(v)
	}
}

func scalarString(v any) string {
	switch x := v.(type) {
	case string:
		return x
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case bool:
		return strconv.FormatBool(x)
	default:
		return ""
	}
}

func intValue(v any) int {
	switch x := v.(type) {
	case float64:
		return int(x)
	case string:
		n, _ := strconv.Atoi(strings.TrimSpace(x))
		return n
	default:
		return 0
	}
}

// EncodeFeed renders records in the wire format of the snippets application:
// numeric ids at the top level and as properties.pk, the author as a user
// object and the visit count as cont_visited.
func EncodeFeed(records []domain.PointRecord) ([]byte, error) {
	fc := geojson.NewFeatureCollection()
	for _, r := range records {
		var f *geojson.Feature
		if r.HasPoint {
			f = geojson.NewFeature(orb.Point{r.Position.Lng, r.Position.Lat})
		} else {
			f = &geojson.Feature{Type: "Feature", Properties: geojson.Properties{}}
		}
		if n, err := strconv.ParseInt(r.ID, 10, 64); err == nil {
			f.ID = n
		} else {
			f.ID = r.ID
		}
		f.Properties["pk"] = f.ID
		f.Properties["title"] = r.Title
		f.Properties["language"] = r.Language
		f.Properties["description"] = r.Description
		f.Properties["pub_date"] = r.PubDate
		f.Properties["author"] = map[string]any{"username": r.Author}
		f.Properties["cont_visited"] = r.VisitCount
		fc.Append(f)
	}
	return fc.MarshalJSON()
}
