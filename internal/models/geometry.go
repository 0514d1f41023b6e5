package models

import (
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DefaultSRID is the spatial reference system for all stored geometry (WGS84).
const DefaultSRID = 4326

// Geometry validation errors.
var (
	ErrInvalidGeometry         = errors.New("invalid geometry")
	ErrUnsupportedGeometryType = errors.New("unsupported geometry type")
)

// Polygon represents a property boundary in SRID 4326.
// Coordinates follow the GeoJSON ring structure [rings][points][lon,lat],
// with one difference: the duplicated closing vertex is stripped, so rings
// are stored open. WKT re-closes them on encode; Scan and UnmarshalJSON
// accept both open and closed rings and normalize to open.
type Polygon struct {
	Coordinates [][][2]float64
	SRID        int
}

// NewPolygon builds a validated polygon from open or closed rings.
func NewPolygon(rings [][][2]float64) (*Polygon, error) {
	normalized, err := normalizeRings(rings)
	if err != nil {
		return nil, err
	}
	return &Polygon{Coordinates: normalized, SRID: DefaultSRID}, nil
}

// WKT encodes the polygon as geographic text for ST_GeomFromText.
// Each ring is re-closed by appending its first vertex.
func (p Polygon) WKT() (string, error) {
	rings, err := normalizeRings(p.Coordinates)
	if err != nil {
		return "", err
	}

	encoded := make([]string, 0, len(rings))
	for _, ring := range rings {
		points := make([]string, 0, len(ring)+1)
		for _, coord := range ring {
			points = append(points, formatCoord(coord))
		}
		// Close the ring
		points = append(points, formatCoord(ring[0]))
		encoded = append(encoded, "("+strings.Join(points, ",")+")")
	}

	return "POLYGON(" + strings.Join(encoded, ",") + ")", nil
}

// ParsePolygonWKT decodes geographic text produced by this codec (or the
// database) back into a polygon. Rings must arrive closed.
func ParsePolygonWKT(wkt string) (*Polygon, error) {
	trimmed := strings.TrimSpace(wkt)

	upper := strings.ToUpper(trimmed)
	if !strings.HasPrefix(upper, "POLYGON") {
		typeName := trimmed
		if idx := strings.IndexAny(trimmed, "( "); idx > 0 {
			typeName = trimmed[:idx]
		}
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedGeometryType, typeName)
	}

	body := strings.TrimSpace(trimmed[len("POLYGON"):])
	if !strings.HasPrefix(body, "(") || !strings.HasSuffix(body, ")") {
		return nil, fmt.Errorf("%w: malformed polygon text", ErrInvalidGeometry)
	}
	body = body[1 : len(body)-1]

	var rings [][][2]float64
	for _, rawRing := range splitRings(body) {
		ring, err := parseRing(rawRing)
		if err != nil {
			return nil, err
		}
		if ring[0] != ring[len(ring)-1] {
			return nil, fmt.Errorf("%w: ring is not closed", ErrInvalidGeometry)
		}
		rings = append(rings, ring)
	}

	return NewPolygon(rings)
}

// Scan implements sql.Scanner for geometry read back via ST_AsGeoJSON.
func (p *Polygon) Scan(value interface{}) error {
	if value == nil {
		return nil
	}

	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return fmt.Errorf("failed to scan Polygon: expected []byte or string, got %T", value)
	}

	return p.UnmarshalJSON(data)
}

// MarshalJSON emits the GeoJSON-style structure consumed by map clients.
// Rings are emitted open (closing vertex stripped).
func (p Polygon) MarshalJSON() ([]byte, error) {
	geom := struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}{
		Type:        "Polygon",
		Coordinates: p.Coordinates,
	}
	return json.Marshal(geom)
}

// UnmarshalJSON parses a GeoJSON-style polygon, validating type, vertex
// count and coordinate finiteness.
func (p *Polygon) UnmarshalJSON(data []byte) error {
	var geom struct {
		Type        string         `json:"type"`
		Coordinates [][][2]float64 `json:"coordinates"`
	}

	if err := json.Unmarshal(data, &geom); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	if geom.Type != "Polygon" {
		return fmt.Errorf("%w: %s", ErrUnsupportedGeometryType, geom.Type)
	}

	normalized, err := normalizeRings(geom.Coordinates)
	if err != nil {
		return err
	}

	p.Coordinates = normalized
	p.SRID = DefaultSRID
	return nil
}

// normalizeRings strips closing vertices and enforces the ring invariants:
// at least 3 distinct vertices and only finite coordinate values.
func normalizeRings(rings [][][2]float64) ([][][2]float64, error) {
	if len(rings) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}

	normalized := make([][][2]float64, 0, len(rings))
	for _, ring := range rings {
		for _, coord := range ring {
			if !isFinite(coord[0]) || !isFinite(coord[1]) {
				return nil, fmt.Errorf("%w: coordinate is not a finite number", ErrInvalidGeometry)
			}
		}

		// Strip the duplicated closing vertex if the caller closed the ring
		if len(ring) >= 2 && ring[0] == ring[len(ring)-1] {
			ring = ring[:len(ring)-1]
		}

		if countDistinct(ring) < 3 {
			return nil, fmt.Errorf("%w: ring needs at least 3 distinct vertices", ErrInvalidGeometry)
		}

		normalized = append(normalized, ring)
	}

	return normalized, nil
}

func countDistinct(ring [][2]float64) int {
	seen := make(map[[2]float64]struct{}, len(ring))
	for _, coord := range ring {
		seen[coord] = struct{}{}
	}
	return len(seen)
}

func isFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func formatCoord(coord [2]float64) string {
	return strconv.FormatFloat(coord[0], 'f', -1, 64) + " " + strconv.FormatFloat(coord[1], 'f', -1, 64)
}

// splitRings splits "(...),(...)" into its parenthesized ring bodies.
func splitRings(body string) []string {
	var rings []string
	depth := 0
	start := 0
	for i, r := range body {
		switch r {
		case '(':
			if depth == 0 {
				start = i + 1
			}
			depth++
		case ')':
			depth--
			if depth == 0 {
				rings = append(rings, body[start:i])
			}
		}
	}
	return rings
}

func parseRing(raw string) ([][2]float64, error) {
	var ring [][2]float64
	for _, pair := range strings.Split(raw, ",") {
		fields := strings.Fields(pair)
		if len(fields) != 2 {
			return nil, fmt.Errorf("%w: malformed coordinate pair %q", ErrInvalidGeometry, pair)
		}
		lon, err := strconv.ParseFloat(fields[0], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		lat, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
		}
		ring = append(ring, [2]float64{lon, lat})
	}
	if len(ring) == 0 {
		return nil, fmt.Errorf("%w: empty ring", ErrInvalidGeometry)
	}
	return ring, nil
}
