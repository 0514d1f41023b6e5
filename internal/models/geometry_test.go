package models

import (
	"encoding/json"
	"errors"
	"math"
	"testing"
)

// The reference ring used across tests: a square over central Brazil,
// open (no duplicated closing vertex).
var squareRing = [][2]float64{
	{-47.0, -15.0},
	{-47.0, -14.0},
	{-46.0, -14.0},
	{-46.0, -15.0},
}

func TestPolygonWKTRoundTrip(t *testing.T) {
	poly, err := NewPolygon([][][2]float64{squareRing})
	if err != nil {
		t.Fatalf("NewPolygon() unexpected error: %v", err)
	}

	wkt, err := poly.WKT()
	if err != nil {
		t.Fatalf("WKT() unexpected error: %v", err)
	}

	want := "POLYGON((-47 -15,-47 -14,-46 -14,-46 -15,-47 -15))"
	if wkt != want {
		t.Errorf("WKT() = %q, want %q", wkt, want)
	}

	decoded, err := ParsePolygonWKT(wkt)
	if err != nil {
		t.Fatalf("ParsePolygonWKT() unexpected error: %v", err)
	}

	if len(decoded.Coordinates) != 1 {
		t.Fatalf("expected 1 ring, got %d", len(decoded.Coordinates))
	}
	ring := decoded.Coordinates[0]
	if len(ring) != len(squareRing) {
		t.Fatalf("expected %d vertices after stripping closing vertex, got %d", len(squareRing), len(ring))
	}
	for i, coord := range ring {
		if coord != squareRing[i] {
			t.Errorf("vertex %d = %v, want %v", i, coord, squareRing[i])
		}
	}
}

func TestNewPolygonValidation(t *testing.T) {
	tests := []struct {
		name    string
		rings   [][][2]float64
		wantErr error
	}{
		{
			name:    "no rings",
			rings:   nil,
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "two vertices",
			rings:   [][][2]float64{{{-47, -15}, {-46, -14}}},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "three vertices but only two distinct",
			rings: [][][2]float64{
				{{-47, -15}, {-46, -14}, {-47, -15}, {-46, -14}},
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "NaN coordinate",
			rings: [][][2]float64{
				{{math.NaN(), -15}, {-47, -14}, {-46, -14}},
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name: "infinite coordinate",
			rings: [][][2]float64{
				{{math.Inf(1), -15}, {-47, -14}, {-46, -14}},
			},
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "valid open ring",
			rings:   [][][2]float64{squareRing},
			wantErr: nil,
		},
		{
			name: "valid closed ring is normalized",
			rings: [][][2]float64{
				{{-47, -15}, {-47, -14}, {-46, -14}, {-46, -15}, {-47, -15}},
			},
			wantErr: nil,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			poly, err := NewPolygon(tt.rings)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Fatalf("expected %v, got %v", tt.wantErr, err)
				}
				return
			}

			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			// Closing vertex must never survive normalization
			ring := poly.Coordinates[0]
			if ring[0] == ring[len(ring)-1] {
				t.Error("closing vertex was not stripped")
			}
			if poly.SRID != DefaultSRID {
				t.Errorf("SRID = %d, want %d", poly.SRID, DefaultSRID)
			}
		})
	}
}

func TestParsePolygonWKTErrors(t *testing.T) {
	tests := []struct {
		name    string
		wkt     string
		wantErr error
	}{
		{
			name:    "point geometry",
			wkt:     "POINT(-47 -15)",
			wantErr: ErrUnsupportedGeometryType,
		},
		{
			name:    "linestring geometry",
			wkt:     "LINESTRING(-47 -15,-46 -14)",
			wantErr: ErrUnsupportedGeometryType,
		},
		{
			name:    "unclosed ring",
			wkt:     "POLYGON((-47 -15,-47 -14,-46 -14,-46 -15))",
			wantErr: ErrInvalidGeometry,
		},
		{
			name:    "malformed coordinate pair",
			wkt:     "POLYGON((-47 -15,-47,-46 -14,-47 -15))",
			wantErr: ErrInvalidGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParsePolygonWKT(tt.wkt); !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePolygonWKT(%q) error = %v, want %v", tt.wkt, err, tt.wantErr)
			}
		})
	}
}

func TestPolygonScan(t *testing.T) {
	t.Run("closed GeoJSON ring from ST_AsGeoJSON", func(t *testing.T) {
		geojson := `{"type":"Polygon","coordinates":[[[-47,-15],[-47,-14],[-46,-14],[-46,-15],[-47,-15]]]}`

		var p Polygon
		if err := p.Scan([]byte(geojson)); err != nil {
			t.Fatalf("Scan() unexpected error: %v", err)
		}

		if len(p.Coordinates[0]) != 4 {
			t.Errorf("expected 4 vertices after stripping closing vertex, got %d", len(p.Coordinates[0]))
		}
	})

	t.Run("nil value leaves polygon empty", func(t *testing.T) {
		var p Polygon
		if err := p.Scan(nil); err != nil {
			t.Fatalf("Scan(nil) unexpected error: %v", err)
		}
		if p.Coordinates != nil {
			t.Errorf("expected empty coordinates, got %v", p.Coordinates)
		}
	})

	t.Run("non-polygon type rejected", func(t *testing.T) {
		geojson := `{"type":"MultiPolygon","coordinates":[]}`

		var p Polygon
		if err := p.Scan([]byte(geojson)); !errors.Is(err, ErrUnsupportedGeometryType) {
			t.Errorf("expected ErrUnsupportedGeometryType, got %v", err)
		}
	})

	t.Run("unexpected source type rejected", func(t *testing.T) {
		var p Polygon
		if err := p.Scan(42); err == nil {
			t.Error("expected error for int source, got nil")
		}
	})
}

func TestPolygonJSONRoundTrip(t *testing.T) {
	poly, err := NewPolygon([][][2]float64{squareRing})
	if err != nil {
		t.Fatalf("NewPolygon() unexpected error: %v", err)
	}

	data, err := json.Marshal(poly)
	if err != nil {
		t.Fatalf("Marshal() unexpected error: %v", err)
	}

	var decoded Polygon
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal() unexpected error: %v", err)
	}

	if len(decoded.Coordinates) != 1 || len(decoded.Coordinates[0]) != 4 {
		t.Fatalf("round trip changed shape: %v", decoded.Coordinates)
	}
	for i, coord := range decoded.Coordinates[0] {
		if coord != squareRing[i] {
			t.Errorf("vertex %d = %v, want %v", i, coord, squareRing[i])
		}
	}
}

func TestPolygonUnmarshalJSONErrors(t *testing.T) {
	tests := []struct {
		name    string
		data    string
		wantErr error
	}{
		{
			name:    "wrong type",
			data:    `{"type":"LineString","coordinates":[[[-47,-15],[-46,-14]]]}`,
			wantErr: ErrUnsupportedGeometryType,
		},
		{
			name:    "too few vertices",
			data:    `{"type":"Polygon","coordinates":[[[-47,-15],[-46,-14]]]}`,
			wantErr: ErrInvalidGeometry,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var p Polygon
			if err := json.Unmarshal([]byte(tt.data), &p); !errors.Is(err, tt.wantErr) {
				t.Errorf("Unmarshal error = %v, want %v", err, tt.wantErr)
			}
		})
	}

	t.Run("not JSON at all", func(t *testing.T) {
		var p Polygon
		if err := p.UnmarshalJSON([]byte("POLYGON((0 0,1 1,1 0,0 0))")); !errors.Is(err, ErrInvalidGeometry) {
			t.Errorf("expected ErrInvalidGeometry, got %v", err)
		}
	})
}
