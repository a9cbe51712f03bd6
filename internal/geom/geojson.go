package geom

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"github.com/paulmach/orb/geojson"
)

// LoadGeo reads a GeoJSON file and returns Data (points, lines, polygons)
func LoadGeo(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseGeoJSON(data)
}

// ParseGeoJSON accepts a FeatureCollection, a Feature or a bare geometry.
func ParseGeoJSON(data []byte) (Data, error) {
	var probe struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(data, &probe); err != nil {
		return Data{}, fmt.Errorf("geojson: %w", err)
	}
	var d Data
	switch probe.Type {
	case "":
		return Data{}, errors.New("invalid geojson: missing type")
	case "FeatureCollection":
		fc, err := geojson.UnmarshalFeatureCollection(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		for _, f := range fc.Features {
			if f.Geometry != nil {
				d.add(f.Geometry)
			}
		}
	case "Feature":
		f, err := geojson.UnmarshalFeature(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		if f.Geometry != nil {
			d.add(f.Geometry)
		}
	default:
		g, err := geojson.UnmarshalGeometry(data)
		if err != nil {
			return Data{}, fmt.Errorf("geojson: %w", err)
		}
		d.add(g.Geometry())
	}
	if d.Empty() {
		return Data{}, fmt.Errorf("geojson: %w", ErrNoCoordinates)
	}
	return d, nil
}
