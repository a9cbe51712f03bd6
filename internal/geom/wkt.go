package geom

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/encoding/wkt"

	"trailmap/internal/geo"
)

// ParseWKTData parses any WKT geometry orb understands.
func ParseWKTData(s string) (Data, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return Data{}, errors.New("empty wkt")
	}
	g, err := wkt.Unmarshal(s)
	if err != nil {
		return Data{}, fmt.Errorf("wkt: %w", err)
	}
	var d Data
	d.add(g)
	if d.Empty() {
		return Data{}, fmt.Errorf("wkt: %w", ErrNoCoordinates)
	}
	return d, nil
}

func LoadWKT(path string) (Data, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Data{}, err
	}
	return ParseWKTData(string(data))
}

// PathWKT renders a drawn path as a WKT LINESTRING in lon/lat order.
func PathWKT(pts []geo.GeoPoint) string {
	ls := make(orb.LineString, len(pts))
	for i, p := range pts {
		ls[i] = toOrb(p)
	}
	return wkt.MarshalString(ls)
}
