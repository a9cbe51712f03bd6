package geom

import (
	"encoding/xml"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/paulmach/orb"
)

type kmlCoords struct {
	Coordinates string `xml:"coordinates"`
}

type kmlPlacemark struct {
	Point      *kmlCoords `xml:"Point"`
	LineString *kmlCoords `xml:"LineString"`
	Polygon    *struct {
		Outer kmlCoords `xml:"outerBoundaryIs>LinearRing"`
	} `xml:"Polygon"`
}

// LoadKML extracts Point, LineString and Polygon outer rings from every
// Placemark in a KML file, however deeply it is nested in folders.
func LoadKML(path string) (Data, error) {
	f, err := os.Open(path)
	if err != nil {
		return Data{}, err
	}
	defer f.Close()
	return ParseKML(f)
}

func ParseKML(r io.Reader) (Data, error) {
	dec := xml.NewDecoder(r)
	var d Data
	for {
		tok, err := dec.Token()
		if err == io.EOF {
			break
		}
		if err != nil {
			return Data{}, err
		}
		se, ok := tok.(xml.StartElement)
		if !ok || se.Name.Local != "Placemark" {
			continue
		}
		var pm kmlPlacemark
		if err := dec.DecodeElement(&pm, &se); err != nil {
			return Data{}, err
		}
		if pm.Point != nil {
			for _, p := range parseKMLCoords(pm.Point.Coordinates) {
				d.addPoint(p)
			}
		}
		if pm.LineString != nil {
			d.addLine(parseKMLCoords(pm.LineString.Coordinates))
		}
		if pm.Polygon != nil {
			if ring := parseKMLCoords(pm.Polygon.Outer.Coordinates); len(ring) > 0 {
				d.addPolygon(orb.Polygon{orb.Ring(ring)})
			}
		}
	}
	if d.Empty() {
		return Data{}, fmt.Errorf("kml: %w", ErrNoCoordinates)
	}
	return d, nil
}

// KML coordinates are "lon,lat[,alt]" tuples separated by whitespace; altitude is ignored.
func parseKMLCoords(s string) []orb.Point {
	var out []orb.Point
	for _, tuple := range strings.Fields(s) {
		vals := strings.Split(tuple, ",")
		if len(vals) < 2 {
			continue
		}
		lon, err1 := strconv.ParseFloat(strings.TrimSpace(vals[0]), 64)
		lat, err2 := strconv.ParseFloat(strings.TrimSpace(vals[1]), 64)
		if err1 != nil || err2 != nil {
			continue
		}
		out = append(out, orb.Point{lon, lat})
	}
	return out
}
