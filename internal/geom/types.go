package geom

import (
	"errors"
	"fmt"

	"github.com/paulmach/orb"

	"trailmap/internal/geo"
)

// ErrNoCoordinates is returned when a source holds no usable lon/lat pair.
var ErrNoCoordinates = errors.New("no valid coordinates")

// Data is a minimal geometry container for reference layers
type Data struct {
	Points   []geo.GeoPoint
	Lines    [][]geo.GeoPoint
	Polygons [][][]geo.GeoPoint // polygons with rings (first outer, following holes)
	Bound    orb.Bound
	n        int
}

func (d Data) Empty() bool {
	return len(d.Points) == 0 && len(d.Lines) == 0 && len(d.Polygons) == 0
}

func (d Data) Counts() string {
	return fmt.Sprintf("pts=%d ls=%d poly=%d", len(d.Points), len(d.Lines), len(d.Polygons))
}

// Paths flattens lines and polygon rings into drawable polylines.
func (d Data) Paths() [][]geo.GeoPoint {
	out := make([][]geo.GeoPoint, 0, len(d.Lines)+len(d.Polygons))
	out = append(out, d.Lines...)
	for _, poly := range d.Polygons {
		out = append(out, poly...)
	}
	return out
}

func (d *Data) extend(p orb.Point) {
	if d.n == 0 {
		d.Bound = orb.Bound{Min: p, Max: p}
	} else {
		d.Bound = d.Bound.Extend(p)
	}
	d.n++
}

// usable rejects non-finite and out-of-range coordinates, e.g. projected
// meters or swapped columns. They cannot be placed on a Web Mercator map.
func usable(p orb.Point) bool {
	return toGeo(p).Valid()
}

func (d *Data) addPoint(p orb.Point) {
	if !usable(p) {
		return
	}
	d.extend(p)
	d.Points = append(d.Points, toGeo(p))
}

func (d *Data) addLine(ls []orb.Point) {
	var line []geo.GeoPoint
	for _, p := range ls {
		if !usable(p) {
			continue
		}
		d.extend(p)
		line = append(line, toGeo(p))
	}
	if len(line) > 0 {
		d.Lines = append(d.Lines, line)
	}
}

func (d *Data) addPolygon(poly orb.Polygon) {
	var rings [][]geo.GeoPoint
	for _, ring := range poly {
		var r []geo.GeoPoint
		for _, p := range ring {
			if !usable(p) {
				continue
			}
			d.extend(p)
			r = append(r, toGeo(p))
		}
		if len(r) > 0 {
			rings = append(rings, r)
		}
	}
	if len(rings) > 0 {
		d.Polygons = append(d.Polygons, rings)
	}
}

// add walks any orb geometry into d.
func (d *Data) add(g orb.Geometry) {
	switch g := g.(type) {
	case orb.Point:
		d.addPoint(g)
	case orb.MultiPoint:
		for _, p := range g {
			d.addPoint(p)
		}
	case orb.LineString:
		d.addLine(g)
	case orb.MultiLineString:
		for _, ls := range g {
			d.addLine(ls)
		}
	case orb.Ring:
		d.addLine(g)
	case orb.Polygon:
		d.addPolygon(g)
	case orb.MultiPolygon:
		for _, poly := range g {
			d.addPolygon(poly)
		}
	case orb.Collection:
		for _, sub := range g {
			d.add(sub)
		}
	}
}

// orb points are [lon, lat]
func toGeo(p orb.Point) geo.GeoPoint {
	return geo.GeoPoint{Lat: p.Lat(), Lon: p.Lon()}
}

func toOrb(p geo.GeoPoint) orb.Point {
	return orb.Point{p.Lon, p.Lat}
}
