// Package geo derives path geometry from GPS records: the projected track,
// travelled distance and bounding box.
//
// Positions are projected from WGS 84 (EPSG:4326) to Web Mercator
// (EPSG:3857). Segment lengths are scaled back by cos(latitude), which is
// accurate for the short hops between consecutive samples.
package geo

import (
	"fmt"
	"math"

	"github.com/peterstace/simplefeatures/geom"
	"github.com/wroge/wgs84"

	"github.com/gpsreplay/gpsreplay/pkg/track"
)

// SRID of the projected coordinates produced by this package.
const SRID = 3857

// maxMercatorLat is the latitude limit of Web Mercator.
const maxMercatorLat = 85.05112878

var toMercator = wgs84.EPSG().Transform(4326, SRID)

// Project converts a longitude and latitude in degrees to Web Mercator meters.
func Project(lon, lat float64) (x, y float64) {
	x, y, _ = toMercator(lon, lat, 0)
	return x, y
}

// HasFix reports whether r carries a usable position. Loggers write 0,0
// before the receiver has a fix.
func HasFix(r track.Record) bool {
	if r.Lat == 0 && r.Lon == 0 {
		return false
	}
	return math.Abs(r.Lat) <= maxMercatorLat && math.Abs(r.Lon) <= 180
}

// Path returns the projected line through every record with a fix, in order,
// along with the latitude of each vertex. Repeated positions collapse to one
// vertex. Fewer than two distinct fixes yield an empty line.
func Path(records []track.Record) (geom.LineString, []float64, error) {
	flat := make([]float64, 0, len(records)*2)
	lats := make([]float64, 0, len(records))
	for _, r := range records {
		if !HasFix(r) {
			continue
		}
		x, y := Project(r.Lon, r.Lat)
		if n := len(flat); n > 0 && flat[n-2] == x && flat[n-1] == y {
			continue
		}
		flat = append(flat, x, y)
		lats = append(lats, r.Lat)
	}
	if len(lats) < 2 {
		return geom.LineString{}, nil, nil
	}

	ls, err := geom.NewLineString(geom.NewSequence(flat, geom.DimXY))
	if err != nil {
		return geom.LineString{}, nil, fmt.Errorf("building track path: %w", err)
	}
	return ls, lats, nil
}

// Distance returns the ground distance in meters along records with a fix.
func Distance(records []track.Record) (float64, error) {
	ls, lats, err := Path(records)
	if err != nil {
		return 0, err
	}
	seq := ls.Coordinates()

	total := 0.0
	for i := 1; i < seq.Length(); i++ {
		a, b := seq.Get(i-1), seq.Get(i)
		total += scaled(math.Hypot(b.X-a.X, b.Y-a.Y), lats[i-1], lats[i])
	}
	return total, nil
}

// SegmentDistance returns the ground distance in meters between two
// records, or 0 when either lacks a fix.
func SegmentDistance(a, b track.Record) float64 {
	if !HasFix(a) || !HasFix(b) {
		return 0
	}
	ax, ay := Project(a.Lon, a.Lat)
	bx, by := Project(b.Lon, b.Lat)
	return scaled(math.Hypot(bx-ax, by-ay), a.Lat, b.Lat)
}

// ProjectedLength returns the length of the track in Web Mercator meters,
// without scale correction. Map renderers draw this length.
func ProjectedLength(records []track.Record) (float64, error) {
	ls, _, err := Path(records)
	if err != nil {
		return 0, err
	}
	return ls.Length(), nil
}

func scaled(projected, lat1, lat2 float64) float64 {
	mid := (lat1 + lat2) / 2 * math.Pi / 180
	return projected * math.Cos(mid)
}

// Bounds is the latitude and longitude extent of a track.
type Bounds struct {
	MinLat float64 `json:"min_lat" msgpack:"min_lat"`
	MinLon float64 `json:"min_lon" msgpack:"min_lon"`
	MaxLat float64 `json:"max_lat" msgpack:"max_lat"`
	MaxLon float64 `json:"max_lon" msgpack:"max_lon"`
}

// BoundsOf returns the extent of records with a fix. ok is false when no
// record has one.
func BoundsOf(records []track.Record) (b Bounds, ok bool) {
	var env geom.Envelope
	for _, r := range records {
		if HasFix(r) {
			env = env.ExpandToIncludeXY(geom.XY{X: r.Lon, Y: r.Lat})
		}
	}

	lo, hi, ok := env.MinMaxXYs()
	if !ok {
		return Bounds{}, false
	}
	return Bounds{MinLat: lo.Y, MinLon: lo.X, MaxLat: hi.Y, MaxLon: hi.X}, true
}

// Fixes counts records with a usable position.
func Fixes(records []track.Record) int {
	n := 0
	for _, r := range records {
		if HasFix(r) {
			n++
		}
	}
	return n
}
