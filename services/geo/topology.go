// Package geo loads country boundary data for the dashboard map.
package geo

import (
	"encoding/json"
	"errors"
	"fmt"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
)

var (
	ErrNotTopology    = errors.New("document is not a TopoJSON topology")
	ErrObjectNotFound = errors.New("topology object not found")
)

type topology struct {
	Type      string                     `json:"type"`
	Transform *transform                 `json:"transform"`
	Objects   map[string]json.RawMessage `json:"objects"`
	Arcs      [][][2]float64             `json:"arcs"`
}

type transform struct {
	Scale     [2]float64 `json:"scale"`
	Translate [2]float64 `json:"translate"`
}

type topoGeometry struct {
	Type       string                 `json:"type"`
	ID         interface{}            `json:"id"`
	Properties map[string]interface{} `json:"properties"`
	Arcs       json.RawMessage        `json:"arcs"`
	Geometries []topoGeometry         `json:"geometries"`
}

// DecodeTopology converts the named object of a TopoJSON document into a
// GeoJSON feature collection. Only polygonal geometries are kept; anything
// else is dropped.
func DecodeTopology(data []byte, object string) (*geojson.FeatureCollection, error) {
	var topo topology
	if err := json.Unmarshal(data, &topo); err != nil {
		return nil, fmt.Errorf("failed to parse topology: %w", err)
	}
	if topo.Type != "Topology" {
		return nil, ErrNotTopology
	}

	raw, ok := topo.Objects[object]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrObjectNotFound, object)
	}
	var root topoGeometry
	if err := json.Unmarshal(raw, &root); err != nil {
		return nil, fmt.Errorf("failed to parse object %q: %w", object, err)
	}

	arcs := decodeArcs(topo.Arcs, topo.Transform)

	geometries := []topoGeometry{root}
	if root.Type == "GeometryCollection" {
		geometries = root.Geometries
	}

	fc := geojson.NewFeatureCollection()
	for _, g := range geometries {
		geom, err := g.geometry(arcs)
		if err != nil {
			return nil, err
		}
		if geom == nil {
			continue
		}
		f := geojson.NewFeature(geom)
		f.ID = g.ID
		for k, v := range g.Properties {
			f.Properties[k] = v
		}
		fc.Append(f)
	}
	return fc, nil
}

func (g topoGeometry) geometry(arcs [][]orb.Point) (orb.Geometry, error) {
	switch g.Type {
	case "Polygon":
		var rings [][]int
		if err := json.Unmarshal(g.Arcs, &rings); err != nil {
			return nil, fmt.Errorf("invalid polygon arcs: %w", err)
		}
		return polygon(rings, arcs)
	case "MultiPolygon":
		var polys [][][]int
		if err := json.Unmarshal(g.Arcs, &polys); err != nil {
			return nil, fmt.Errorf("invalid multipolygon arcs: %w", err)
		}
		mp := make(orb.MultiPolygon, 0, len(polys))
		for _, rings := range polys {
			p, err := polygon(rings, arcs)
			if err != nil {
				return nil, err
			}
			mp = append(mp, p)
		}
		return mp, nil
	}
	return nil, nil
}

func polygon(rings [][]int, arcs [][]orb.Point) (orb.Polygon, error) {
	p := make(orb.Polygon, 0, len(rings))
	for _, indexes := range rings {
		r, err := ring(indexes, arcs)
		if err != nil {
			return nil, err
		}
		p = append(p, r)
	}
	return p, nil
}

// ring stitches arcs end to end. A negative index ^i means arc i reversed.
func ring(indexes []int, arcs [][]orb.Point) (orb.Ring, error) {
	var r orb.Ring
	for _, idx := range indexes {
		reversed := idx < 0
		if reversed {
			idx = ^idx
		}
		if idx >= len(arcs) {
			return nil, fmt.Errorf("arc index %d out of range", idx)
		}

		points := arcs[idx]
		if len(r) > 0 {
			r = r[:len(r)-1]
		}
		if reversed {
			for i := len(points) - 1; i >= 0; i-- {
				r = append(r, points[i])
			}
		} else {
			r = append(r, points...)
		}
	}

	if len(r) > 0 && !r.Closed() {
		r = append(r, r[0])
	}
	for len(r) > 0 && len(r) < 4 {
		r = append(r, r[0])
	}
	return r, nil
}

// decodeArcs applies the quantization transform. Quantized arcs are
// delta-encoded; untransformed arcs hold absolute positions.
func decodeArcs(raw [][][2]float64, t *transform) [][]orb.Point {
	out := make([][]orb.Point, len(raw))
	for i, arc := range raw {
		points := make([]orb.Point, len(arc))
		var x, y float64
		for j, pos := range arc {
			if t == nil {
				points[j] = orb.Point{pos[0], pos[1]}
				continue
			}
			x += pos[0]
			y += pos[1]
			points[j] = orb.Point{x*t.Scale[0] + t.Translate[0], y*t.Scale[1] + t.Translate[1]}
		}
		out[i] = points
	}
	return out
}
