// Package gee is a minimal client for the Google Earth Engine REST API.
//
// Server-side computations are described as lazy expression graphs
// (geometries, images, image collections) that serialize to the API's
// Expression JSON form. No raster data is ever processed locally; the
// service computes reductions and renders thumbnails remotely.
package gee

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"time"
)

// node is a single value in an expression graph: either a constant leaf or
// the invocation of a named server-side function.
type node struct {
	isConst  bool
	constVal interface{}

	fn   string
	args map[string]*node
}

func constant(v interface{}) *node {
	return &node{isConst: true, constVal: v}
}

func invoke(fn string, args map[string]*node) *node {
	return &node{fn: fn, args: args}
}

// Geometry is a lazily evaluated server-side geometry.
type Geometry struct{ n *node }

// Image is a lazily evaluated server-side raster.
type Image struct{ n *node }

// ImageCollection is a lazily evaluated server-side image collection.
type ImageCollection struct{ n *node }

// Point builds a point geometry from longitude/latitude (GeoJSON order).
func Point(lon, lat float64) *Geometry {
	return &Geometry{invoke("GeometryConstructors.Point", map[string]*node{
		"coordinates": constant([]float64{lon, lat}),
	})}
}

// Buffer expands the geometry by a distance in meters.
func (g *Geometry) Buffer(meters float64) *Geometry {
	return &Geometry{invoke("Geometry.buffer", map[string]*node{
		"geometry": g.n,
		"distance": constant(meters),
	})}
}

// Bounds returns the bounding rectangle of the geometry.
func (g *Geometry) Bounds() *Geometry {
	return &Geometry{invoke("Geometry.bounds", map[string]*node{
		"geometry": g.n,
	})}
}

// LoadCollection references a named image collection asset.
func LoadCollection(id string) *ImageCollection {
	return &ImageCollection{invoke("ImageCollection.load", map[string]*node{
		"id": constant(id),
	})}
}

// FilterBounds keeps images intersecting the geometry.
func (c *ImageCollection) FilterBounds(g *Geometry) *ImageCollection {
	filter := invoke("Filter.intersects", map[string]*node{
		"leftField":  constant(".all"),
		"rightValue": g.n,
	})
	return &ImageCollection{invoke("Collection.filter", map[string]*node{
		"collection": c.n,
		"filter":     filter,
	})}
}

// FilterDate keeps images whose timestamp falls in [start, end).
func (c *ImageCollection) FilterDate(start, end time.Time) *ImageCollection {
	dateRange := invoke("DateRange", map[string]*node{
		"start": constant(start.UTC().Format("2006-01-02")),
		"end":   constant(end.UTC().Format("2006-01-02")),
	})
	filter := invoke("Filter.dateRangeContains", map[string]*node{
		"leftValue":  dateRange,
		"rightField": constant("system:time_start"),
	})
	return &ImageCollection{invoke("Collection.filter", map[string]*node{
		"collection": c.n,
		"filter":     filter,
	})}
}

// Median reduces the collection to its per-pixel, per-band median.
func (c *ImageCollection) Median() *Image {
	return &Image{invoke("reduce.median", map[string]*node{
		"collection": c.n,
	})}
}

// Mean reduces the collection to its per-pixel, per-band mean.
func (c *ImageCollection) Mean() *Image {
	return &Image{invoke("reduce.mean", map[string]*node{
		"collection": c.n,
	})}
}

// Select keeps a single band. Band selection commutes with per-band
// reducers, so applying it after Median/Mean matches selecting upfront.
func (i *Image) Select(band string) *Image {
	return &Image{invoke("Image.select", map[string]*node{
		"input":         i.n,
		"bandSelectors": constant([]string{band}),
	})}
}

// Multiply scales every pixel by a constant.
func (i *Image) Multiply(v float64) *Image {
	return i.arith("Image.multiply", v)
}

// Subtract offsets every pixel by a constant.
func (i *Image) Subtract(v float64) *Image {
	return i.arith("Image.subtract", v)
}

func (i *Image) arith(fn string, v float64) *Image {
	other := invoke("Image.constant", map[string]*node{
		"value": constant(v),
	})
	return &Image{invoke(fn, map[string]*node{
		"image1": i.n,
		"image2": other,
	})}
}

// FocalMean smooths the image with a circular mean kernel of the given
// radius in pixels.
func (i *Image) FocalMean(radiusPixels float64) *Image {
	return &Image{invoke("Image.focalMean", map[string]*node{
		"image":  i.n,
		"radius": constant(radiusPixels),
		"units":  constant("pixels"),
	})}
}

// Clip masks the image outside the geometry.
func (i *Image) Clip(g *Geometry) *Image {
	return &Image{invoke("Image.clip", map[string]*node{
		"input":    i.n,
		"geometry": g.n,
	})}
}

// VisParams controls false-color rendering of a single-band image.
type VisParams struct {
	Min     float64
	Max     float64
	Palette []string
}

// Visualize maps pixel values onto the palette; values outside [Min, Max]
// clamp to the ramp ends.
func (i *Image) Visualize(p VisParams) *Image {
	return &Image{invoke("Image.visualize", map[string]*node{
		"image":   i.n,
		"min":     constant(p.Min),
		"max":     constant(p.Max),
		"palette": constant(p.Palette),
	})}
}

// clipToBoundsAndScale prepares an image for thumbnail rendering at fixed
// output dimensions.
func clipToBoundsAndScale(i *Image, region *Geometry, width, height int) *node {
	return invoke("Image.clipToBoundsAndScale", map[string]*node{
		"input":    i.n,
		"geometry": region.n,
		"width":    constant(width),
		"height":   constant(height),
	})
}

func collectionSize(c *ImageCollection) *node {
	return invoke("Collection.size", map[string]*node{
		"collection": c.n,
	})
}

func reduceRegionMean(i *Image, geom *Geometry, scaleMeters float64) *node {
	reducer := invoke("Reducer.mean", nil)
	return invoke("Image.reduceRegion", map[string]*node{
		"image":    i.n,
		"reducer":  reducer,
		"geometry": geom.n,
		"scale":    constant(scaleMeters),
	})
}

// --- Expression serialization ---

type expression struct {
	Values map[string]valueNode `json:"values"`
	Result string               `json:"result"`
}

// valueNode is one of: constant, function invocation, or reference to a
// numbered value. Exactly one field is populated.
type valueNode struct {
	ConstantValue  json.RawMessage     `json:"constantValue,omitempty"`
	FunctionInvoke *functionInvocation `json:"functionInvocationValue,omitempty"`
	ValueReference string              `json:"valueReference,omitempty"`
}

type functionInvocation struct {
	FunctionName string               `json:"functionName"`
	Arguments    map[string]valueNode `json:"arguments"`
}

// serialize flattens the graph into the REST Expression form. Function
// invocations become numbered values (shared subgraphs serialize once);
// constants are inlined at their use sites. Indices are assigned in
// deterministic depth-first order with sorted argument keys.
func serialize(root *node) (*expression, error) {
	expr := &expression{Values: map[string]valueNode{}}
	seen := map[*node]string{}

	var walk func(n *node) (valueNode, error)
	walk = func(n *node) (valueNode, error) {
		if n.isConst {
			raw, err := json.Marshal(n.constVal)
			if err != nil {
				return valueNode{}, fmt.Errorf("marshal constant: %w", err)
			}
			return valueNode{ConstantValue: raw}, nil
		}

		if idx, ok := seen[n]; ok {
			return valueNode{ValueReference: idx}, nil
		}

		keys := make([]string, 0, len(n.args))
		for k := range n.args {
			keys = append(keys, k)
		}
		sort.Strings(keys)

		args := make(map[string]valueNode, len(n.args))
		for _, k := range keys {
			v, err := walk(n.args[k])
			if err != nil {
				return valueNode{}, err
			}
			args[k] = v
		}

		idx := strconv.Itoa(len(expr.Values))
		seen[n] = idx
		expr.Values[idx] = valueNode{FunctionInvoke: &functionInvocation{
			FunctionName: n.fn,
			Arguments:    args,
		}}
		return valueNode{ValueReference: idx}, nil
	}

	res, err := walk(root)
	if err != nil {
		return nil, err
	}
	if res.ValueReference == "" {
		return nil, fmt.Errorf("expression root must be a function invocation")
	}
	expr.Result = res.ValueReference
	return expr, nil
}
