package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Coordinate is a WGS84 latitude/longitude pair.
type Coordinate struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate checks that the coordinate lies on the globe.
func (c Coordinate) Validate() error {
	if c.Lat < -90 || c.Lat > 90 {
		return fmt.Errorf("latitude %f out of range [-90, 90]", c.Lat)
	}
	if c.Lon < -180 || c.Lon > 180 {
		return fmt.Errorf("longitude %f out of range [-180, 180]", c.Lon)
	}
	return nil
}

// Key returns a filename-safe fragment with both components rounded to
// six decimal places, e.g. "3.139003_101.686855".
func (c Coordinate) Key() string {
	return fmt.Sprintf("%s_%s", formatRounded(c.Lat), formatRounded(c.Lon))
}

// Slug returns a fully underscore-encoded fragment (dots replaced),
// e.g. "3_139003_101_686855".
func (c Coordinate) Slug() string {
	return strings.ReplaceAll(c.Key(), ".", "_")
}

func formatRounded(v float64) string {
	r := math.Round(v*1e6) / 1e6
	return strconv.FormatFloat(r, 'f', -1, 64)
}
