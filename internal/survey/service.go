// Package survey orchestrates a site survey: it scopes a region around a
// coordinate, derives temperature and radiation rasters remotely, persists a
// rendered thumbnail, and samples both rasters at the point.
package survey

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/farisanuar/teg-site-survey/internal/fetch"
	"github.com/farisanuar/teg-site-survey/internal/gee"
	"github.com/farisanuar/teg-site-survey/internal/geo"
	"github.com/farisanuar/teg-site-survey/internal/store"
)

const (
	lstCollectionID = "MODIS/061/MOD11A1"
	lstBand         = "LST_Day_1km"

	radiationCollectionID = "ECMWF/ERA5_LAND/DAILY_AGGR"
	radiationBand         = "surface_solar_radiation_downwards_sum"

	bufferRadiusMeters = 50000
	windowDays         = 200
	sampleScaleMeters  = 1000

	thumbWidth  = 512
	thumbHeight = 512
)

// MODIS LST sensor calibration: digital numbers scale by 0.02 to Kelvin.
const (
	lstScaleFactor  = 0.02
	kelvinToCelsius = 273.15
)

// lstPalette is the 10-stop false-color ramp for rendered thumbnails,
// spanning the visualization range [20, 40] °C.
var lstPalette = []string{
	"001137", "002171", "02489d", "2c7bb6", "abd9e9",
	"ffffbf", "fdae61", "f46d43", "d73027", "7f0000",
}

var (
	// ErrNoLSTData indicates the temperature collection is empty for the
	// requested region and window.
	ErrNoLSTData = errors.New("no valid LST data available for this location/date range")

	// ErrNoRadiationData indicates the radiation collection is empty for
	// the requested region and window.
	ErrNoRadiationData = errors.New("no valid solar radiation data available for this location/date range")
)

// Imagery abstracts the remote geospatial computation service.
type Imagery interface {
	CollectionSize(ctx context.Context, col *gee.ImageCollection) (int, error)
	SampleMean(ctx context.Context, img *gee.Image, geom *gee.Geometry, scaleMeters float64) (map[string]*float64, error)
	Thumbnail(ctx context.Context, img *gee.Image, region *gee.Geometry, width, height int) (string, error)
}

// Service runs site surveys.
type Service struct {
	imagery    Imagery
	downloader *fetch.Client
	images     *store.ImageStore

	now func() time.Time
}

// NewService creates a survey Service persisting thumbnails into images.
func NewService(imagery Imagery, downloader *fetch.Client, images *store.ImageStore) *Service {
	return &Service{
		imagery:    imagery,
		downloader: downloader,
		images:     images,
		now:        time.Now,
	}
}

// SurveySite surveys the coordinate over the trailing 200-day window.
//
// Both collections are checked for emptiness before any derivation; an empty
// temperature collection yields ErrNoLSTData, an empty radiation collection
// ErrNoRadiationData. Nothing is written to disk unless the thumbnail
// download succeeds.
func (s *Service) SurveySite(ctx context.Context, coord geo.Coordinate) (Result, error) {
	if err := coord.Validate(); err != nil {
		return Result{}, err
	}

	point := gee.Point(coord.Lon, coord.Lat)
	region := point.Buffer(bufferRadiusMeters).Bounds()

	end := s.now().UTC()
	start := end.AddDate(0, 0, -windowDays)

	lstCol := gee.LoadCollection(lstCollectionID).
		FilterBounds(region).
		FilterDate(start, end)

	n, err := s.imagery.CollectionSize(ctx, lstCol)
	if err != nil {
		return Result{}, fmt.Errorf("LST collection size: %w", err)
	}
	if n == 0 {
		return Result{}, ErrNoLSTData
	}

	radCol := gee.LoadCollection(radiationCollectionID).
		FilterBounds(region).
		FilterDate(start, end)

	n, err = s.imagery.CollectionSize(ctx, radCol)
	if err != nil {
		return Result{}, fmt.Errorf("radiation collection size: %w", err)
	}
	if n == 0 {
		return Result{}, ErrNoRadiationData
	}

	// Scale and offset to physical units before smoothing; smoothing before
	// clipping. The order is load-bearing for numeric parity.
	lstImg := lstCol.Median().
		Select(lstBand).
		Multiply(lstScaleFactor).
		Subtract(kelvinToCelsius).
		FocalMean(1).
		Clip(region)

	radImg := radCol.Mean().
		Select(radiationBand).
		Clip(region)

	visualized := lstImg.Visualize(gee.VisParams{
		Min:     20,
		Max:     40,
		Palette: lstPalette,
	})

	url, err := s.imagery.Thumbnail(ctx, visualized, region, thumbWidth, thumbHeight)
	if err != nil {
		return Result{}, fmt.Errorf("render thumbnail: %w", err)
	}

	lstValues, err := s.imagery.SampleMean(ctx, lstImg, point, sampleScaleMeters)
	if err != nil {
		return Result{}, fmt.Errorf("sample LST: %w", err)
	}

	radValues, err := s.imagery.SampleMean(ctx, radImg, point, sampleScaleMeters)
	if err != nil {
		return Result{}, fmt.Errorf("sample radiation: %w", err)
	}

	data, err := s.downloader.Download(ctx, url)
	if err != nil {
		return Result{}, err
	}

	name := fmt.Sprintf("lst_%s_%s.png", coord.Key(), s.now().UTC().Format("20060102150405"))
	img, err := s.images.Save(name, data, url)
	if err != nil {
		return Result{}, err
	}

	return Result{
		Image:          img,
		URL:            url,
		LST:            roundCelsius(lstValues[lstBand]),
		SolarRadiation: toMegajoules(radValues[radiationBand]),
	}, nil
}

// roundCelsius rounds a sampled temperature to two decimals, preserving
// absence. A present zero is a valid reading and stays present.
func roundCelsius(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v)
	return &r
}

// toMegajoules converts a sampled radiation sum from J/m² to MJ/m².
func toMegajoules(v *float64) *float64 {
	if v == nil {
		return nil
	}
	r := round2(*v / 1e6)
	return &r
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
