// Package maps captures street-level and hybrid satellite imagery for a
// coordinate from the Google Maps static image endpoints.
package maps

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"net/url"
	"strconv"

	"github.com/google/uuid"
	"github.com/kelvins/geocoder"

	"github.com/farisanuar/teg-site-survey/internal/fetch"
	"github.com/farisanuar/teg-site-survey/internal/geo"
	"github.com/farisanuar/teg-site-survey/internal/store"
)

// DefaultBaseURL is the production Google Maps API endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api"

// Capture is the result of persisting one map image.
type Capture struct {
	Image store.PersistedImage

	// Address is the reverse-geocoded formatted address, when a geocoder
	// key is configured and the lookup succeeds.
	Address string
}

// Client fetches and persists static map imagery.
type Client struct {
	apiKey  string
	baseURL string
	rest    *fetch.Client
	images  *store.ImageStore

	reverseGeocode bool
}

// NewClient creates a maps Client. geocoderKey is optional; when set,
// captures are annotated with a formatted address.
func NewClient(httpClient *http.Client, apiKey, geocoderKey string, images *store.ImageStore) *Client {
	if geocoderKey != "" {
		geocoder.ApiKey = geocoderKey
	}
	return &Client{
		apiKey:         apiKey,
		baseURL:        DefaultBaseURL,
		rest:           fetch.New(httpClient, "googlemaps"),
		images:         images,
		reverseGeocode: geocoderKey != "",
	}
}

// StreetView captures a street-level photo facing east at the coordinate.
func (c *Client) StreetView(ctx context.Context, coord geo.Coordinate) (Capture, error) {
	values := url.Values{}
	values.Set("size", "600x400")
	values.Set("location", latLngParam(coord))
	values.Set("heading", "90")
	values.Set("pitch", "0")
	values.Set("key", c.apiKey)

	u := fmt.Sprintf("%s/streetview?%s", c.baseURL, values.Encode())
	return c.capture(ctx, u, "streetview", coord)
}

// HybridMap captures a zoomed hybrid satellite tile with a marker at the
// coordinate.
func (c *Client) HybridMap(ctx context.Context, coord geo.Coordinate) (Capture, error) {
	values := url.Values{}
	values.Set("center", latLngParam(coord))
	values.Set("zoom", "18")
	values.Set("size", "640x640")
	values.Set("scale", "2")
	values.Set("maptype", "hybrid")
	values.Set("markers", "color:red|label:|"+latLngParam(coord))
	values.Set("key", c.apiKey)

	u := fmt.Sprintf("%s/staticmap?%s", c.baseURL, values.Encode())
	return c.capture(ctx, u, "hybridmap", coord)
}

// capture downloads the image and persists it under a per-request unique
// name, so repeated captures of the same coordinate never overwrite.
func (c *Client) capture(ctx context.Context, u, prefix string, coord geo.Coordinate) (Capture, error) {
	data, err := c.rest.Download(ctx, u)
	if err != nil {
		return Capture{}, err
	}

	name := fmt.Sprintf("%s_%s_%s.jpg", prefix, coord.Slug(), uuid.NewString()[:8])
	img, err := c.images.Save(name, data, u)
	if err != nil {
		return Capture{}, err
	}

	res := Capture{Image: img}
	if c.reverseGeocode {
		if addr, err := lookupAddress(coord); err != nil {
			log.Printf("maps: reverse geocode failed for %s: %v", coord.Key(), err)
		} else {
			res.Address = addr
		}
	}
	return res, nil
}

func lookupAddress(coord geo.Coordinate) (string, error) {
	addresses, err := geocoder.GeocodingReverse(geocoder.Location{
		Latitude:  coord.Lat,
		Longitude: coord.Lon,
	})
	if err != nil {
		return "", err
	}
	if len(addresses) == 0 {
		return "", fmt.Errorf("no address for %s", coord.Key())
	}
	return addresses[0].FormatAddress(), nil
}

func latLngParam(coord geo.Coordinate) string {
	return strconv.FormatFloat(coord.Lat, 'f', -1, 64) + "," +
		strconv.FormatFloat(coord.Lon, 'f', -1, 64)
}
