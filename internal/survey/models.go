package survey

import "github.com/farisanuar/teg-site-survey/internal/store"

// Result aggregates the outputs of one site survey: the persisted
// thumbnail, its source URL, and the point-sampled scalars.
type Result struct {
	Image store.PersistedImage

	// URL is the server-rendered thumbnail location.
	URL string

	// LST is the land surface temperature at the coordinate in degrees
	// Celsius, nil when the sample window holds no data.
	LST *float64

	// SolarRadiation is the mean daily downward surface solar radiation
	// at the coordinate in MJ/m², nil when the sample window holds no data.
	SolarRadiation *float64
}
