package api

import (
	"github.com/radini5948/Bieszczady/internal/models"
)

type FeatureCollection struct {
	Type     string    `json:"type"`
	Features []Feature `json:"features"`
}
type Feature struct {
	Type       string         `json:"type"`
	Geometry   Geometry       `json:"geometry"`
	Properties map[string]any `json:"properties"`
}
type Geometry struct {
	Type        string    `json:"type"`
	Coordinates []float64 `json:"coordinates"`
}

func toGeoJSON(stations []models.Station) FeatureCollection {
	features := make([]Feature, 0, len(stations))

	for _, st := range stations {
		f := Feature{
			Type: "Feature",
			Geometry: Geometry{
				Type:        "Point",
				Coordinates: []float64{st.Longitude, st.Latitude},
			},
			Properties: map[string]any{
				"code":     st.Code,
				"name":     st.Name,
				"river":    st.River,
				"province": st.Province,
			},
		}
		features = append(features, f)
	}

	return FeatureCollection{
		Type:     "FeatureCollection",
		Features: features,
	}
}
