package domain

import (
	"encoding/json"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRawRouteFeature_Unmarshal(t *testing.T) {
	raw := `{
		"route_version": "1.0",
		"type": "Feature",
		"geometry": {
			"type": "LineString",
			"coordinates": [[-81.0942, 31.9871], [-81.0837, 31.9929]]
		},
		"properties": {
			"name": "Savannah riverfront",
			"source": "mobile"
		}
	}`

	var feature RawRouteFeature
	require.NoError(t, json.Unmarshal([]byte(raw), &feature))

	assert.Equal(t, SupportedRouteVersion, feature.RouteVersion)
	assert.Equal(t, FeatureTypeFeature, feature.Type)
	assert.Equal(t, GeometryLineString, feature.Geometry.Type)
	require.Len(t, feature.Geometry.Coordinates, 2)

	// Порядок [lon, lat] должен сохраняться как есть
	assert.Equal(t, -81.0942, feature.Geometry.Coordinates[0][0])
	assert.Equal(t, 31.9871, feature.Geometry.Coordinates[0][1])

	require.NotNil(t, feature.Properties.Name)
	assert.Equal(t, "Savannah riverfront", *feature.Properties.Name)
	assert.Equal(t, "mobile", feature.Properties.Source)
}

func TestRawRouteFeature_SourceOrDefault(t *testing.T) {
	feature := RawRouteFeature{}
	assert.Equal(t, DefaultRouteSource, feature.SourceOrDefault())

	feature.Properties.Source = "import"
	assert.Equal(t, "import", feature.SourceOrDefault())
}

func TestRouteNormalizedEvent_IsSuccess(t *testing.T) {
	routeID := uuid.New()

	success := RouteNormalizedEvent{
		SubmissionID: routeID,
		RouteID:      &routeID,
		Normalized:   &NormalizedRoute{RouteID: routeID},
	}
	assert.True(t, success.IsSuccess())

	failure := RouteNormalizedEvent{
		SubmissionID: routeID,
		ErrorCode:    "ROUTE_VERSION_MISMATCH",
		Error:        "unsupported route_version",
	}
	assert.False(t, failure.IsSuccess())

	empty := RouteNormalizedEvent{SubmissionID: routeID}
	assert.False(t, empty.IsSuccess())
}
