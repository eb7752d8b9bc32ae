package domain

import (
	"time"

	"github.com/google/uuid"
)

// Параметры контракта Route Spec v1.0.
// Порядок координат зафиксирован как [lon, lat] (GeoJSON, WGS84) и нигде
// в пайплайне не меняется.
const (
	SupportedRouteVersion = "1.0"
	FeatureTypeFeature    = "Feature"
	GeometryLineString    = "LineString"

	// DefaultRouteSource - источник по умолчанию, если клиент его не указал
	DefaultRouteSource = "mobile"

	// MaxRouteNameLength - максимальная длина названия маршрута
	MaxRouteNameLength = 80
)

// RawRouteGeometry - геометрия RAW маршрута (GeoJSON LineString)
type RawRouteGeometry struct {
	Type string `json:"type"`
	// Coordinates - позиции [lon, lat]; длина каждой позиции проверяется
	// нормализатором (ровно 2 числа)
	Coordinates [][]float64 `json:"coordinates"`
}

// RawRouteProperties - необязательные свойства RAW маршрута
type RawRouteProperties struct {
	Name         *string                `json:"name,omitempty"`
	Source       string                 `json:"source,omitempty"`
	CreatedAtUTC *time.Time             `json:"created_at_utc,omitempty"`
	Notes        *string                `json:"notes,omitempty"`
	Client       map[string]interface{} `json:"client,omitempty"`
}

// RawRouteFeature - RAW маршрут от мобильного клиента (GeoJSON Feature)
type RawRouteFeature struct {
	RouteVersion string             `json:"route_version"`
	Type         string             `json:"type"`
	Geometry     RawRouteGeometry   `json:"geometry"`
	Properties   RawRouteProperties `json:"properties"`
}

// SourceOrDefault возвращает источник маршрута или значение по умолчанию
func (f *RawRouteFeature) SourceOrDefault() string {
	if f.Properties.Source == "" {
		return DefaultRouteSource
	}
	return f.Properties.Source
}

// NormalizedPoint - точка нормализованного маршрута
type NormalizedPoint struct {
	I              int     `json:"i"`
	Lat            float64 `json:"lat"`
	Lon            float64 `json:"lon"`
	SegDistM       float64 `json:"seg_dist_m"`
	CumDistM       float64 `json:"cum_dist_m"`
	BearingDegTrue float64 `json:"bearing_deg_true"`
}

// BoundingBox - ограничивающий прямоугольник в WGS84
type BoundingBox struct {
	MinLat float64 `json:"min_lat" db:"min_lat"`
	MinLon float64 `json:"min_lon" db:"min_lon"`
	MaxLat float64 `json:"max_lat" db:"max_lat"`
	MaxLon float64 `json:"max_lon" db:"max_lon"`
}

// NormalizedRouteBody - тело NORMALIZED маршрута
type NormalizedRouteBody struct {
	SpacingM       float64           `json:"spacing_m"`
	TotalDistanceM float64           `json:"total_distance_m"`
	PointCount     int               `json:"point_count"`
	BBoxWGS84      BoundingBox       `json:"bbox_wgs84"`
	Points         []NormalizedPoint `json:"points"`
}

// NormalizedRoute - NORMALIZED маршрут, который уходит downstream-консьюмеру
type NormalizedRoute struct {
	RouteVersion  string              `json:"route_version"`
	RouteID       uuid.UUID           `json:"route_id"`
	Normalized    NormalizedRouteBody `json:"normalized"`
	SourceRawHash string              `json:"source_raw_hash,omitempty"`
	CreatedAtUTC  time.Time           `json:"created_at_utc"`
}

// RouteSummary - краткая информация о сохранённом маршруте (для списков)
type RouteSummary struct {
	RouteID        uuid.UUID `json:"route_id" db:"id"`
	Name           *string   `json:"name,omitempty" db:"name"`
	Source         string    `json:"source" db:"source"`
	TotalDistanceM float64   `json:"total_distance_m" db:"total_distance_m"`
	PointCount     int       `json:"point_count" db:"point_count"`
	CreatedAtUTC   time.Time `json:"created_at_utc" db:"created_at_utc"`
}

// RouteStatistics - агрегированная статистика по сохранённым маршрутам
type RouteStatistics struct {
	TotalRoutes    int            `json:"total_routes"`
	TotalDistanceM float64        `json:"total_distance_m"`
	AvgPointCount  float64        `json:"avg_point_count"`
	BySource       map[string]int `json:"by_source"`
	LastCreatedAt  *time.Time     `json:"last_created_at,omitempty"`
}
