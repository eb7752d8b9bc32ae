package utils

import (
	"math"

	"github.com/route-microservice/internal/domain"
)

const earthRadiusM = 6371000.0

// LonLat - позиция [lon, lat] в WGS84. Порядок зафиксирован контрактом.
type LonLat [2]float64

func (p LonLat) Lon() float64 { return p[0] }
func (p LonLat) Lat() float64 { return p[1] }

// HaversineM вычисляет расстояние между двумя позициями в метрах
func HaversineM(a, b LonLat) float64 {
	phi1 := a.Lat() * math.Pi / 180.0
	phi2 := b.Lat() * math.Pi / 180.0
	dPhi := (b.Lat() - a.Lat()) * math.Pi / 180.0
	dLmb := (b.Lon() - a.Lon()) * math.Pi / 180.0

	s := math.Sin(dPhi/2)*math.Sin(dPhi/2) +
		math.Cos(phi1)*math.Cos(phi2)*math.Sin(dLmb/2)*math.Sin(dLmb/2)

	return 2 * earthRadiusM * math.Asin(math.Sqrt(s))
}

// BearingDegTrue вычисляет начальный азимут от a к b в градусах [0, 360)
func BearingDegTrue(a, b LonLat) float64 {
	phi1 := a.Lat() * math.Pi / 180.0
	phi2 := b.Lat() * math.Pi / 180.0
	dLmb := (b.Lon() - a.Lon()) * math.Pi / 180.0

	y := math.Sin(dLmb) * math.Cos(phi2)
	x := math.Cos(phi1)*math.Sin(phi2) - math.Sin(phi1)*math.Cos(phi2)*math.Cos(dLmb)
	brng := math.Atan2(y, x) * 180.0 / math.Pi

	return math.Mod(brng+360.0, 360.0)
}

// PolylineLengthM вычисляет длину ломаной в метрах
func PolylineLengthM(positions []LonLat) float64 {
	total := 0.0
	for i := 1; i < len(positions); i++ {
		total += HaversineM(positions[i-1], positions[i])
	}
	return total
}

// BBoxWGS84 вычисляет ограничивающий прямоугольник по позициям.
// Предполагает len(positions) >= 1.
func BBoxWGS84(positions []LonLat) domain.BoundingBox {
	bbox := domain.BoundingBox{
		MinLat: positions[0].Lat(),
		MinLon: positions[0].Lon(),
		MaxLat: positions[0].Lat(),
		MaxLon: positions[0].Lon(),
	}
	for _, p := range positions[1:] {
		bbox.MinLat = math.Min(bbox.MinLat, p.Lat())
		bbox.MinLon = math.Min(bbox.MinLon, p.Lon())
		bbox.MaxLat = math.Max(bbox.MaxLat, p.Lat())
		bbox.MaxLon = math.Max(bbox.MaxLon, p.Lon())
	}
	return bbox
}

// ValidateCoordinates проверяет валидность координат
func ValidateCoordinates(lat, lon float64) bool {
	return lat >= -90 && lat <= 90 && lon >= -180 && lon <= 180
}

// IsFinite проверяет, что число конечно (не NaN и не Inf)
func IsFinite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}
