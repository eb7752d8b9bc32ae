package usecase

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/route-microservice/internal/config"
	"github.com/route-microservice/internal/domain"
	apperrors "github.com/route-microservice/internal/pkg/errors"
	"github.com/route-microservice/internal/pkg/utils"
)

// Normalizer валидирует RAW маршрут по контракту Route Spec v1.0 и строит
// NORMALIZED маршрут: ресемплинг с равным шагом, дистанции, азимуты, bbox.
// Валидация всё-или-ничего: без ретраев и частичных результатов.
type Normalizer struct {
	defaultSpacingM float64
	maxPoints       int
	minRouteM       float64
	maxRouteM       float64
	maxSegmentM     float64
}

// NewNormalizer - создание нормализатора с guardrails из конфигурации
func NewNormalizer(cfg config.RouteConfig) *Normalizer {
	return &Normalizer{
		defaultSpacingM: cfg.DefaultSpacingM,
		maxPoints:       cfg.MaxPoints,
		minRouteM:       cfg.MinRouteM,
		maxRouteM:       cfg.MaxRouteM,
		maxSegmentM:     cfg.MaxSegmentM,
	}
}

// ValidateContract проверяет RAW документ по контракту. Порядок проверок
// зафиксирован: версия -> type -> geometry.type -> координаты.
// Возвращает позиции [lon, lat] при успехе.
func (n *Normalizer) ValidateContract(raw *domain.RawRouteFeature) ([]utils.LonLat, error) {
	if raw.RouteVersion != domain.SupportedRouteVersion {
		return nil, apperrors.ErrVersionMismatch.WithDetails(map[string]interface{}{
			"route_version": raw.RouteVersion,
			"supported":     domain.SupportedRouteVersion,
		})
	}

	if raw.Type != domain.FeatureTypeFeature {
		return nil, apperrors.ErrRouteShape.WithDetails(map[string]interface{}{
			"type":     raw.Type,
			"expected": domain.FeatureTypeFeature,
		})
	}

	if raw.Geometry.Type != domain.GeometryLineString {
		return nil, apperrors.ErrRouteShape.WithDetails(map[string]interface{}{
			"geometry_type": raw.Geometry.Type,
			"expected":      domain.GeometryLineString,
		})
	}

	coords := raw.Geometry.Coordinates
	if len(coords) < 2 {
		return nil, apperrors.ErrRouteCoordinates.WithMessage(
			"LineString must contain at least 2 coordinates",
		).WithDetails(map[string]interface{}{
			"point_count": len(coords),
		})
	}

	positions := make([]utils.LonLat, len(coords))
	for i, c := range coords {
		if len(c) != 2 {
			return nil, apperrors.ErrRouteCoordinates.WithMessage(
				"Coordinate must be a [lon, lat] pair",
			).WithDetails(map[string]interface{}{
				"index": i,
				"arity": len(c),
			})
		}
		lon, lat := c[0], c[1]
		if !utils.IsFinite(lon) || !utils.IsFinite(lat) {
			return nil, apperrors.ErrRouteCoordinates.WithMessage(
				"Coordinate must be a pair of finite numbers",
			).WithDetails(map[string]interface{}{"index": i})
		}
		if !utils.ValidateCoordinates(lat, lon) {
			return nil, apperrors.ErrRouteCoordinates.WithMessage(
				fmt.Sprintf("lon out of range [-180,180] or lat out of range [-90,90]: [%g, %g]", lon, lat),
			).WithDetails(map[string]interface{}{
				"index": i,
				"lon":   lon,
				"lat":   lat,
			})
		}
		positions[i] = utils.LonLat{lon, lat}
	}

	if raw.Properties.Name != nil && len(*raw.Properties.Name) > domain.MaxRouteNameLength {
		return nil, apperrors.ErrInvalidRequest.WithMessage(
			fmt.Sprintf("Route name too long (max %d characters)", domain.MaxRouteNameLength),
		)
	}

	return positions, nil
}

// Normalize валидирует RAW документ и строит NORMALIZED маршрут
func (n *Normalizer) Normalize(routeID uuid.UUID, raw *domain.RawRouteFeature, requestedSpacingM *float64) (*domain.NormalizedRoute, error) {
	positions, err := n.ValidateContract(raw)
	if err != nil {
		return nil, err
	}

	deduped, err := n.applyGuardrails(positions)
	if err != nil {
		return nil, err
	}

	total := utils.PolylineLengthM(deduped)
	spacing := n.pickSpacingM(total, requestedSpacingM)

	samples := resampleEvenSpacing(deduped, spacing)

	// Азимуты по последовательным нормализованным точкам,
	// последняя точка повторяет азимут предыдущей
	points := make([]domain.NormalizedPoint, len(samples))
	for i, s := range samples {
		bearing := 0.0
		if i < len(samples)-1 {
			bearing = utils.BearingDegTrue(s.pos, samples[i+1].pos)
		} else if i > 0 {
			bearing = points[i-1].BearingDegTrue
		}
		points[i] = domain.NormalizedPoint{
			I:              i,
			Lat:            s.pos.Lat(),
			Lon:            s.pos.Lon(),
			SegDistM:       s.segDistM,
			CumDistM:       s.cumDistM,
			BearingDegTrue: bearing,
		}
	}

	sampled := make([]utils.LonLat, len(samples))
	for i, s := range samples {
		sampled[i] = s.pos
	}

	rawHash, err := stableJSONSHA256(raw)
	if err != nil {
		return nil, apperrors.ErrInternalServer.WithMessage("Failed to fingerprint raw document")
	}

	return &domain.NormalizedRoute{
		RouteVersion: domain.SupportedRouteVersion,
		RouteID:      routeID,
		Normalized: domain.NormalizedRouteBody{
			SpacingM:       spacing,
			TotalDistanceM: points[len(points)-1].CumDistM,
			PointCount:     len(points),
			BBoxWGS84:      utils.BBoxWGS84(sampled),
			Points:         points,
		},
		SourceRawHash: rawHash,
		CreatedAtUTC:  time.Now().UTC(),
	}, nil
}

// applyGuardrails убирает последовательные дубликаты и проверяет sanity-лимиты
func (n *Normalizer) applyGuardrails(positions []utils.LonLat) ([]utils.LonLat, error) {
	deduped := make([]utils.LonLat, 0, len(positions))
	deduped = append(deduped, positions[0])
	for _, p := range positions[1:] {
		if p != deduped[len(deduped)-1] {
			deduped = append(deduped, p)
		}
	}

	if len(deduped) < 2 {
		return nil, apperrors.ErrRouteGuardrail.WithMessage(
			"Route collapses to <2 unique points after de-dupe",
		)
	}

	for i := 1; i < len(deduped); i++ {
		seg := utils.HaversineM(deduped[i-1], deduped[i])
		if seg <= 0 {
			return nil, apperrors.ErrRouteGuardrail.WithMessage(
				"Adjacent duplicate points not allowed",
			).WithDetails(map[string]interface{}{"index": i})
		}
		if seg > n.maxSegmentM {
			return nil, apperrors.ErrRouteGuardrail.WithMessage(
				fmt.Sprintf("Segment too long (> %.0f m): %.1f m", n.maxSegmentM, seg),
			).WithDetails(map[string]interface{}{"index": i})
		}
	}

	total := utils.PolylineLengthM(deduped)
	if total < n.minRouteM {
		return nil, apperrors.ErrRouteGuardrail.WithMessage(
			fmt.Sprintf("Route too short (< %.0f m): %.1f m", n.minRouteM, total),
		)
	}
	if total > n.maxRouteM {
		return nil, apperrors.ErrRouteGuardrail.WithMessage(
			fmt.Sprintf("Route too long (> %.0f m): %.1f m", n.maxRouteM, total),
		)
	}

	return deduped, nil
}

// pickSpacingM выбирает шаг ресемплинга: запрошенный или дефолтный,
// с увеличением, если оценка количества точек превышает maxPoints
func (n *Normalizer) pickSpacingM(totalDistanceM float64, requestedSpacingM *float64) float64 {
	spacing := n.defaultSpacingM
	if requestedSpacingM != nil && *requestedSpacingM > 0 {
		spacing = *requestedSpacingM
	}
	if totalDistanceM <= 0 {
		return spacing
	}

	estPoints := int(totalDistanceM/spacing) + 2
	if estPoints <= n.maxPoints {
		return spacing
	}

	denom := n.maxPoints - 1
	if denom < 2 {
		denom = 2
	}
	return totalDistanceM / float64(denom)
}

type resampledPoint struct {
	pos      utils.LonLat
	segDistM float64
	cumDistM float64
}

type segment struct {
	a, b utils.LonLat
	lenM float64
}

// resampleEvenSpacing строит точки с равным шагом вдоль исходной ломаной.
// Линейная интерполяция по дистанции внутри сегмента; первая и последняя
// точки исходного маршрута сохраняются.
func resampleEvenSpacing(positions []utils.LonLat, spacingM float64) []resampledPoint {
	segs := make([]segment, 0, len(positions)-1)
	total := 0.0
	for i := 1; i < len(positions); i++ {
		lenM := utils.HaversineM(positions[i-1], positions[i])
		segs = append(segs, segment{a: positions[i-1], b: positions[i], lenM: lenM})
		total += lenM
	}

	// Целевые дистанции вдоль маршрута: 0, spacing, 2*spacing, ..., total
	targets := []float64{0.0}
	for d := spacingM; d < total; d += spacingM {
		targets = append(targets, d)
	}
	if targets[len(targets)-1] != total {
		targets = append(targets, total)
	}

	out := make([]resampledPoint, 0, len(targets))
	segIdx := 0
	segStartCum := 0.0
	lastCum := 0.0

	for _, t := range targets {
		for segIdx < len(segs) && segStartCum+segs[segIdx].lenM < t {
			segStartCum += segs[segIdx].lenM
			segIdx++
		}

		var pos utils.LonLat
		if segIdx >= len(segs) {
			// Возможно только на последней целевой дистанции
			pos = segs[len(segs)-1].b
		} else {
			seg := segs[segIdx]
			if seg.lenM == 0 {
				pos = seg.b
			} else {
				frac := (t - segStartCum) / seg.lenM
				pos = utils.LonLat{
					seg.a.Lon() + frac*(seg.b.Lon()-seg.a.Lon()),
					seg.a.Lat() + frac*(seg.b.Lat()-seg.a.Lat()),
				}
			}
		}

		segDist := 0.0
		if len(out) > 0 {
			segDist = t - lastCum
		}
		out = append(out, resampledPoint{pos: pos, segDistM: segDist, cumDistM: t})
		lastCum = t
	}

	return out
}

// stableJSONSHA256 считает отпечаток документа по канонической JSON-форме:
// отсортированные ключи, компактные разделители
func stableJSONSHA256(v interface{}) (string, error) {
	data, err := json.Marshal(v)
	if err != nil {
		return "", err
	}

	// encoding/json сортирует ключи map при маршалинге, поэтому
	// перегоняем документ через generic-форму
	var generic interface{}
	if err := json.Unmarshal(data, &generic); err != nil {
		return "", err
	}
	canonical, err := json.Marshal(generic)
	if err != nil {
		return "", err
	}

	sum := sha256.Sum256(canonical)
	return "sha256:" + hex.EncodeToString(sum[:]), nil
}
