package services

import (
	"log"

	"github.com/oriolpt/senderisme/backend/models"
)

// RouteStore is what the route service needs from persistence.
type RouteStore interface {
	GetRoute(routeID int64) (*models.Route, error)
	UpdateRouteDifficulty(routeID int64, difficulty string) error
}

// RouteService owns route-level derived fields, currently the difficulty
// label.
type RouteService struct {
	store RouteStore
}

func NewRouteService(store RouteStore) *RouteService {
	return &RouteService{store: store}
}

// RecomputeDifficulty rescores the route from its stored metrics and
// persists the Catalan label. Idempotent: the same metrics always yield the
// same label.
func (r *RouteService) RecomputeDifficulty(routeID int64) (*models.DifficultyResponse, error) {
	route, err := r.store.GetRoute(routeID)
	if err != nil {
		return nil, err
	}

	category := CalculateDifficulty(route.DistanceKm, route.ElevationGain, route.EstimatedTime)
	label := category.Label("ca")
	if err := r.store.UpdateRouteDifficulty(routeID, label); err != nil {
		return nil, err
	}

	if label != route.Difficulty {
		log.Printf("Service: route %d difficulty recomputed: %q -> %q\n", routeID, route.Difficulty, label)
	}
	return &models.DifficultyResponse{RouteID: routeID, Difficulty: label}, nil
}
