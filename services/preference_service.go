package services

import (
	"errors"
	"math"
	"strings"

	"github.com/oriolpt/senderisme/backend/database"
	"github.com/oriolpt/senderisme/backend/models"
)

// Fallbacks applied when a user has never stated a profile, or stated an
// incomplete one. Kept numerically identical to the historical behavior so
// existing clients see the same effective values.
const (
	defaultFitnessLevel      = "baixa"
	defaultPreferredDistance = 10.0
)

// maxLearnedWeight caps how much the completion history can pull the
// effective profile away from the stated one. The cap is reached at ten
// completions; beyond that more history does not increase its influence.
const maxLearnedWeight = 0.4

// FitnessToRank maps a stated fitness label to its rank on the 0..2 scale.
// Accepts the Catalan, Spanish and English spellings; anything else ranks
// lowest.
func FitnessToRank(fitness string) int {
	switch strings.ToLower(strings.TrimSpace(fitness)) {
	case "alta", "alto", "high":
		return 2
	case "mitjana", "mitja", "medio", "medium":
		return 1
	default:
		return 0
	}
}

// RankToFitness maps a rank back to the canonical Catalan fitness label.
func RankToFitness(rank int) string {
	switch {
	case rank >= 2:
		return "alta"
	case rank <= 0:
		return "baixa"
	default:
		return "mitjana"
	}
}

// RankToMaxDifficulty maps a rank to the hardest difficulty label the user
// should be recommended.
func RankToMaxDifficulty(rank int) string {
	switch {
	case rank >= 2:
		return "Difícil"
	case rank <= 0:
		return "Fàcil"
	default:
		return "Mitjana"
	}
}

// DifficultyRankFromLabel classifies a free-text route difficulty label on
// the 0..3 scale used by the completion-weighted aggregates. Substring
// matching because the column holds localized labels from several app
// versions. The Go side mirrors the SQL CASE in the preference store so a
// rank computed in either place agrees.
func DifficultyRankFromLabel(label string) int {
	l := strings.ToLower(label)
	switch {
	case strings.Contains(l, "molt"), strings.Contains(l, "muy"):
		return 3
	case strings.Contains(l, "dif"):
		return 2
	case strings.Contains(l, "mitj"), strings.Contains(l, "moder"), strings.Contains(l, "media"):
		return 1
	default:
		return 0
	}
}

// ComputeAdaptiveSignals blends the stated profile with the completion
// history. With no completions the stated profile passes through unchanged
// at weight zero. Otherwise the learned weight grows linearly with total
// completions up to the 0.4 cap, and each effective value is the convex
// blend of stated and learned. Pure function; both read paths and the
// completion before/after snapshots call it.
func ComputeAdaptiveSignals(baseFitness string, baseDistance float64, stats models.CompletionStats) models.AdaptiveSignals {
	if stats.TotalCompletions <= 0 {
		baseRank := FitnessToRank(baseFitness)
		return models.AdaptiveSignals{
			EffectiveFitnessLevel:      RankToFitness(baseRank),
			EffectiveMaxDifficulty:     RankToMaxDifficulty(baseRank),
			EffectivePreferredDistance: baseDistance,
			AdaptiveLearningWeight:     0,
			TotalCompletedRoutes:       0,
		}
	}

	learnedWeight := math.Min(maxLearnedWeight, float64(stats.TotalCompletions)/10*maxLearnedWeight)
	baseWeight := 1 - learnedWeight

	baseRank := float64(FitnessToRank(baseFitness))
	effectiveRank := baseRank*baseWeight + stats.AvgDifficultyRank*learnedWeight
	rankInt := int(math.Round(math.Max(0, math.Min(2, effectiveRank))))

	learnedDistance := stats.AvgDistanceKm
	if learnedDistance == 0 {
		learnedDistance = baseDistance
	}
	effectiveDistance := baseDistance*baseWeight + learnedDistance*learnedWeight

	return models.AdaptiveSignals{
		EffectiveFitnessLevel:       RankToFitness(rankInt),
		EffectiveMaxDifficulty:      RankToMaxDifficulty(rankInt),
		EffectivePreferredDistance:  roundTo(math.Max(1.0, effectiveDistance), 2),
		EffectivePreferredElevation: roundTo(stats.AvgElevationGain, 1),
		AdaptiveLearningWeight:      roundTo(learnedWeight, 3),
		TotalCompletedRoutes:        stats.TotalCompletions,
	}
}

func roundTo(v float64, decimals int) float64 {
	scale := math.Pow(10, float64(decimals))
	return math.Round(v*scale) / scale
}

// PreferenceStore is everything the preference engine needs from
// persistence. database.Store satisfies it.
type PreferenceStore interface {
	GetUserPreferences(userID int64) (*models.UserPreferences, error)
	UpsertUserPreferences(userID int64, req models.UpsertPreferencesRequest) (*models.UserPreferences, error)
	RecordCompletion(userID, routeID int64) (int, error)
	GetCompletionStats(userID int64) (models.CompletionStats, error)
	GetRoute(routeID int64) (*models.Route, error)
}

type PreferenceService struct {
	store PreferenceStore
}

func NewPreferenceService(store PreferenceStore) *PreferenceService {
	return &PreferenceService{store: store}
}

// GetPreferencesWithSignals returns the stated profile together with the
// adaptive view. A user who never saved a profile gets zeroed preferences
// with the signals computed from the fallbacks, so the adaptive fields are
// always present.
func (p *PreferenceService) GetPreferencesWithSignals(userID int64) (*models.PreferencesResponse, error) {
	prefs, err := p.store.GetUserPreferences(userID)
	if err != nil {
		if !errors.Is(err, database.ErrNotFound) {
			return nil, err
		}
		prefs = &models.UserPreferences{UserID: userID}
	}
	stats, err := p.store.GetCompletionStats(userID)
	if err != nil {
		return nil, err
	}
	return &models.PreferencesResponse{
		UserPreferences: *prefs,
		AdaptiveSignals: p.signalsFor(prefs, stats),
	}, nil
}

// UpsertPreferences overwrites the stated profile and returns it with the
// refreshed adaptive view.
func (p *PreferenceService) UpsertPreferences(userID int64, req models.UpsertPreferencesRequest) (*models.PreferencesResponse, error) {
	req.FitnessLevel = strings.TrimSpace(req.FitnessLevel)
	req.EnvironmentType = strings.TrimSpace(req.EnvironmentType)
	req.CulturalInterest = strings.TrimSpace(req.CulturalInterest)

	prefs, err := p.store.UpsertUserPreferences(userID, req)
	if err != nil {
		return nil, err
	}
	stats, err := p.store.GetCompletionStats(userID)
	if err != nil {
		return nil, err
	}
	return &models.PreferencesResponse{
		UserPreferences: *prefs,
		AdaptiveSignals: p.signalsFor(prefs, stats),
	}, nil
}

// CompleteRoute records one completion of the route and reports the
// adaptive signals immediately before and after it.
func (p *PreferenceService) CompleteRoute(userID, routeID int64) (*models.CompletionResponse, error) {
	if _, err := p.store.GetRoute(routeID); err != nil {
		return nil, err
	}

	base := &models.UserPreferences{UserID: userID}
	if prefs, err := p.store.GetUserPreferences(userID); err == nil {
		base = prefs
	} else if !errors.Is(err, database.ErrNotFound) {
		return nil, err
	}

	statsBefore, err := p.store.GetCompletionStats(userID)
	if err != nil {
		return nil, err
	}
	before := p.signalsFor(base, statsBefore)

	count, err := p.store.RecordCompletion(userID, routeID)
	if err != nil {
		return nil, err
	}

	statsAfter, err := p.store.GetCompletionStats(userID)
	if err != nil {
		return nil, err
	}
	after := p.signalsFor(base, statsAfter)

	return &models.CompletionResponse{
		RouteID:         routeID,
		CompletionCount: count,
		Before:          before,
		After:           after,
	}, nil
}

func (p *PreferenceService) signalsFor(prefs *models.UserPreferences, stats models.CompletionStats) models.AdaptiveSignals {
	fitness := prefs.FitnessLevel
	if fitness == "" {
		fitness = defaultFitnessLevel
	}
	distance := prefs.PreferredDistance
	if distance == 0 {
		distance = defaultPreferredDistance
	}
	return ComputeAdaptiveSignals(fitness, distance, stats)
}
