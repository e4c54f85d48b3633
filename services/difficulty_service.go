package services

import (
	"strconv"
	"strings"

	"github.com/oriolpt/senderisme/backend/config"
)

// DifficultyCategory is the closed set of difficulty bands. The category is
// what gets compared and stored-adjacent logic reasons about; the localized
// strings are a display concern layered on top via Label.
type DifficultyCategory int

const (
	DifficultyEasy DifficultyCategory = iota
	DifficultyModerate
	DifficultyDifficult
	DifficultyVeryDifficult
)

// Default score band boundaries, overridable through config. Bands are
// half-open: score < EasyBelow is easy, score == EasyBelow is already
// moderate, and so on.
const (
	DefaultEasyBelow      = 5.0
	DefaultModerateBelow  = 15.0
	DefaultDifficultBelow = 30.0
)

var difficultyLabels = map[string][4]string{
	"ca": {"Fàcil", "Mitjana", "Difícil", "Molt Difícil"},
	"es": {"Fácil", "Moderada", "Difícil", "Muy Difícil"},
}

// Label renders the category for a display language. Unknown languages fall
// back to Catalan, the app's primary locale.
func (c DifficultyCategory) Label(lang string) string {
	labels, ok := difficultyLabels[lang]
	if !ok {
		labels = difficultyLabels["ca"]
	}
	if c < DifficultyEasy || c > DifficultyVeryDifficult {
		c = DifficultyEasy
	}
	return labels[c]
}

func difficultyThresholds() (easy, moderate, difficult float64) {
	cfg := config.AppConfig.Difficulty
	easy, moderate, difficult = cfg.EasyBelow, cfg.ModerateBelow, cfg.DifficultBelow
	if easy == 0 {
		easy = DefaultEasyBelow
	}
	if moderate == 0 {
		moderate = DefaultModerateBelow
	}
	if difficult == 0 {
		difficult = DefaultDifficultBelow
	}
	return
}

// DifficultyScore returns the raw score: distance plus elevation gain per
// hundred meters. Negative inputs count as zero. Used on its own for
// filtering and sorting in recommendations.
func DifficultyScore(distanceKm float64, elevationGainM int) float64 {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if elevationGainM < 0 {
		elevationGainM = 0
	}
	return distanceKm + float64(elevationGainM)/100
}

// CalculateDifficulty maps raw route metrics to a difficulty category.
//
// When a stated duration is supplied and parseable, and the hike takes more
// than 1.2 times the expected duration (4 km/h on the flat plus half an
// hour per 300 m of climb), the score is multiplied by ratio*0.3. This is
// a heuristic adjustment for terrain difficulty the distance/elevation pair
// does not capture, kept numerically compatible with the historical data;
// it is not claimed to be physically exact.
//
// Deterministic and side-effect-free: identical inputs always produce the
// identical category, so a client re-fetching a listing never sees flicker.
func CalculateDifficulty(distanceKm float64, elevationGainM int, estimatedTime string) DifficultyCategory {
	if distanceKm < 0 {
		distanceKm = 0
	}
	if elevationGainM < 0 {
		elevationGainM = 0
	}

	score := DifficultyScore(distanceKm, elevationGainM)

	if estimatedTime != "" {
		if actualMinutes, ok := ParseTimeToMinutes(estimatedTime); ok {
			expectedHours := distanceKm/4 + (float64(elevationGainM)/300)*0.5
			expectedMinutes := expectedHours * 60
			if expectedMinutes > 0 {
				ratio := float64(actualMinutes) / expectedMinutes
				if ratio > 1.2 {
					score *= ratio * 0.3
				}
			}
		}
	}

	easy, moderate, difficult := difficultyThresholds()
	switch {
	case score < easy:
		return DifficultyEasy
	case score < moderate:
		return DifficultyModerate
	case score < difficult:
		return DifficultyDifficult
	default:
		return DifficultyVeryDifficult
	}
}

// ParseTimeToMinutes parses a stated duration to minutes. Supported forms:
// colon ("2:30") and unit ("2h30m", "2h 30m", "2h", "45m"). Unparseable
// strings report ok=false; a bad duration means "no duration available",
// never an error.
func ParseTimeToMinutes(timeStr string) (int, bool) {
	timeStr = strings.ToLower(strings.TrimSpace(timeStr))
	if timeStr == "" {
		return 0, false
	}

	total := 0

	switch {
	case strings.ContainsAny(timeStr, "hm"):
		spaced := strings.ReplaceAll(timeStr, "h", " h ")
		spaced = strings.ReplaceAll(spaced, "m", " m ")
		parts := strings.Fields(spaced)
		for i := 0; i+1 < len(parts); {
			num, err := strconv.ParseFloat(parts[i], 64)
			if err != nil {
				i++
				continue
			}
			switch parts[i+1] {
			case "h":
				total += int(num * 60)
				i += 2
			case "m":
				total += int(num)
				i += 2
			default:
				i++
			}
		}
	case strings.Contains(timeStr, ":"):
		parts := strings.Split(timeStr, ":")
		if len(parts) < 2 {
			return 0, false
		}
		hours, errH := strconv.Atoi(strings.TrimSpace(parts[0]))
		minutes, errM := strconv.Atoi(strings.TrimSpace(parts[1]))
		if errH != nil || errM != nil {
			return 0, false
		}
		total = hours*60 + minutes
	}

	if total <= 0 {
		return 0, false
	}
	return total, true
}
