package services

import (
	"github.com/oriolpt/senderisme/backend/models"
	"github.com/oriolpt/senderisme/backend/utils"
)

// Classification of the heritage inventory's element types into the route
// interest flags. Labels are the dataset's own Catalan vocabulary,
// normalized via utils.NormalizeTypeLabel before lookup.
var (
	architectureTypes = map[string]bool{
		"conjunt arquitectònic": true,
		"edifici":               true,
		"element arquitectònic": true,
		"element urbà":          true,
		"obra civil":            true,
	}

	archaeologyTypes = map[string]bool{
		"jaciment arqueològic":   true,
		"jaciment paleontològic": true,
	}

	naturalInterestTypes = map[string]bool{
		"espècimen botànic": true,
		"zona d'interès":    true,
	}

	historicalTypes = map[string]bool{
		"costumari":            true,
		"manifestació festiva": true,
		"música i dansa":       true,
		"tradició oral":        true,
		"tècnica artesanal":    true,
		"fons bibliogràfic":    true,
		"fons d'imatges":       true,
		"fons documental":      true,
		"col·lecció":           true,
		"objecte":              true,
	}
)

// DeriveInterestFlags folds the element types of a route's associated items
// into the four interest flags. Architecture, archaeology and natural
// interest come from their fixed type sets; historical is the catch-all,
// so a non-empty type that belongs to no other set still marks the route
// as historically interesting. The inventory adds element types over time
// and most additions have been heritage-adjacent, so new unknown labels
// default to the broadest flag instead of being dropped. A route with no
// associated items gets all flags false.
func DeriveInterestFlags(itemTypes []string) models.InterestFlags {
	var flags models.InterestFlags
	for _, raw := range itemTypes {
		t := utils.NormalizeTypeLabel(raw)
		if t == "" {
			continue
		}
		switch {
		case architectureTypes[t]:
			flags.Architecture = true
		case archaeologyTypes[t]:
			flags.Archaeology = true
		case naturalInterestTypes[t]:
			flags.NaturalInterest = true
		case historicalTypes[t]:
			flags.Historical = true
		default:
			flags.Historical = true
		}
	}
	return flags
}
