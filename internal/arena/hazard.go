package arena

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Hazard is an area-wide disaster that closes the area it strikes.
type Hazard uint8

const (
	Wildfire Hazard = iota
	Flood
	Earthquake
	Avalanche
	Blizzard
	Landslide
)

var hazardNames = [...]string{
	Wildfire:   "wildfire",
	Flood:      "flood",
	Earthquake: "earthquake",
	Avalanche:  "avalanche",
	Blizzard:   "blizzard",
	Landslide:  "landslide",
}

// Hazards returns the full catalog in declaration order.
func Hazards() []Hazard {
	return []Hazard{Wildfire, Flood, Earthquake, Avalanche, Blizzard, Landslide}
}

func (h Hazard) String() string {
	if int(h) < len(hazardNames) {
		return hazardNames[h]
	}
	return fmt.Sprintf("Hazard(%d)", uint8(h))
}

// ParseHazard looks a hazard up by name, ignoring case.
func ParseHazard(name string) (Hazard, error) {
	key := strings.ToLower(strings.TrimSpace(name))
	for _, h := range Hazards() {
		if h.String() == key {
			return h, nil
		}
	}
	return 0, fmt.Errorf("unknown hazard %q", name)
}

// HazardEvent records a hazard striking an area on a given day.
type HazardEvent struct {
	Hazard Hazard    `json:"hazard"`
	Area   Area      `json:"area"`
	GameID uuid.UUID `json:"game_id"`
	Day    int       `json:"day"`
}
