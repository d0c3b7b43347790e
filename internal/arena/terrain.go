package arena

import (
	opensimplex "github.com/ojrac/opensimplex-go"
)

// Biome is the flavour of an area's terrain, used when describing it.
type Biome uint8

const (
	BiomeGrassland Biome = iota
	BiomeForest
	BiomeMountain
	BiomeDesert
	BiomeTundra
	BiomeSwamp
)

var biomeNames = [...]string{
	BiomeGrassland: "grassland",
	BiomeForest:    "forest",
	BiomeMountain:  "mountain ridge",
	BiomeDesert:    "desert",
	BiomeTundra:    "frozen tundra",
	BiomeSwamp:     "swamp",
}

func (b Biome) String() string {
	if int(b) < len(biomeNames) {
		return biomeNames[b]
	}
	return "wasteland"
}

// Terrain describes the physical character of an area.
type Terrain struct {
	Elevation   float64 `json:"elevation"`   // 0.0 (lowland) to 1.0 (peak)
	Temperature float64 `json:"temperature"` // 0.0 (frozen) to 1.0 (scorching)
	Moisture    float64 `json:"moisture"`    // 0.0 (arid) to 1.0 (waterlogged)
	Biome       Biome   `json:"biome"`
}

// Sample points for each area on the noise plane. The hub sits at the origin.
var areaPositions = map[Area][2]float64{
	Cornucopia: {0, 0},
	NorthEast:  {1, -1},
	NorthWest:  {-1, -1},
	SouthEast:  {1, 1},
	SouthWest:  {-1, 1},
}

// GenerateTerrain derives a terrain for every area from layered simplex
// noise. The same seed always yields the same arena.
func GenerateTerrain(seed int64) map[Area]Terrain {
	elevNoise := opensimplex.NewNormalized(seed)
	tempNoise := opensimplex.NewNormalized(seed + 1)
	moistNoise := opensimplex.NewNormalized(seed + 2)

	out := make(map[Area]Terrain, len(areaPositions))
	for _, a := range All() {
		pos := areaPositions[a]
		t := Terrain{
			Elevation:   octaveNoise(elevNoise, pos[0], pos[1], 3, 0.7, 0.5),
			Temperature: octaveNoise(tempNoise, pos[0], pos[1], 2, 0.5, 0.5),
			Moisture:    octaveNoise(moistNoise, pos[0], pos[1], 2, 0.6, 0.5),
		}
		t.Biome = classify(t)
		out[a] = t
	}
	return out
}

func classify(t Terrain) Biome {
	switch {
	case t.Elevation > 0.68:
		return BiomeMountain
	case t.Temperature < 0.3:
		return BiomeTundra
	case t.Temperature > 0.7 && t.Moisture < 0.4:
		return BiomeDesert
	case t.Moisture > 0.65:
		return BiomeSwamp
	case t.Moisture > 0.45:
		return BiomeForest
	default:
		return BiomeGrassland
	}
}

// octaveNoise generates fractal noise by layering multiple frequencies.
func octaveNoise(noise opensimplex.Noise, x, y float64, octaves int, frequency, persistence float64) float64 {
	total := 0.0
	amplitude := 1.0
	maxVal := 0.0

	for i := 0; i < octaves; i++ {
		total += noise.Eval2(x*frequency, y*frequency) * amplitude
		maxVal += amplitude
		amplitude *= persistence
		frequency *= 2
	}

	return total / maxVal
}
