package domain

import "sort"

// CityName keys every per-city table.
type CityName string

// GrowthRate is the static growth class of a city.
type GrowthRate uint8

const (
	GrowthDecline GrowthRate = iota + 1
	GrowthSteady
	GrowthGrowing
	GrowthBooming
	GrowthExploding
)

func (g GrowthRate) String() string {
	switch g {
	case GrowthDecline:
		return "decline"
	case GrowthSteady:
		return "steady"
	case GrowthGrowing:
		return "growing"
	case GrowthBooming:
		return "booming"
	case GrowthExploding:
		return "exploding"
	default:
		return "unknown"
	}
}

// CitySize is derived from population.
type CitySize uint8

const (
	SizeTown CitySize = iota + 1 // under 200k
	SizeCity                     // under 400k
	SizeMajorCity                // under 600k
	SizeMetropolis               // under 2M
	SizeMegalopolis
)

// Citizens is the number of citizen traders a freshly generated city holds.
func (s CitySize) Citizens() int {
	switch s {
	case SizeTown:
		return 2
	case SizeCity:
		return 3
	case SizeMajorCity:
		return 5
	case SizeMetropolis:
		return 8
	default:
		return 13
	}
}

// Resources is the number of natural-resource producers a freshly generated city holds.
func (s CitySize) Resources() int {
	switch s {
	case SizeTown, SizeCity:
		return 1
	case SizeMajorCity:
		return 2
	case SizeMetropolis:
		return 3
	default:
		return 5
	}
}

// City is immutable reference data.
type City struct {
	Name       CityName   `json:"name"`
	Population int        `json:"population"`
	Growth     GrowthRate `json:"growth"`
}

// Size classifies the city by population.
func (c City) Size() CitySize {
	switch {
	case c.Population < 200_000:
		return SizeTown
	case c.Population < 400_000:
		return SizeCity
	case c.Population < 600_000:
		return SizeMajorCity
	case c.Population < 2_000_000:
		return SizeMetropolis
	default:
		return SizeMegalopolis
	}
}

var cityCatalog = []City{
	{"New York", 5_620_048, GrowthGrowing},
	{"Chicago", 2_701_705, GrowthGrowing},
	{"Philadelphia", 1_823_779, GrowthGrowing},
	{"Detroit", 993_078, GrowthBooming},
	{"Cleveland", 796_841, GrowthBooming},
	{"Boston", 748_060, GrowthGrowing},
	{"Baltimore", 733_826, GrowthGrowing},
	{"Pittsburgh", 588_343, GrowthGrowing},
	{"Los Angeles", 576_673, GrowthExploding},
	{"San Francisco", 506_676, GrowthExploding},
	{"Milwaukee", 457_147, GrowthGrowing},
	{"Cincinnati", 401_247, GrowthBooming},
	{"Indianapolis", 314_194, GrowthSteady},
	{"St. Louis", 293_792, GrowthSteady},
	{"Columbus", 237_000, GrowthBooming},
	{"Louisville", 234_900, GrowthSteady},
	{"Oakland", 216_261, GrowthBooming},
	{"Atlanta", 200_616, GrowthSteady},
	{"Richmond", 171_667, GrowthGrowing},
	{"Nashville", 118_000, GrowthSteady},
	{"Jacksonville", 91_558, GrowthSteady},
	{"Knoxville", 77_818, GrowthSteady},
	{"Charlotte", 46_000, GrowthGrowing},
}

// Cities returns the reference city catalog sorted by name.
func Cities() []City {
	out := make([]City, len(cityCatalog))
	copy(out, cityCatalog)
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}
