package solar

import "sort"

// DefaultStation is the aerodrome substituted for unknown codes by Resolve
// when the caller has no better choice.
const DefaultStation = "EHAM"

// Coordinates is a WGS-84 latitude/longitude pair in degrees.
type Coordinates struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Station is an aerodrome with a known reference point.
type Station struct {
	ICAO string `json:"icao"`
	Name string `json:"name"`
	Coordinates
}

var stations = map[string]Station{
	"EHAM": {ICAO: "EHAM", Name: "Amsterdam Schiphol", Coordinates: Coordinates{Lat: 52.31, Lon: 4.76}},
	"EHGG": {ICAO: "EHGG", Name: "Groningen Eelde", Coordinates: Coordinates{Lat: 53.12, Lon: 6.58}},
	"EHLE": {ICAO: "EHLE", Name: "Lelystad", Coordinates: Coordinates{Lat: 52.46, Lon: 5.52}},
	"EHJK": {ICAO: "EHJK", Name: "De Kooy", Coordinates: Coordinates{Lat: 52.92, Lon: 4.78}},
	"EHWO": {ICAO: "EHWO", Name: "Woensdrecht", Coordinates: Coordinates{Lat: 51.45, Lon: 5.40}},
}

// Stations returns the known aerodromes sorted by ICAO code.
func Stations() []Station {
	out := make([]Station, 0, len(stations))
	for _, s := range stations {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ICAO < out[j].ICAO })
	return out
}

// Lookup returns the coordinates of a known station.
func Lookup(icao string) (Coordinates, bool) {
	s, ok := stations[icao]
	return s.Coordinates, ok
}

// Known reports whether icao is in the station table.
func Known(icao string) bool {
	_, ok := stations[icao]
	return ok
}

// Resolve returns the coordinates for icao, substituting fallback when icao
// is unknown. It also returns the code whose coordinates were used. If the
// fallback is unknown too, DefaultStation is used.
func Resolve(icao, fallback string) (Coordinates, string) {
	if c, ok := Lookup(icao); ok {
		return c, icao
	}
	if c, ok := Lookup(fallback); ok {
		return c, fallback
	}
	return stations[DefaultStation].Coordinates, DefaultStation
}
