package solar

import (
	"math"
	"time"
)

const (
	j2000          = 2451545.0
	sunsetZenith   = 90.833
	windowMargin   = 15 * time.Minute
	minutesPerHalf = 720.0
)

// SunriseSunset returns sunrise and sunset in UTC for the UTC calendar date of
// date at the given coordinates.
func SunriseSunset(date time.Time, c Coordinates) (sunrise, sunset time.Time) {
	date = date.UTC()
	year, month, day := date.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)

	n := julianDay(year, month, day) - j2000

	meanLon := math.Mod(280.46+0.9856474*n, 360)
	anomaly := radians(math.Mod(357.528+0.9856003*n, 360))
	eclipticLon := radians(meanLon + 1.915*math.Sin(anomaly) + 0.02*math.Sin(2*anomaly))
	obliquity := radians(23.439 - 0.0000004*n)

	rightAsc := degrees(math.Atan2(math.Cos(obliquity)*math.Sin(eclipticLon), math.Cos(eclipticLon)))
	declination := math.Asin(math.Sin(obliquity) * math.Sin(eclipticLon))

	// Equation of time in minutes. Not folded: when right ascension has wrapped
	// past 0° and mean longitude has not (around the March equinox) this is
	// close to a full day and both events fall on the previous UTC date.
	eqTime := 4 * (normalize360(meanLon) - normalize360(rightAsc))

	lat := radians(c.Lat)
	cosH := (math.Cos(radians(sunsetZenith)) - math.Sin(lat)*math.Sin(declination)) /
		(math.Cos(lat) * math.Cos(declination))

	switch {
	case cosH < -1:
		return midnight, midnight.Add(24*time.Hour - time.Second)
	case cosH > 1:
		noon := midnight.Add(12 * time.Hour)
		return noon, noon
	}

	hourAngle := degrees(math.Acos(cosH))
	sunriseMin := minutesPerHalf - 4*(c.Lon+hourAngle) - eqTime
	sunsetMin := minutesPerHalf - 4*(c.Lon-hourAngle) - eqTime

	return addMinutes(midnight, sunriseMin), addMinutes(midnight, sunsetMin)
}

// DaylightWindow returns the operating window bounds: sunrise minus 15
// minutes to sunset plus 15 minutes.
func DaylightWindow(date time.Time, c Coordinates) (start, end time.Time) {
	sunrise, sunset := SunriseSunset(date, c)
	return sunrise.Add(-windowMargin), sunset.Add(windowMargin)
}

// IsDaylightWindow reports whether t falls inside the operating window of its
// own UTC date. Both bounds are inclusive.
func IsDaylightWindow(t time.Time, c Coordinates) bool {
	start, end := DaylightWindow(t, c)
	return inWindow(t, start, end)
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && !t.After(end)
}

// julianDay converts a proleptic Gregorian date to its Julian day number.
func julianDay(year int, month time.Month, day int) float64 {
	a := (14 - int(month)) / 12
	y := year + 4800 - a
	m := int(month) + 12*a - 3
	return float64(day + (153*m+2)/5 + 365*y + y/4 - y/100 + y/400 - 32045)
}

// addMinutes rounds half-up to a whole minute and offsets from midnight.
// Values outside [0, 1440) roll into the neighbouring day.
func addMinutes(midnight time.Time, minutes float64) time.Time {
	whole := int(math.Floor(minutes + 0.5))
	return midnight.Add(time.Duration(whole) * time.Minute)
}

func normalize360(deg float64) float64 {
	return math.Mod(math.Mod(deg, 360)+360, 360)
}

func radians(deg float64) float64 { return deg * math.Pi / 180 }
func degrees(rad float64) float64 { return rad * 180 / math.Pi }
