// Package domain models aerodrome weather observations (METAR/SPECI) and the
// operational weather-minima ("limits") they are checked against.
//
// # Data Source
//
// Reports arrive as plain text, one METAR or SPECI per line, typically an
// archive export such as metar_data.txt. Only Dutch aerodromes are in scope:
// the station identifier must match EH followed by two letters.
//
// # METAR Conventions
//
// Date/time group:
//
//	DDHHMMZ, e.g. "151450Z" = day 15, 14:50 UTC.
//	The report carries no year or month; those come from the processing
//	period supplied by the caller (see package metar).
//
// Visibility:
//
//	Four digits in meters, e.g. "4000". "9999" means 10 km or more.
//	"CAVOK" implies unrestricted visibility and is stored as 9999.
//	A directional minimum such as "1500SW" carries a compass suffix.
//
// Cloud groups:
//
//	Coverage code followed by the base in hundreds of feet, e.g. "BKN008"
//	= broken at 800 ft. Coverage ascends FEW < SCT < BKN < OVC. A trailing
//	cloud type ("CB", "TCU") may follow the height.
//
// # Limits
//
// A limit defines minimum visibility and a cloud ceiling. The cloud rule
// decides which coverages count: "strict" counts SCT, BKN and OVC below the
// ceiling, "few-ok" only BKN and OVC. The time period restricts evaluation to
// the daylight operating window ("udp"), to the hours outside it
// ("outside-udp"), or to none ("24/7").
//
// # Daylight Operating Window (UDP)
//
// From 15 minutes before sunrise to 15 minutes after sunset at the station,
// computed for the UTC calendar date of the observation. See package solar.
package domain
