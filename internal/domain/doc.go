// Package domain models the weather dashboard session: geocoded locations,
// forecast payloads, and the status machines that coordinate them.
//
// # Day keys
//
// Forecast days are keyed by their local calendar date ("2006-01-02" in the
// location's timezone). WeatherData.DayOrder lists the keys chronologically;
// the selected day, the daily list, and the hourly-by-day map all use the
// same keys, so replacing a payload wholesale keeps them consistent by
// construction.
//
// # Units
//
// A forecast payload is only meaningful for the (location, units) pair it
// was fetched for. Changing either value restarts the fetch cycle from
// scratch rather than converting in place.
package domain
