// Package domain models Hong Kong Observatory (HKO) open-data weather
// payloads and the humidity checks run against them.
//
// # Data Source
//
// Payloads come from https://data.weather.gov.hk/weatherAPI/opendata/weather.php.
// The "fnd" data type returns the 9-day forecast, "rhrread" the current
// weather report and "warnsum" the warning summary. Only the 9-day forecast
// has a typed view ([ForecastPayload]); the other two stay opaque [Payload]s.
//
// # Forecast Conventions
//
// Dates:
//
//	forecastDate is "YYYYMMDD" with no separators, e.g. "20261020".
//	Lookups compare against the target date formatted in its own location,
//	so callers decide whether "today" means local or Hong Kong time.
//	Entries appear in calendar order and each date at most once; if a
//	payload repeats a date the first entry is authoritative.
//
// Relative humidity:
//
//	forecastMinrh / forecastMaxrh are {"value": 60, "unit": "percent"}.
//	Either object, or its value, may be missing on partial payloads.
//
// # Humidity Text
//
// Humidity ranges travel as text in two directions. The API side renders
// "<min> - <max>" (see [FormatHumidity]); the app UI shows strings such as
// "60-85%" or "60% – 85%". Both are read back by [ParseHumidityRange], which
// accepts an ASCII hyphen or a U+2013 en dash as separator and nothing else.
package domain
