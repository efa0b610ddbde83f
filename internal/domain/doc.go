// Package domain models hourly wind conditions at a coastal inlet and the
// rule-based thermal model that turns them into kiteboarding predictions.
//
// # The Thermal Wind Mechanism
//
// On summer days, inland heating draws cool marine air up the Howe Sound
// fjord toward Squamish. The strength of that inflow tracks the sea-level
// pressure difference between a reference coastal station (Vancouver
// International, YVR) and the inlet itself:
//
//	gradient = reference_pressure − site_pressure   (hPa)
//
// A positive gradient pushes air toward the inlet; roughly 2.5 hPa is the
// point where the thermal becomes rideable, and 4 hPa or more produces the
// strong, reliable afternoon wind the spot is known for. Below 2.5 hPa the
// model falls back to the synoptic (forecast) wind with no thermal
// contribution.
//
// # Rule Cascade
//
// Each hour is evaluated through an ordered cascade; the first matching gate
// is terminal for that hour:
//
//  1. Storm gate: precipitation > 2.0 mm with site pressure < 1008 hPa means
//     a frontal system, not a thermal. Output is a fixed danger marker
//     (steady 0, gust 45) so downstream display cannot mistake it for a
//     rideable forecast.
//  2. Heat-bubble gate: above 31 °C the inland thermal low "caps" and the
//     convection cycle collapses, leaving light, unrideable air (5/8/12 kn).
//  3. Thermal model: piecewise-linear in the gradient (see above).
//  4. Gust and lull derivation: local gusts run about 35% over the steady
//     thermal wind; an externally reported gust that is stronger wins. Lulls
//     dip to about 70% of steady.
//  5. Rain dampener: light rain (> 0.5 mm) cools the convection cycle and
//     cuts a thermal or synoptic signal to 60% steady / 80% gust. Hours that
//     were already "light" carry no signal to dampen.
//
// After the cascade an explicit clamp restores 0 ≤ lull ≤ steady ≤ gust; the
// dampener scales steady and gust independently and can otherwise invert the
// ordering.
//
// # Units and Time
//
// Pressure is hPa (mean sea level), temperature °C, precipitation mm/h, wind
// speeds knots, direction degrees. All timestamps are hourly in the site's
// local time zone; the kiteable day is the local 10:00–21:00 range.
//
// # Statuses
//
// light | good | excellent — thermal model outcomes, in rising order.
// heat_bubble — gate 2. rain_risk — dampened by gate 5. danger_storm — gate 1,
// a hard safety override.
//
// All functions here are pure and stateless over immutable records; the only
// mutable package state is the swappable test clock in clock.go. Validation
// happens once, in Normalize; Predict, DetectWindow, and Evaluate are total
// over well-formed input.
package domain
