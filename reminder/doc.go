// Package reminder adjusts reminder lead times from weather, traffic, travel
// and user status.
//
// # Timing
//
// CalculateSmartTiming runs a fixed pipeline over a running total in
// minutes:
//
//  1. weather: storm or snow +30, heavy rain +20, other bad weather +15,
//     uncomfortable temperature +10
//  2. traffic: the delay over normal travel time, capped at 60
//  3. travel: 20% of a trip longer than 30 minutes, capped at 30
//  4. user status: inactive +10, busy +15
//
// Each step appends a note to the description. The result is never
// shorter than the input and keeps the input unit.
//
// # Gating
//
// EvaluateSmartConditions is separate from timing. It suppresses reminders
// in severe weather and moves them earlier in severe traffic.
//
// # Context
//
// The engine only reads a SmartContext built by the caller. Resolver can
// build one from WeatherProvider and TrafficProvider implementations,
// caching answers in a ContextCache for 15 minutes.
package reminder
