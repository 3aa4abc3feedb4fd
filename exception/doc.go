// Package exception layers per-date overrides on top of a recurring series.
//
// Every operation takes a series by value and returns a Result holding a
// new series; the input is never changed. Exceptions are keyed by calendar
// day, so at most one exception exists per day and a later write replaces
// the earlier one. The rule stays the source of truth: Reconcile and
// EffectiveInstances derive the effective instance list on demand.
//
// Bulk operations are best effort. Each date is applied independently and
// earlier successes are kept when a later date fails.
package exception
