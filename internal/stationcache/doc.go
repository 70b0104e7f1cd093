// Package stationcache caches the public station listing and holds short-lived marks that
// keep scheduled reminders from being sent twice.
//
// Two implementations exist: Redis for multi-instance deployments and an in-process
// memory cache. The listing is invalidated after every committed loan or return, the TTL
// bounds staleness for writes made by other instances. Every Invalidate bumps a generation
// counter and a fill is only stored under the generation it started with.
package stationcache
