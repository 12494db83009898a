// Package profile cleans a Chrome user-data directory before a container
// launch reuses it, so a container killed mid-session never resurfaces as
// a stale singleton lock or a "Restore pages" prompt in the next session.
//
// Every removal step is best-effort: a failure reports through a logrus
// field rather than aborting the rest of the cleanup, since a half-clean
// profile is still better than no attempt at all.
package profile
