// Package launcher orchestrates the end-to-end lifecycle of one managed
// container: image check, conflict stop, profile hygiene, port allocation,
// container start with bounded conflict-retry, websocket readiness wait,
// optional screenshot loop, and graceful teardown.
//
// Containers are started as a docker run subprocess rather than through
// the Docker SDK's create/start pair, and exit hooks drive the same
// teardown a signal or a normal return would.
package launcher
