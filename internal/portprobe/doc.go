// Package portprobe answers "is this port free right now?" with acceptable,
// not perfect, accuracy — it binds the real socket and releases it rather
// than parsing /proc/net/* or shelling out to lsof/ss, so it works without
// elevated permissions.
//
// A probe result is a snapshot: a TOCTOU window always exists between a
// successful probe here and the container runtime actually binding the same
// port. Callers that need to compensate for that (internal/launcher) do so
// with bounded retry, not by strengthening this package's guarantees.
package portprobe
