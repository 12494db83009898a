// Package dockerq wraps the container-runtime interactions the core depends
// on: listing running container names, checking image presence, killing and
// removing containers, and running a command inside one.
//
// Every operation wraps an external call (the Docker Engine SDK, or a
// "docker" CLI shell-out where the SDK workflow would be needlessly
// complex) behind a bounded timeout, default 5 seconds, so a wedged daemon
// never hangs the Allocator or Launcher indefinitely.
package dockerq
