package launcher

import (
	"context"
	"fmt"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/jebin2/neko-launcher/internal/model"
)

// baseBackoff is the base of the retry delay formula: base · 2^attempt ·
// U(1.5, 3.5).
const baseBackoff = 1 * time.Second

// conflictOutcome classifies what a failed "docker run" invocation's
// stderr implies about what to do next.
type conflictOutcome int

const (
	outcomeFatal conflictOutcome = iota
	outcomePortConflict
	outcomeNameConflict
)

// classifyRunFailure classifies a failed "docker run" invocation's stderr
// into fatal, port conflict, or container-name conflict.
func classifyRunFailure(stderr string) conflictOutcome {
	lower := strings.ToLower(stderr)
	switch {
	case strings.Contains(lower, "port is already allocated"), strings.Contains(lower, "address already in use"):
		return outcomePortConflict
	case strings.Contains(lower, "conflict") && strings.Contains(lower, "container name"):
		return outcomeNameConflict
	case strings.Contains(lower, "already in use by container"):
		return outcomeNameConflict
	default:
		return outcomeFatal
	}
}

// computeBackoff computes a jittered exponential backoff: base · 2^attempt
// · U(1.5, 3.5). Jitter spreads out retries from multiple concurrent
// launchers so they don't all retry in lockstep.
func computeBackoff(attempt int) time.Duration {
	jitter := 1.5 + rand.Float64()*2.0
	multiplier := float64(uint64(1)<<uint(attempt)) * jitter
	return time.Duration(float64(baseBackoff) * multiplier)
}

// runWithRetry implements launch steps 5–7: start the container, and on a
// port or name conflict detected from stderr, compensate and retry, making
// at most maxRunAttempts run attempts in all, with jittered backoff between
// attempts.
func (l *Launcher) runWithRetry(ctx context.Context, cfg *model.LaunchConfig) error {
	var lastErr error

	for attempt := 0; attempt < maxRunAttempts; attempt++ {
		_, stderr, err := l.Runtime.Run(ctx, *cfg)
		if err == nil {
			return nil
		}

		switch classifyRunFailure(stderr) {
		case outcomePortConflict:
			if releaseErr := l.Allocator.Release(ctx, cfg.ContainerName); releaseErr != nil {
				return releaseErr
			}
			alloc, allocErr := l.Allocator.Allocate(ctx, cfg.ContainerName)
			if allocErr != nil {
				return allocErr
			}
			cfg.ServerPort = alloc.ServerPort
			cfg.DebugPort = alloc.DebugPort
			cfg.WebRTCStart = alloc.WebRTCStart
			lastErr = model.WrapPortConflict(cfg.ContainerName, fmt.Sprintf("port conflict on attempt %d: %s", attempt+1, stderr), err)

		case outcomeNameConflict:
			if removeErr := l.Runtime.Remove(ctx, cfg.ContainerName); removeErr != nil {
				return removeErr
			}
			lastErr = model.WrapNameConflict(cfg.ContainerName, fmt.Sprintf("name conflict on attempt %d: %s", attempt+1, stderr), err)

		default:
			return model.WrapRuntimeUnavailable(cfg.ContainerName, fmt.Sprintf("docker run failed: %s", stderr), err)
		}

		if attempt == maxRunAttempts-1 {
			break
		}

		select {
		case <-time.After(computeBackoff(attempt)):
		case <-ctx.Done():
			return ctx.Err()
		}
	}

	return lastErr
}
