// Package process tracks subprocesses and containers this launcher starts,
// and guarantees container stop and port release on normal process exit
// and on exceptions during a partial startup.
//
// Handle wraps one managed container's subprocess (if any — the
// screenshot loop) together with its name and allocated ports;
// ExitHookRegistry is the process-wide mechanism that runs every live
// Handle's cleanup closure from the signal handler InstallSignalHandler
// starts or from an explicit Shutdown call. cmd/neko-launcher's main does
// neither.
package process
