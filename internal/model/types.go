package model

import (
	"fmt"
	"regexp"
)

// nameRegex validates container names per the launcher's name-injection
// defense: alphanumeric, must start with an alphanumeric character, may
// continue with alphanumerics, underscore, dot, or hyphen.
var nameRegex = regexp.MustCompile(`^[A-Za-z0-9][A-Za-z0-9_.\-]*$`)

// ValidateName checks a container name against the allocator's naming
// invariant (I5). Violations are raised before any runtime call — this is
// the defense against shell/command injection through a hostile name.
func ValidateName(name string) error {
	if name == "" {
		return NewValidationError("", "container name must not be empty")
	}
	if !nameRegex.MatchString(name) {
		return NewValidationError(name, fmt.Sprintf("invalid container name %q: must match %s", name, nameRegex.String()))
	}
	return nil
}

// WebRTCRangeSize is the number of UDP ports reserved per
// allocation for media transport, starting at Allocation.WebRTCStart.
const WebRTCRangeSize = 101

// Allocation is a port triple bound to a container name.
type Allocation struct {
	ServerPort  uint16 `json:"server_port"`
	DebugPort   uint16 `json:"debug_port"`
	WebRTCStart uint16 `json:"webrtc_port_start"`
}

// WebRTCEnd returns the inclusive upper bound of the reserved UDP range.
func (a Allocation) WebRTCEnd() uint16 {
	return a.WebRTCStart + WebRTCRangeSize - 1
}

// ContainerInfo is the minimal runtime view of a managed container that
// DockerQuery reports back to the Allocator and Launcher.
type ContainerInfo struct {
	Name   string
	Status string
}

// LaunchConfig carries all inputs to a single Launcher.Launch call. The
// three port fields are zero on input; Launch takes the config by value and
// fills them in on its own copy from Allocator.Allocate before the
// container is started. The caller's value is not modified — callers get
// the allocated ports from LaunchResult.Ports.
type LaunchConfig struct {
	ContainerName       string
	URL                 string
	ProfileDir          string
	ConnectionTimeoutS  int
	ChromeFlags         string
	HostNetwork         bool
	ImageTag            string
	TakeScreenshot      bool
	ScreenshotIntervalS int
	ExtraRunArgs        []string

	// Populated by Allocator.Allocate.
	ServerPort  uint16
	DebugPort   uint16
	WebRTCStart uint16
}

// ErrorKind names one of the error categories from the error-handling
// design. CLI and embedder callers branch on Kind rather than parsing error
// strings.
type ErrorKind string

const (
	KindValidation         ErrorKind = "validation"
	KindPortExhaustion     ErrorKind = "port_exhaustion"
	KindRuntimeUnavailable ErrorKind = "runtime_unavailable"
	KindPortConflict       ErrorKind = "port_conflict"
	KindNameConflict       ErrorKind = "name_conflict"
	KindReadinessTimeout   ErrorKind = "readiness_timeout"
	KindImageMissing       ErrorKind = "image_missing"
	KindCleanup            ErrorKind = "cleanup"
)

// ExitCode defines the process exit codes the CLI surface returns.
type ExitCode int

const (
	ExitSuccess              ExitCode = 0
	ExitGeneralError         ExitCode = 1
	ExitValidation           ExitCode = 2
	ExitDockerNotRunning     ExitCode = 3
	ExitPortAllocationFailed ExitCode = 4
	ExitReadinessTimeout     ExitCode = 5
	ExitImageMissing         ExitCode = 6
	ExitConflict             ExitCode = 7
)

var kindExitCodes = map[ErrorKind]ExitCode{
	KindValidation:         ExitValidation,
	KindPortExhaustion:     ExitPortAllocationFailed,
	KindRuntimeUnavailable: ExitDockerNotRunning,
	KindPortConflict:       ExitConflict,
	KindNameConflict:       ExitConflict,
	KindReadinessTimeout:   ExitReadinessTimeout,
	KindImageMissing:       ExitImageMissing,
	KindCleanup:            ExitGeneralError,
}

// CLIError is the single error value crossing the core's external boundary.
// It carries a Kind for programmatic branching (errors.As) and an exit code
// for the CLI surface.
type CLIError struct {
	Kind          ErrorKind
	ContainerName string
	Message       string
	Err           error
}

func (e *CLIError) Error() string {
	msg := e.Message
	if e.ContainerName != "" {
		msg = fmt.Sprintf("%s (container %q)", msg, e.ContainerName)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", msg, e.Err)
	}
	return msg
}

// Unwrap allows errors.Is/errors.As to reach the underlying cause.
func (e *CLIError) Unwrap() error {
	return e.Err
}

// Code returns the process exit code associated with this error's Kind.
func (e *CLIError) Code() ExitCode {
	if code, ok := kindExitCodes[e.Kind]; ok {
		return code
	}
	return ExitGeneralError
}

func newKindError(kind ErrorKind, name, message string, err error) *CLIError {
	return &CLIError{Kind: kind, ContainerName: name, Message: message, Err: err}
}

// NewValidationError reports a container name that fails I5's regex.
func NewValidationError(name, message string) *CLIError {
	return newKindError(KindValidation, name, message, nil)
}

// NewPortExhaustionError reports that no free port/range was found below 65535.
func NewPortExhaustionError(name, message string) *CLIError {
	return newKindError(KindPortExhaustion, name, message, nil)
}

// WrapRuntimeUnavailable reports that the container runtime CLI/daemon is
// unreachable or did not respond within its timeout.
func WrapRuntimeUnavailable(name, message string, err error) *CLIError {
	return newKindError(KindRuntimeUnavailable, name, message, err)
}

// WrapPortConflict reports a late-binding TOCTOU port conflict detected from
// the runtime's stderr.
func WrapPortConflict(name, message string, err error) *CLIError {
	return newKindError(KindPortConflict, name, message, err)
}

// WrapNameConflict reports a container-name conflict detected from the
// runtime's stderr.
func WrapNameConflict(name, message string, err error) *CLIError {
	return newKindError(KindNameConflict, name, message, err)
}

// NewReadinessTimeoutError reports that the debug endpoint never answered
// within ConnectionTimeoutS.
func NewReadinessTimeoutError(name, message string) *CLIError {
	return newKindError(KindReadinessTimeout, name, message, nil)
}

// WrapImageMissingError reports that the image doesn't exist and the build
// collaborator failed to produce it.
func WrapImageMissingError(name, message string, err error) *CLIError {
	return newKindError(KindImageMissing, name, message, err)
}

// WrapCleanupError reports a non-fatal failure during teardown. Callers log
// it and continue; it is never propagated as a launch failure.
func WrapCleanupError(name, message string, err error) *CLIError {
	return newKindError(KindCleanup, name, message, err)
}

// AllocationSnapshot pairs a container name with its Allocation for
// diagnostic listing (CLI `list`).
type AllocationSnapshot struct {
	ContainerName string
	Allocation    Allocation
	Running       bool
}
