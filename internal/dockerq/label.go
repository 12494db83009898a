package dockerq

// LabelManagedBy is set on every container this launcher starts, so
// RunningNames can filter the runtime's container list down to containers
// this tool is responsible for reaping allocations against — a stopped
// container from some unrelated tool must never be mistaken for a dead
// neko-launcher allocation.
const (
	LabelManagedBy      = "neko-launcher.managed-by"
	LabelManagedByValue = "neko-launcher"
)
