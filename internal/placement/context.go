package placement

import (
	"errors"
	"fmt"
)

// ErrInsufficientSubnets marks a placement with fewer subnet entries than
// the launch builder consumes. It is a configuration error: startup must
// fail rather than accept events.
var ErrInsufficientSubnets = errors.New("placement requires at least two subnet ids")

// minSubnets is the number of subnet entries the launch builder consumes.
const minSubnets = 2

// Context is the static network/identity bundle under which every launched
// task runs. It is resolved once at startup and shared read-only across
// invocations; nothing mutates it after construction.
type Context struct {
	ClusterID          string
	TaskTemplateID     string
	SubnetIDs          []string
	SecurityBoundaryID string

	// ContainerName is the container within the task template that receives
	// the per-event environment overrides.
	ContainerName string

	// StaticEnv holds optional non-secret environment pass-through entries
	// appended to every launch request.
	StaticEnv map[string]string
}

// New validates and constructs a placement context. A context with fewer
// than two subnets is a configuration error, caught here once rather than
// per invocation.
func New(clusterID, taskTemplateID string, subnetIDs []string, securityBoundaryID, containerName string, staticEnv map[string]string) (Context, error) {
	if clusterID == "" {
		return Context{}, fmt.Errorf("placement: cluster id is required")
	}
	if taskTemplateID == "" {
		return Context{}, fmt.Errorf("placement: task template id is required")
	}
	if securityBoundaryID == "" {
		return Context{}, fmt.Errorf("placement: security boundary id is required")
	}
	if containerName == "" {
		return Context{}, fmt.Errorf("placement: container name is required")
	}
	if len(subnetIDs) < minSubnets {
		return Context{}, fmt.Errorf("placement: got %d subnet id(s): %w", len(subnetIDs), ErrInsufficientSubnets)
	}

	// Defensive copies so later mutation of the caller's slices/maps cannot
	// leak into the shared context.
	subnets := make([]string, len(subnetIDs))
	copy(subnets, subnetIDs)

	var env map[string]string
	if len(staticEnv) > 0 {
		env = make(map[string]string, len(staticEnv))
		for k, v := range staticEnv {
			env[k] = v
		}
	}

	return Context{
		ClusterID:          clusterID,
		TaskTemplateID:     taskTemplateID,
		SubnetIDs:          subnets,
		SecurityBoundaryID: securityBoundaryID,
		ContainerName:      containerName,
		StaticEnv:          env,
	}, nil
}
