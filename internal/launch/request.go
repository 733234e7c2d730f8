package launch

// LaunchMode is the only launch mode taskgate issues: the task's network
// interface is placed inside a private subnet with no public address.
const LaunchMode = "isolated-network-execution"

// Environment override names injected into the launched container.
const (
	EnvEventPayload = "EVENT_PAYLOAD"
	EnvEventType    = "EVENT_TYPE"
)

// Request is the fully-assembled run-task command sent to the orchestration
// backend. It is constructed fresh per event and never mutated after
// submission.
type Request struct {
	ClusterID      string     `json:"cluster"`
	TaskTemplateID string     `json:"taskTemplate"`
	LaunchMode     string     `json:"launchMode"`
	Networking     Networking `json:"networkConfiguration"`
	Overrides      Overrides  `json:"overrides"`
}

// Networking pins the task into the private network topology. There is
// deliberately no way to request a public address: AssignPublicAddress is
// always serialized as false.
type Networking struct {
	SubnetIDs           []string `json:"subnets"`
	SecurityBoundaryIDs []string `json:"securityGroups"`
	AssignPublicAddress bool     `json:"assignPublicIp"`
}

// Overrides carries the per-invocation container overrides.
type Overrides struct {
	ContainerOverrides []ContainerOverride `json:"containerOverrides"`
}

// ContainerOverride targets a single container within the task template.
type ContainerOverride struct {
	Name        string   `json:"name"`
	Environment []EnvVar `json:"environment"`
}

// EnvVar is one environment override entry.
type EnvVar struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}
