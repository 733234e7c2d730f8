package launch

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"

	"taskgate/internal/event"
	"taskgate/internal/placement"
)

// SerializationError reports event detail that could not be rendered as the
// EVENT_PAYLOAD override. It aborts the build; no partial request is produced.
type SerializationError struct {
	Err error
}

func (e *SerializationError) Error() string {
	return fmt.Sprintf("serialize event detail: %v", e.Err)
}

func (e *SerializationError) Unwrap() error {
	return e.Err
}

// Build assembles a run-task request from the placement context and a decoded
// event. It is a pure transformation: same inputs, same request, no side
// effects.
//
// Network placement uses exactly the first two subnets of the context (the
// >= 2 invariant is enforced when the context is constructed). The event
// detail is serialized to compact JSON text for EVENT_PAYLOAD; the event type
// goes into EVENT_TYPE verbatim.
func Build(pc placement.Context, ev event.Event) (Request, error) {
	payload, err := serializeDetail(ev.Detail)
	if err != nil {
		return Request{}, &SerializationError{Err: err}
	}

	env := []EnvVar{
		{Name: EnvEventPayload, Value: payload},
		{Name: EnvEventType, Value: ev.Type},
	}
	env = append(env, staticEnv(pc.StaticEnv)...)

	return Request{
		ClusterID:      pc.ClusterID,
		TaskTemplateID: pc.TaskTemplateID,
		LaunchMode:     LaunchMode,
		Networking: Networking{
			SubnetIDs:           []string{pc.SubnetIDs[0], pc.SubnetIDs[1]},
			SecurityBoundaryIDs: []string{pc.SecurityBoundaryID},
			AssignPublicAddress: false,
		},
		Overrides: Overrides{
			ContainerOverrides: []ContainerOverride{
				{Name: pc.ContainerName, Environment: env},
			},
		},
	}, nil
}

// serializeDetail renders the opaque detail as compact JSON. An absent detail
// serializes as null so the launched task always sees a parseable payload.
// Compacting also canonicalizes whitespace, which keeps repeated
// serialization of the same detail byte-identical.
func serializeDetail(detail json.RawMessage) (string, error) {
	if len(detail) == 0 {
		return "null", nil
	}

	var buf bytes.Buffer
	if err := json.Compact(&buf, detail); err != nil {
		return "", err
	}
	return buf.String(), nil
}

// staticEnv renders the context's pass-through entries in sorted key order so
// built requests are deterministic.
func staticEnv(entries map[string]string) []EnvVar {
	if len(entries) == 0 {
		return nil
	}

	keys := make([]string, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	out := make([]EnvVar, 0, len(keys))
	for _, k := range keys {
		out = append(out, EnvVar{Name: k, Value: entries[k]})
	}
	return out
}
