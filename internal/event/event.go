package event

import "encoding/json"

// TypeUnknown is the sentinel type assigned to envelopes that carry no
// usable detail-type field.
const TypeUnknown = "Unknown"

// Event is the decoded form of an inbound envelope: a type tag plus the
// opaque detail payload, passed through verbatim.
type Event struct {
	Type   string
	Detail json.RawMessage
}

// envelope mirrors the inbound wire shape. detail-type is optional.
type envelope struct {
	DetailType *string         `json:"detail-type"`
	Detail     json.RawMessage `json:"detail"`
}

// Decode parses a raw event envelope into its typed form. Decoding is total:
// there is no error case. A missing, null, or empty detail-type maps to
// TypeUnknown. A body that is not a JSON object is treated as an untyped
// envelope whose detail is the body itself.
func Decode(raw []byte) Event {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return Event{Type: TypeUnknown, Detail: raw}
	}

	ev := Event{Type: TypeUnknown, Detail: env.Detail}
	if env.DetailType != nil && *env.DetailType != "" {
		ev.Type = *env.DetailType
	}
	return ev
}
