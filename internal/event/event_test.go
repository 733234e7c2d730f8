package event

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name       string
		raw        string
		wantType   string
		wantDetail string
	}{
		{
			name:       "type present",
			raw:        `{"detail-type": "myDetailType", "detail": {"orderId": 42}}`,
			wantType:   "myDetailType",
			wantDetail: `{"orderId": 42}`,
		},
		{
			name:       "type missing",
			raw:        `{"detail": {}}`,
			wantType:   TypeUnknown,
			wantDetail: `{}`,
		},
		{
			name:       "type empty string",
			raw:        `{"detail-type": "", "detail": {"a": 1}}`,
			wantType:   TypeUnknown,
			wantDetail: `{"a": 1}`,
		},
		{
			name:       "type null",
			raw:        `{"detail-type": null, "detail": [1, 2]}`,
			wantType:   TypeUnknown,
			wantDetail: `[1, 2]`,
		},
		{
			name:       "detail missing",
			raw:        `{"detail-type": "sparse"}`,
			wantType:   "sparse",
			wantDetail: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := Decode([]byte(tt.raw))
			assert.Equal(t, tt.wantType, ev.Type)
			assert.Equal(t, tt.wantDetail, string(ev.Detail))
		})
	}
}

func TestDecode_NonObjectBody(t *testing.T) {
	raw := []byte(`not json at all`)
	ev := Decode(raw)

	assert.Equal(t, TypeUnknown, ev.Type)
	assert.Equal(t, raw, []byte(ev.Detail))
}

func TestDecode_TypeVerbatim(t *testing.T) {
	// The type tag must not be trimmed, folded, or otherwise normalized.
	ev := Decode([]byte(`{"detail-type": "  Order.Placed  ", "detail": {}}`))
	assert.Equal(t, "  Order.Placed  ", ev.Type)
}

func TestDecode_DetailRoundTrip(t *testing.T) {
	// Nested structure survives decode unchanged.
	raw := `{"detail-type": "t", "detail": {"a": {"b": [1, 2, {"c": "x"}]}, "n": null}}`
	ev := Decode([]byte(raw))

	var got, want any
	assert.NoError(t, json.Unmarshal(ev.Detail, &got))
	assert.NoError(t, json.Unmarshal([]byte(`{"a": {"b": [1, 2, {"c": "x"}]}, "n": null}`), &want))
	assert.Equal(t, want, got)
}
