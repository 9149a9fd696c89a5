package timex

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		in      string
		want    time.Duration
		wantErr bool
	}{
		{"string form", `"15m"`, 15 * time.Minute, false},
		{"seconds string", `"900s"`, 900 * time.Second, false},
		{"integer nanoseconds", `60000000000`, time.Minute, false},
		{"garbage string", `"soon"`, 0, true},
		{"wrong type", `true`, 0, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			var d Duration
			err := json.Unmarshal([]byte(tc.in), &d)
			if tc.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, d.Duration)
		})
	}
}

func TestDuration_MarshalJSON(t *testing.T) {
	b, err := json.Marshal(Duration{15 * time.Minute})
	require.NoError(t, err)
	assert.Equal(t, `"15m0s"`, string(b))
}
