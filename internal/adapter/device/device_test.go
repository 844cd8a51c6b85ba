package device

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveWith(t *testing.T) {
	tests := []struct {
		mode    string
		probe   bool
		want    bool
		wantErr bool
	}{
		{"auto", true, true, false},
		{"AUTOMATIC", false, false, false},
		{"", true, true, false},
		{"true", false, true, false},
		{"cuda", false, true, false},
		{"false", true, false, false},
		{"cpu", true, false, false},
		{"tpu", true, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			p, err := ResolveWith(tt.mode, func() bool { return tt.probe })
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Accelerator)
			if tt.want {
				assert.Equal(t, NameAccelerator, p.Name)
			} else {
				assert.Equal(t, NameDefault, p.Name)
			}
		})
	}
}

func TestDetectAccelerator_Env(t *testing.T) {
	t.Setenv("CUDA_VISIBLE_DEVICES", "-1")
	assert.False(t, DetectAccelerator())

	t.Setenv("CUDA_VISIBLE_DEVICES", "0,1")
	assert.True(t, DetectAccelerator())
}
