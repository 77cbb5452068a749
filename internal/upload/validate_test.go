package upload

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestValidate(t *testing.T) {
	policy := Policy{
		MaxBytes:     10 * 1024 * 1024,
		AllowedTypes: []string{"image/jpeg", "image/png"},
	}

	tests := []struct {
		name     string
		mimeType string
		size     int64
		ok       bool
		reason   Reason
	}{
		{"jpeg under ceiling", "image/jpeg", 2 * 1024 * 1024, true, ""},
		{"png under ceiling", "image/png", 1024, true, ""},
		{"exactly at ceiling", "image/jpeg", 10 * 1024 * 1024, true, ""},
		{"one byte over ceiling", "image/jpeg", 10*1024*1024 + 1, false, ReasonSize},
		{"oversized png", "image/png", 15 * 1024 * 1024, false, ReasonSize},
		{"pdf rejected", "application/pdf", 1024, false, ReasonType},
		{"video rejected", "video/mp4", 1024, false, ReasonType},
		{"empty mime rejected", "", 1024, false, ReasonType},
		{"case and whitespace tolerated", " IMAGE/JPEG ", 1024, true, ""},
		{"type checked before size", "application/pdf", 15 * 1024 * 1024, false, ReasonType},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := policy.Validate(Blob{MimeType: tt.mimeType, Size: tt.size})
			require.Equal(t, tt.ok, v.OK)
			if !tt.ok {
				require.Equal(t, tt.reason, v.Reason)
			}
		})
	}
}

func TestValidateNoCeilingConfigured(t *testing.T) {
	policy := Policy{AllowedTypes: []string{"image/jpeg"}}
	v := policy.Validate(Blob{MimeType: "image/jpeg", Size: 1 << 40})
	require.True(t, v.OK)
}
