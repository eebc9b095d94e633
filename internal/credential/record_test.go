package credential

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRecordTokenValid(t *testing.T) {
	now := time.Now()

	tests := []struct {
		name   string
		record Record
		want   bool
	}{
		{
			name:   "valid token",
			record: Record{AccessToken: "a", ExpiresAt: now.Add(time.Hour)},
			want:   true,
		},
		{
			name:   "expired token",
			record: Record{AccessToken: "a", ExpiresAt: now.Add(-time.Minute)},
			want:   false,
		},
		{
			name:   "missing access token",
			record: Record{ExpiresAt: now.Add(time.Hour)},
			want:   false,
		},
		{
			name:   "missing expiry",
			record: Record{AccessToken: "a"},
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.record.TokenValid(now))
		})
	}
}
