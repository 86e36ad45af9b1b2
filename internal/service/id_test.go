package service

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeriveTripID(t *testing.T) {
	tests := []struct {
		name string
		year int
		want string
	}{
		{"Summer in Japan", 2026, "summer-in-japan-2026"},
		{"  Coast to Coast!  ", 2026, "coast-to-coast-2026"},
		{"Tour de France: Week 1", 2027, "tour-de-france-week-1-2027"},
		{"A--B", 2026, "a-b-2026"},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, deriveTripID(tc.name, tc.year), "name %q", tc.name)
	}
}

// TestDeriveTripID_FallsBackToUUID: names that slug to nothing still produce
// a usable id.
func TestDeriveTripID_FallsBackToUUID(t *testing.T) {
	id := deriveTripID("!!!", 2026)
	_, err := uuid.Parse(id)
	require.NoError(t, err)
}
