package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/couchcryptid/metar-minima/internal/domain"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const limitsYAML = `
- id: vfr-day
  name: VFR day
  min_visibility: 5000
  cloud_rule: strict
  max_cloud_height: 1500
  time_period: udp
- name: Night training
  min_visibility: 8000
  cloud_rule: few-ok
  max_cloud_height: 2500
  time_period: outside-udp
- name: Minimal
  min_visibility: 1500
  max_cloud_height: 500
`

func TestLoadLimits(t *testing.T) {
	path := filepath.Join(t.TempDir(), "limits.yaml")
	require.NoError(t, os.WriteFile(path, []byte(limitsYAML), 0o600))

	limits, err := LoadLimits(path)
	require.NoError(t, err)
	require.Len(t, limits, 3)

	assert.Equal(t, domain.Limit{
		ID:             "vfr-day",
		Name:           "VFR day",
		MinVisibility:  5000,
		CloudRule:      domain.CloudRuleStrict,
		MaxCloudHeight: 1500,
		TimePeriod:     domain.PeriodUDP,
	}, limits[0])

	_, err = uuid.Parse(limits[1].ID)
	require.NoError(t, err, "generated id should be a uuid")
	assert.Equal(t, domain.PeriodOutsideUDP, limits[1].TimePeriod)

	assert.Equal(t, domain.CloudRuleStrict, limits[2].CloudRule)
	assert.Equal(t, domain.PeriodUDP, limits[2].TimePeriod)
}

func TestLoadLimits_MissingFile(t *testing.T) {
	_, err := LoadLimits(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read limits file")
}

func TestParseLimits_Empty(t *testing.T) {
	limits, err := ParseLimits(nil)
	require.NoError(t, err)
	assert.Empty(t, limits)
}

func TestParseLimits_Invalid(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want string
	}{
		{"unknown field", "- name: x\n  visibility: 10\n", "parse limits file"},
		{"bad period", "- name: x\n  time_period: dusk\n", "time_period"},
		{"missing name", "- min_visibility: 10\n", "name is required"},
		{"duplicate id", "- id: a\n  name: x\n- id: a\n  name: y\n", "duplicate id"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseLimits([]byte(tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestParseLimits_ValidationWrapsSentinel(t *testing.T) {
	_, err := ParseLimits([]byte("- name: x\n  min_visibility: -1\n"))
	require.ErrorIs(t, err, domain.ErrInvalidLimit)
}
