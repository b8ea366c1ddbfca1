package utils

import (
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidateID(t *testing.T) {
	tests := []struct {
		name    string
		id      string
		wantErr bool
	}{
		{"station id", "A41", false},
		{"directional stop id", "F20N", false},
		{"dotted id", "mta.F20", false},
		{"empty", "", true},
		{"too long", strings.Repeat("a", 101), true},
		{"spaces", "F 20", true},
		{"markup", "<script>", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateID(tt.id)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestValidateQuery(t *testing.T) {
	assert.NoError(t, ValidateQuery(""))
	assert.NoError(t, ValidateQuery("Jay St-MetroTech"))
	assert.NoError(t, ValidateQuery("14 St / 8 Av"))
	assert.Error(t, ValidateQuery("x'; DROP TABLE stations; --"))
	assert.Error(t, ValidateQuery("<b>jay</b>"))
	assert.Error(t, ValidateQuery(strings.Repeat("q", 201)))
}

func TestValidateCoordinates(t *testing.T) {
	assert.NoError(t, ValidateLatitude(40.69))
	assert.NoError(t, ValidateLatitude(-90))
	assert.Error(t, ValidateLatitude(90.1))
	assert.NoError(t, ValidateLongitude(-73.98))
	assert.Error(t, ValidateLongitude(-180.5))
}

func TestSanitizeInput(t *testing.T) {
	assert.Equal(t, "Jay St", SanitizeInput("  <i>Jay St</i> "))

	out, err := ValidateAndSanitizeQuery(" Bergen St ")
	assert.NoError(t, err)
	assert.Equal(t, "Bergen St", out)
}

func TestParseLocationParams(t *testing.T) {
	t.Run("absent pair", func(t *testing.T) {
		errs := map[string][]string{}
		_, _, ok := ParseLocationParams(url.Values{}, "fromLat", "fromLon", errs)
		assert.False(t, ok)
		assert.Empty(t, errs)
	})

	t.Run("valid pair", func(t *testing.T) {
		errs := map[string][]string{}
		lat, lon, ok := ParseLocationParams(url.Values{"fromLat": {"40.69"}, "fromLon": {"-73.98"}}, "fromLat", "fromLon", errs)
		assert.True(t, ok)
		assert.Empty(t, errs)
		assert.InDelta(t, 40.69, lat, 1e-9)
		assert.InDelta(t, -73.98, lon, 1e-9)
	})

	t.Run("half pair and out of range", func(t *testing.T) {
		errs := map[string][]string{}
		_, _, ok := ParseLocationParams(url.Values{"fromLat": {"91"}}, "fromLat", "fromLon", errs)
		assert.True(t, ok)
		assert.Contains(t, errs, "fromLat")
		assert.Contains(t, errs, "fromLon")
	})

	t.Run("not a number", func(t *testing.T) {
		errs := map[string][]string{}
		ParseLocationParams(url.Values{"toLat": {"abc"}, "toLon": {"1"}}, "toLat", "toLon", errs)
		assert.Equal(t, []string{`Invalid field value for field "toLat".`}, errs["toLat"])
	})
}
