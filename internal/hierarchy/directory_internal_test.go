package hierarchy

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"procurement/internal/apperr"
	"procurement/internal/model"
)

// New rejects every cycle at the tier check first, so the walk is exercised
// on a hand-built directory.
func TestCheckAcyclicDetectsCycle(t *testing.T) {
	d := &Directory{
		users: map[string]model.User{
			"a": {ID: "a", Role: model.RoleTaluka, ReportsTo: "b"},
			"b": {ID: "b", Role: model.RoleDistrict, ReportsTo: "c"},
			"c": {ID: "c", Role: model.RoleState, ReportsTo: "b"},
		},
		order: []string{"a", "b", "c"},
	}
	err := d.checkAcyclic()
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrConfiguration)
	assert.Contains(t, err.Error(), "reporting cycle")
}

func TestCheckAcyclicAcceptsChains(t *testing.T) {
	d := &Directory{
		users: map[string]model.User{
			"s": {ID: "s", Role: model.RoleState},
			"d": {ID: "d", Role: model.RoleDistrict, ReportsTo: "s"},
			"t": {ID: "t", Role: model.RoleTaluka, ReportsTo: "d"},
			"b": {ID: "b", Role: model.RoleBase, ReportsTo: "t"},
			"x": {ID: "x", Role: model.RoleBase, ReportsTo: "t"},
		},
		order: []string{"b", "x", "t", "d", "s"},
	}
	assert.NoError(t, d.checkAcyclic())
}
