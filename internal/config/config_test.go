package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/hashicorp/go-multierror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, UnknownDrop, c.Composition.Unknown)
	assert.Equal(t, LHVMethaneWeighted, c.LHV.Method)
	assert.Equal(t, []string{"MEG", "TEG", "Demineralized Water", "Stabilized Gasoline", "Natural Gas"}, c.ModuleNames())

	meg, ok := c.Module("meg")
	require.True(t, ok)
	require.GreaterOrEqual(t, len(meg.Parameters), 2)
	assert.Equal(t, Parameter{
		Name: "pH", Unit: "-", Min: 6, Max: 8,
		Explanation: "Acidity of the glycol loop; low pH accelerates corrosion.",
	}, meg.Parameters[0])
	assert.Equal(t, "Concentration", meg.Parameters[1].Name)
	assert.Equal(t, 60.0, meg.Parameters[1].Min)
	assert.Equal(t, 84.0, meg.Parameters[1].Max)

	_, ok = c.Module("  demineralized   water ")
	assert.True(t, ok)
	_, ok = c.Module("Helium")
	assert.False(t, ok)
}

func TestParseDefaultsPolicies(t *testing.T) {
	c, err := Parse([]byte(`
components:
  - {symbol: CH4, name: Methane, heating_value: 39.82, molecular_weight: 16.04}
`))
	require.NoError(t, err)
	assert.Equal(t, UnknownDrop, c.Composition.Unknown)
	assert.Equal(t, LHVMethaneWeighted, c.LHV.Method)
	assert.Empty(t, c.Modules)
}

func TestValidateCollectsAllErrors(t *testing.T) {
	_, err := Parse([]byte(`
composition: {unknown: ignore, sum_tolerance: -1}
lhv: {method: guess}
components:
  - {symbol: CH4, name: Methane, heating_value: 39.82, molecular_weight: 16.04, aliases: [C1]}
  - {symbol: C2H6, name: Ethane, heating_value: 68.39, molecular_weight: 0, aliases: [c1]}
modules:
  - name: MEG
    parameters:
      - {name: pH, unit: "-", min: 8, max: 6}
      - {name: PH, unit: "-", min: 6, max: 8}
  - name: meg
`))
	require.Error(t, err)
	merr, ok := err.(*multierror.Error)
	require.True(t, ok, "%T", err)
	// unknown, sum_tolerance, method, molecular_weight, alias clash, min>max, duplicate parameter, duplicate module
	assert.Len(t, merr.Errors, 8, err.Error())
	assert.Contains(t, err.Error(), `label "c1" already names CH4`)
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "lab.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
lhv: {method: flat, flat_offset: 0.09}
components:
  - {symbol: CH4, name: Methane, heating_value: 39.82, molecular_weight: 16.04}
`), 0644))

	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, LHVFlat, c.LHV.Method)
	assert.Equal(t, 0.09, c.LHV.FlatOffset)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	c, err = Load("")
	require.NoError(t, err)
	assert.NotEmpty(t, c.Modules)
}
