package gas

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"LTSLab/internal/calc/check"
	"LTSLab/internal/config"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var exampleEntries = []Entry{
	{Label: "Methane", Percent: 95},
	{Label: "Ethane", Percent: 3},
	{Label: "Propane", Percent: 1},
	{Label: "Nitrogen", Percent: 1},
}

func TestServiceRun(t *testing.T) {
	s := NewService(defaultConfig(t))

	rep, err := s.Run(exampleEntries)
	require.NoError(t, err)
	assert.Equal(t, 40.82, rep.Rounded.HHV)
	assert.Equal(t, 0.5821, rep.Rounded.RelativeDensity)
	assert.Equal(t, 53.5, rep.Rounded.Wobbe)
	require.Len(t, rep.Fields, 5)

	require.Len(t, rep.Lines, 3, "Natural Gas module bands")
	assert.Equal(t, LabelHHV, rep.Lines[0].Name)
	assert.Equal(t, LabelRelativeDensity, rep.Lines[1].Name)
	assert.Equal(t, LabelWobbe, rep.Lines[2].Name)
	for _, l := range rep.Lines {
		assert.Equal(t, check.Compliant, l.Verdict, l.Name)
	}
}

func TestServiceRunEmpty(t *testing.T) {
	rep, err := NewService(defaultConfig(t)).Run(nil)
	require.NoError(t, err)
	assert.Equal(t, Result{}, rep.Result)
	assert.Equal(t, Result{}, rep.Rounded)
	for _, l := range rep.Lines {
		assert.Equal(t, check.NonCompliant, l.Verdict, "zero results fall outside the bands")
	}
}

func TestServiceRunBandUnitsFromConfig(t *testing.T) {
	cfg := defaultConfig(t)
	for i := range cfg.Modules {
		if cfg.Modules[i].Name != NaturalGasModule {
			continue
		}
		for j := range cfg.Modules[i].Parameters {
			if cfg.Modules[i].Parameters[j].Unit == "MJ/m³" {
				cfg.Modules[i].Parameters[j].Unit = "MJ/Sm3"
			}
		}
	}

	rep, err := NewService(cfg).Run(exampleEntries)
	require.NoError(t, err)
	require.Len(t, rep.Lines, 3)
	assert.Equal(t, "MJ/Sm3", rep.Lines[0].Unit)
	assert.Equal(t, check.Compliant, rep.Lines[0].Verdict)
}

func TestServiceRunWithoutNaturalGasModule(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Modules = nil
	cfg.Composition.Unknown = config.UnknownWarn

	rep, err := NewService(cfg).Run([]Entry{{Label: "Methane", Percent: 50}, {Label: "Helium", Percent: 50}})
	require.NoError(t, err)
	assert.Empty(t, rep.Lines)
	assert.Equal(t, map[string]float64{"CH4": 0.5}, rep.Composition.Fractions)
	assert.Equal(t, []string{"unrecognized components excluded: Helium"}, rep.Warnings)
	assert.InDelta(t, 19.91, rep.Result.HHV, 1e-9)
}

func TestCalculateBatch(t *testing.T) {
	s := NewService(defaultConfig(t))

	res, err := s.CalculateBatch(BatchInput{Samples: []Sample{
		{Name: "inlet", Entries: exampleEntries},
		{Name: "outlet", Entries: []Entry{{Label: "CH4", Percent: 100}}},
	}})
	require.NoError(t, err)
	require.Len(t, res.Results, 2)
	assert.Equal(t, "inlet", res.Results[0].Name)
	assert.Equal(t, 39.82, res.Results[1].Report.Rounded.HHV)

	_, err = s.CalculateBatch(BatchInput{})
	assert.True(t, merry.Is(err, ErrNoSamples))

	cfg := defaultConfig(t)
	cfg.Composition.Unknown = config.UnknownReject
	_, err = NewService(cfg).CalculateBatch(BatchInput{Samples: []Sample{
		{Name: "inlet", Entries: exampleEntries},
		{Name: "outlet", Entries: []Entry{{Label: "Helium", Percent: 100}}},
	}})
	assert.True(t, merry.Is(err, ErrUnknownComponent))
	assert.Contains(t, err.Error(), `sample 2 "outlet"`)
}

func TestHandlerCalc(t *testing.T) {
	h := &Handler{Service: NewService(defaultConfig(t))}

	body, err := json.Marshal(Input{Entries: exampleEntries})
	require.NoError(t, err)
	w := httptest.NewRecorder()
	h.Calc(w, httptest.NewRequest(http.MethodPost, "/api/lab/gas/calc", bytes.NewReader(body)))
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var rep Report
	require.NoError(t, json.NewDecoder(w.Body).Decode(&rep))
	assert.Equal(t, 40.82, rep.Rounded.HHV)
	assert.Equal(t, LabelWobbe, rep.Fields[4].Label)

	w = httptest.NewRecorder()
	h.Calc(w, httptest.NewRequest(http.MethodPost, "/api/lab/gas/calc", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "Invalid request payload")
}

func TestHandlerBatchRejects(t *testing.T) {
	cfg := defaultConfig(t)
	cfg.Composition.Unknown = config.UnknownReject
	h := &Handler{Service: NewService(cfg)}

	w := httptest.NewRecorder()
	h.Batch(w, httptest.NewRequest(http.MethodPost, "/api/lab/gas/batch",
		strings.NewReader(`{"samples":[{"name":"a","entries":[{"label":"Helium","percent":100}]}]}`)))
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "unknown component")
}

func TestHandlerComponents(t *testing.T) {
	h := &Handler{Service: NewService(defaultConfig(t))}
	w := httptest.NewRecorder()
	h.Components(w, httptest.NewRequest(http.MethodGet, "/api/lab/gas/components", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var xs []config.Component
	require.NoError(t, json.NewDecoder(w.Body).Decode(&xs))
	assert.Equal(t, "CH4", xs[0].Symbol)
}
