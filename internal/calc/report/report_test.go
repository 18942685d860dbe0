package report

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"LTSLab/internal/auth"
	"LTSLab/internal/calc/check"
	"LTSLab/internal/calc/gas"
	"LTSLab/internal/config"
	"LTSLab/internal/repo"

	"github.com/ansel1/merry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorder struct {
	texts []string
	err   error
}

func (r *recorder) Notify(_ context.Context, text string) error {
	r.texts = append(r.texts, text)
	return r.err
}

var issued = time.Date(2024, 5, 14, 9, 30, 0, 0, time.UTC)

func newHandler(t *testing.T) (*Handler, *recorder) {
	t.Helper()
	cfg, err := config.Default()
	require.NoError(t, err)
	db, err := repo.OpenSqlite(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	r := repo.NewSqliteRepository(db)
	require.NoError(t, r.Migrate(context.Background()))

	n := &recorder{}
	return &Handler{
		Config:    cfg,
		Evaluator: check.NewEvaluator(cfg),
		Gas:       gas.NewService(cfg),
		Repo:      r,
		Notifier:  n,
		Now:       func() time.Time { return issued },
	}, n
}

func ptr(v float64) *float64 { return &v }

func TestSanitize(t *testing.T) {
	assert.Equal(t, "W = HHV / sqrtrho - 'a' \"b\" CO2", sanitize.Replace("W = HHV / √ρ — ‘a’ “b” CO₂"))
	assert.Equal(t, "Sum(yi * HHVi) ~ 1 <= 2", sanitize.Replace("Σ(yi * HHVᵢ) ≈ 1 ≤ 2"))
}

func TestRender(t *testing.T) {
	h, _ := newHandler(t)
	lab, err := h.Build("jperez", Input{
		Module: "meg",
		Measurements: []check.Measurement{
			{Name: "pH", Value: ptr(7.1)},
			{Name: "Chlorides", Value: ptr(250)},
		},
	})
	require.NoError(t, err)
	assert.Equal(t, "MEG", lab.Module)
	assert.Equal(t, "Monoethylene glycol", lab.Title)
	assert.Equal(t, issued, lab.Time)
	assert.Len(t, lab.ID, 36)

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, lab))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestRenderGas(t *testing.T) {
	h, _ := newHandler(t)
	lab, err := h.Build("jperez", Input{
		Module: "Natural Gas",
		Entries: []gas.Entry{
			{Label: "Metano", Percent: 95},
			{Label: "Etano", Percent: 3},
			{Label: "Propano", Percent: 1},
			{Label: "Nitrógeno", Percent: 1},
		},
		Observations: "Sample taken at the LTS outlet — “dry” basis.",
	})
	require.NoError(t, err)
	require.NotNil(t, lab.Gas)
	assert.Equal(t, 40.82, lab.Gas.Rounded.HHV)
	assert.Len(t, lab.Lines, 3)
	assert.True(t, lab.Compliant())

	var buf bytes.Buffer
	require.NoError(t, Render(&buf, lab))
	assert.True(t, bytes.HasPrefix(buf.Bytes(), []byte("%PDF-")))
}

func TestBuildErrors(t *testing.T) {
	h, _ := newHandler(t)
	_, err := h.Build("x", Input{Module: "Glycerol"})
	assert.True(t, merry.Is(err, check.ErrUnknownModule))

	_, err = h.Build("x", Input{Module: "MEG", Measurements: []check.Measurement{{Name: "Viscosity", Value: ptr(1)}}})
	assert.True(t, merry.Is(err, check.ErrUnknownParameter))
}

func TestAlertText(t *testing.T) {
	lab := New("jperez", "MEG", issued)
	lab.Lines = []check.Line{
		{Name: "pH", Unit: "-", Value: ptr(7), Min: 6, Max: 8, Verdict: check.Compliant},
		{Name: "Chlorides", Unit: "mg/L", Value: ptr(250), Min: 0, Max: 100, Verdict: check.NonCompliant},
		{Name: "Iron", Unit: "mg/L", Min: 0, Max: 10, Verdict: check.NotApplicable},
	}
	text := AlertText(lab)
	assert.Equal(t, strings.Join([]string{
		"Non-compliant result: MEG",
		"Operator: jperez",
		"Date: 2024-05-14 09:30",
		"Report: " + lab.ID,
		"- Chlorides: 250 mg/L (range 0 - 100)",
	}, "\n"), text)
}

func TestNewHistory(t *testing.T) {
	lab := New("jperez", "TEG", issued)
	assert.Equal(t, repo.History{Time: issued, Operator: "jperez", Module: "TEG", ReportID: lab.ID}, NewHistory(lab))
	assert.Equal(t, DefaultObservations, lab.observations())
}

func TestHandlerPDF(t *testing.T) {
	h, n := newHandler(t)

	body := `{"module":"Demineralized Water","measurements":[{"name":"Conductivity","value":12.5,"unit":"µS/cm"}]}`
	r := httptest.NewRequest(http.MethodPost, "/api/lab/report/pdf", strings.NewReader(body))
	r = r.WithContext(auth.WithOperator(r.Context(), "mlopez"))
	w := httptest.NewRecorder()
	h.PDF(w, r)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "application/pdf", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "demineralizedwater_20240514-0930.pdf")
	assert.True(t, strings.HasPrefix(w.Body.String(), "%PDF-"))
	id := w.Header().Get("X-Report-ID")
	require.NotEmpty(t, id)

	require.Len(t, n.texts, 1, "conductivity is out of range")
	assert.Contains(t, n.texts[0], "Conductivity: 12.5")

	xs, err := h.Repo.ListHistory(context.Background(), repo.HistoryFilter{})
	require.NoError(t, err)
	require.Len(t, xs, 1)
	assert.Equal(t, id, xs[0].ReportID)
	assert.Equal(t, "mlopez", xs[0].Operator)
	assert.Equal(t, "Demineralized Water", xs[0].Module)
}

func TestHandlerPDFNotifyFailureIsLogged(t *testing.T) {
	h, n := newHandler(t)
	n.err = merry.New("telegram down")

	body := `{"module":"MEG","measurements":[{"name":"pH","value":3}]}`
	w := httptest.NewRecorder()
	h.PDF(w, httptest.NewRequest(http.MethodPost, "/api/lab/report/pdf", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Len(t, n.texts, 1)
}

func TestHandlerPDFCompliantSendsNothing(t *testing.T) {
	h, n := newHandler(t)
	body := `{"module":"MEG","measurements":[{"name":"pH","value":7}]}`
	w := httptest.NewRecorder()
	h.PDF(w, httptest.NewRequest(http.MethodPost, "/api/lab/report/pdf", strings.NewReader(body)))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Empty(t, n.texts)
}

func TestHandlerHistory(t *testing.T) {
	h, _ := newHandler(t)
	ctx := context.Background()
	for _, m := range []string{"MEG", "TEG", "MEG"} {
		_, err := h.Repo.AppendHistory(ctx, NewHistory(New("jperez", m, issued)))
		require.NoError(t, err)
	}

	w := httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/api/lab/history?module=meg&limit=10", nil))
	require.Equal(t, http.StatusOK, w.Code)
	var xs []repo.History
	require.NoError(t, json.NewDecoder(w.Body).Decode(&xs))
	assert.Len(t, xs, 2)

	w = httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/api/lab/history?limit=ten", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	h.History(w, httptest.NewRequest(http.MethodGet, "/api/lab/history?module=glycerol", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}
