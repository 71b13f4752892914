package echo_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	drillcase "github.com/blunderfixer/blunderfixer/internal/application/drill"
	httpecho "github.com/blunderfixer/blunderfixer/internal/interfaces/http/echo"
)

type stubListDrills struct {
	in  drillcase.ListDrillsInput
	out []drillcase.DrillOutput
	err error
}

func (s *stubListDrills) Execute(ctx context.Context, in drillcase.ListDrillsInput) ([]drillcase.DrillOutput, error) {
	s.in = in
	return s.out, s.err
}

type stubRecentDrills struct {
	out []drillcase.DrillOutput
	err error
}

func (s *stubRecentDrills) Execute(ctx context.Context, in drillcase.RecentDrillsInput) ([]drillcase.DrillOutput, error) {
	return s.out, s.err
}

type stubMasteredDrills struct {
	out []drillcase.DrillOutput
	err error
}

func (s *stubMasteredDrills) Execute(ctx context.Context, in drillcase.MasteredDrillsInput) ([]drillcase.DrillOutput, error) {
	return s.out, s.err
}

type stubGetDrill struct {
	out drillcase.DrillOutput
	err error
}

func (s *stubGetDrill) Execute(ctx context.Context, in drillcase.GetDrillInput) (drillcase.DrillOutput, error) {
	return s.out, s.err
}

type stubReadHistory struct {
	out []drillcase.HistoryOutput
	err error
}

func (s *stubReadHistory) Execute(ctx context.Context, in drillcase.ReadDrillHistoryInput) ([]drillcase.HistoryOutput, error) {
	return s.out, s.err
}

type stubRecordHistory struct {
	in  drillcase.RecordHistoryInput
	out drillcase.HistoryOutput
	err error
}

func (s *stubRecordHistory) Execute(ctx context.Context, in drillcase.RecordHistoryInput) (drillcase.HistoryOutput, error) {
	s.in = in
	return s.out, s.err
}

type stubUpdateDrill struct {
	in  drillcase.UpdateDrillInput
	out drillcase.DrillOutput
	err error
}

func (s *stubUpdateDrill) Execute(ctx context.Context, in drillcase.UpdateDrillInput) (drillcase.DrillOutput, error) {
	s.in = in
	return s.out, s.err
}

type drillStubs struct {
	list     *stubListDrills
	recent   *stubRecentDrills
	mastered *stubMasteredDrills
	get      *stubGetDrill
	history  *stubReadHistory
	record   *stubRecordHistory
	update   *stubUpdateDrill
}

func newDrillServer() (*echo.Echo, *drillStubs) {
	stubs := &drillStubs{
		list:     &stubListDrills{},
		recent:   &stubRecentDrills{},
		mastered: &stubMasteredDrills{},
		get:      &stubGetDrill{},
		history:  &stubReadHistory{},
		record:   &stubRecordHistory{},
		update:   &stubUpdateDrill{},
	}
	handler := httpecho.NewDrillHandler(
		stubs.list, stubs.recent, stubs.mastered,
		stubs.get, stubs.history, stubs.record, stubs.update,
	)

	e := echo.New()
	e.GET("/api/v1/drills", handler.ListDrills)
	e.GET("/api/v1/drills/recent", handler.RecentDrills)
	e.GET("/api/v1/drills/mastered", handler.MasteredDrills)
	e.GET("/api/v1/drills/:id", handler.GetDrill)
	e.GET("/api/v1/drills/:id/history", handler.DrillHistory)
	e.POST("/api/v1/drills/:id/history", handler.RecordHistory)
	e.PATCH("/api/v1/drills/:id", handler.UpdateDrill)
	return e, stubs
}

func TestListDrillsQueryParsing(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.list.out = []drillcase.DrillOutput{{ID: 1, Username: "alice"}}

	url := "/api/v1/drills?username=alice&limit=10&min_eval_swing=180" +
		"&phases=middle,late&hero_results=loss&include=archived,mastered&recent_first=true"
	req := httptest.NewRequest(http.MethodGet, url, nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)

	in := stubs.list.in
	assert.Equal(t, "alice", in.Username)
	assert.Equal(t, 10, in.Limit)
	assert.InDelta(t, 180, in.MinEvalSwing, 0.001)
	assert.Equal(t, []string{"middle", "late"}, in.Phases)
	assert.Equal(t, []string{"loss"}, in.HeroResults)
	assert.True(t, in.IncludeArchived)
	assert.True(t, in.IncludeMastered)
	assert.True(t, in.RecentFirst)

	env := decodeEnvelope(t, rec)
	var out []drillcase.DrillOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	require.Len(t, out, 1)
	assert.Equal(t, int64(1), out[0].ID)
}

func TestListDrillsMissingUsername(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.list.err = drillcase.ErrInvalidUsername

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drills", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_username", env.Error.Code)
}

func TestGetDrillNotFoundResponse(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.get.err = drillcase.ErrDrillNotFound

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drills/42", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "not_found", env.Error.Code)
}

func TestGetDrillNonNumericID(t *testing.T) {
	t.Parallel()

	e, _ := newDrillServer()

	req := httptest.NewRequest(http.MethodGet, "/api/v1/drills/abc", nil)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRecordHistoryCreated(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.record.out = drillcase.HistoryOutput{ID: 7, DrillID: 42, Result: "pass"}

	body := `{"result":"pass","moves":["e4","e5"],"time_used":12.5}`
	req := httptest.NewRequest(http.MethodPost, "/api/v1/drills/42/history", strings.NewReader(body))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, int64(42), stubs.record.in.DrillID)
	assert.Equal(t, []string{"e4", "e5"}, stubs.record.in.Moves)
	require.NotNil(t, stubs.record.in.TimeUsed)
	assert.InDelta(t, 12.5, *stubs.record.in.TimeUsed, 0.001)

	env := decodeEnvelope(t, rec)
	var out drillcase.HistoryOutput
	require.NoError(t, json.Unmarshal(env.Data, &out))
	assert.Equal(t, int64(7), out.ID)
}

func TestRecordHistoryInvalidResultResponse(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.record.err = drillcase.ErrInvalidResult

	req := httptest.NewRequest(http.MethodPost, "/api/v1/drills/42/history", strings.NewReader(`{"result":"meh"}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	env := decodeEnvelope(t, rec)
	require.NotNil(t, env.Error)
	assert.Equal(t, "invalid_result", env.Error.Code)
}

func TestUpdateDrillPatch(t *testing.T) {
	t.Parallel()

	e, stubs := newDrillServer()
	stubs.update.out = drillcase.DrillOutput{ID: 42, Archived: true}

	req := httptest.NewRequest(http.MethodPatch, "/api/v1/drills/42", strings.NewReader(`{"archived":true}`))
	req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	require.NotNil(t, stubs.update.in.Archived)
	assert.True(t, *stubs.update.in.Archived)
	assert.False(t, stubs.update.in.MarkPlayed)
}
