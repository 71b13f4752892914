package echo

import (
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	app "github.com/blunderfixer/blunderfixer/internal/application/drill"
)

type DrillHandler struct {
	list     app.ListDrills
	recent   app.RecentDrills
	mastered app.MasteredDrills
	get      app.GetDrill
	history  app.ReadDrillHistory
	record   app.RecordHistory
	update   app.UpdateDrill
}

func NewDrillHandler(
	list app.ListDrills,
	recent app.RecentDrills,
	mastered app.MasteredDrills,
	get app.GetDrill,
	history app.ReadDrillHistory,
	record app.RecordHistory,
	update app.UpdateDrill,
) *DrillHandler {
	return &DrillHandler{
		list:     list,
		recent:   recent,
		mastered: mastered,
		get:      get,
		history:  history,
		record:   record,
		update:   update,
	}
}

// ListDrills handles the filtered default listing.
func (h *DrillHandler) ListDrills(c echo.Context) error {
	include := splitMulti(c.QueryParams()["include"])
	includeSet := map[string]bool{}
	for _, item := range include {
		includeSet[strings.ToLower(item)] = true
	}

	in := app.ListDrillsInput{
		Username:         c.QueryParam("username"),
		Limit:            queryInt(c, "limit", 0),
		OpeningThreshold: queryInt(c, "opening_threshold", 0),
		MinEvalSwing:     queryFloat(c, "min_eval_swing", 0),
		MaxEvalSwing:     queryFloat(c, "max_eval_swing", 0),
		Phases:           splitMulti(c.QueryParams()["phases"]),
		HeroResults:      splitMulti(c.QueryParams()["hero_results"]),
		Opponent:         c.QueryParam("opponent"),
		IncludeArchived:  includeSet["archived"],
		IncludeMastered:  includeSet["mastered"],
		RecentFirst:      queryBool(c, "recent_first"),
	}

	out, err := h.list.Execute(c.Request().Context(), in)
	if err != nil {
		if errors.Is(err, app.ErrInvalidUsername) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_username",
				Message: "username query parameter is required",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list drills",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// RecentDrills lists the most recently practiced drills.
func (h *DrillHandler) RecentDrills(c echo.Context) error {
	out, err := h.recent.Execute(c.Request().Context(), app.RecentDrillsInput{
		Username:        c.QueryParam("username"),
		Limit:           queryInt(c, "limit", 0),
		IncludeArchived: queryBool(c, "include_archived"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidUsername) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_username",
				Message: "username query parameter is required",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list recent drills",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

// MasteredDrills lists drills whose five most recent attempts all passed.
func (h *DrillHandler) MasteredDrills(c echo.Context) error {
	out, err := h.mastered.Execute(c.Request().Context(), app.MasteredDrillsInput{
		Username:        c.QueryParam("username"),
		Limit:           queryInt(c, "limit", 0),
		IncludeArchived: queryBool(c, "include_archived"),
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidUsername) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_username",
				Message: "username query parameter is required",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to list mastered drills",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *DrillHandler) GetDrill(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return drillNotFound(c)
	}

	out, err := h.get.Execute(c.Request().Context(), app.GetDrillInput{ID: id})
	if err != nil {
		if errors.Is(err, app.ErrDrillNotFound) {
			return drillNotFound(c)
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to get drill",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func (h *DrillHandler) DrillHistory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return drillNotFound(c)
	}

	out, err := h.history.Execute(c.Request().Context(), app.ReadDrillHistoryInput{DrillID: id})
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to read drill history",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

type recordHistoryRequest struct {
	Result    string     `json:"result"`
	Reason    *string    `json:"reason"`
	Moves     []string   `json:"moves"`
	TimeUsed  *float64   `json:"time_used"`
	Timestamp *time.Time `json:"timestamp"`
}

// RecordHistory appends one pass/fail attempt to a drill.
func (h *DrillHandler) RecordHistory(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return drillNotFound(c)
	}

	var req recordHistoryRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.record.Execute(c.Request().Context(), app.RecordHistoryInput{
		DrillID:   id,
		Result:    req.Result,
		Reason:    req.Reason,
		Moves:     req.Moves,
		TimeUsed:  req.TimeUsed,
		Timestamp: req.Timestamp,
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidResult):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_result",
				Message: "result must be 'pass' or 'fail'",
			}})
		case errors.Is(err, app.ErrDrillNotFound):
			return drillNotFound(c)
		default:
			return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
				Code:    "internal_error",
				Message: "failed to record drill history",
			}})
		}
	}
	return c.JSON(http.StatusCreated, apiResponse{Data: out})
}

type updateDrillRequest struct {
	Archived   *bool `json:"archived"`
	MarkPlayed bool  `json:"mark_played"`
}

// UpdateDrill patches the archive flag and/or marks the drill played.
func (h *DrillHandler) UpdateDrill(c echo.Context) error {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return drillNotFound(c)
	}

	var req updateDrillRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.update.Execute(c.Request().Context(), app.UpdateDrillInput{
		DrillID:    id,
		Archived:   req.Archived,
		MarkPlayed: req.MarkPlayed,
	})
	if err != nil {
		if errors.Is(err, app.ErrDrillNotFound) {
			return drillNotFound(c)
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to update drill",
		}})
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}

func drillNotFound(c echo.Context) error {
	return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
		Code:    "not_found",
		Message: "drill not found",
	}})
}

func queryInt(c echo.Context, name string, fallback int) int {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}
	return value
}

func queryFloat(c echo.Context, name string, fallback float64) float64 {
	raw := c.QueryParam(name)
	if raw == "" {
		return fallback
	}
	value, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fallback
	}
	return value
}

func queryBool(c echo.Context, name string) bool {
	return c.QueryParam(name) == "true"
}

// splitMulti accepts both repeated query params and comma-separated values.
func splitMulti(values []string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			part = strings.TrimSpace(part)
			if part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}
