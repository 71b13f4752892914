package echo

import (
	"errors"
	"net/http"

	"github.com/labstack/echo/v4"

	app "github.com/blunderfixer/blunderfixer/internal/application/sync"
)

type SyncHandler struct {
	enqueueUser app.EnqueueUserSync
	enqueueAll  app.EnqueueAllSync
	getJob      app.GetSyncJob
}

type syncRequest struct {
	Username string `json:"username"`
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type apiResponse struct {
	Data  any        `json:"data,omitempty"`
	Error *errorBody `json:"error,omitempty"`
}

func NewSyncHandler(enqueueUser app.EnqueueUserSync, enqueueAll app.EnqueueAllSync, getJob app.GetSyncJob) *SyncHandler {
	return &SyncHandler{
		enqueueUser: enqueueUser,
		enqueueAll:  enqueueAll,
		getJob:      getJob,
	}
}

// SyncUser enqueues a sync job for one player and returns immediately.
func (h *SyncHandler) SyncUser(c echo.Context) error {
	var req syncRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
			Code:    "bad_request",
			Message: "invalid request body",
		}})
	}

	out, err := h.enqueueUser.Execute(c.Request().Context(), app.EnqueueUserSyncInput{
		Username: req.Username,
	})
	if err != nil {
		if errors.Is(err, app.ErrInvalidUsername) {
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_username",
				Message: "username must be 3-50 characters of letters, digits, _ or -",
			}})
		}
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to enqueue sync job",
		}})
	}

	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

// SyncAll enqueues a sync job for every active user. Called by the
// external scheduler on its fixed cadence; repeated calls are safe.
func (h *SyncHandler) SyncAll(c echo.Context) error {
	out, err := h.enqueueAll.Execute(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
			Code:    "internal_error",
			Message: "failed to enqueue sync jobs",
		}})
	}
	return c.JSON(http.StatusAccepted, apiResponse{Data: out})
}

// GetJob returns the polled status projection of one sync job.
func (h *SyncHandler) GetJob(c echo.Context) error {
	out, err := h.getJob.Execute(c.Request().Context(), app.GetSyncJobInput{
		ID: c.Param("id"),
	})
	if err != nil {
		switch {
		case errors.Is(err, app.ErrInvalidJobID):
			return c.JSON(http.StatusBadRequest, apiResponse{Error: &errorBody{
				Code:    "invalid_job_id",
				Message: "job id must be a uuid",
			}})
		case errors.Is(err, app.ErrJobNotFound):
			return c.JSON(http.StatusNotFound, apiResponse{Error: &errorBody{
				Code:    "not_found",
				Message: "sync job not found",
			}})
		default:
			return c.JSON(http.StatusInternalServerError, apiResponse{Error: &errorBody{
				Code:    "internal_error",
				Message: "failed to get sync job",
			}})
		}
	}
	return c.JSON(http.StatusOK, apiResponse{Data: out})
}
