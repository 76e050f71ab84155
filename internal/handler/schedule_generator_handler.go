package handler

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/middleware"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
	"github.com/noah-isme/tutor-timetable-api/pkg/response"
)

const (
	maxProfiles = 256
	maxPeople   = 512
)

type scheduleGenerator interface {
	Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, bool, error)
	InvalidateCache(ctx context.Context) (int, error)
}

type timetableRenderer interface {
	Render(resp *dto.GenerateScheduleResponse, format string) (*service.ExportFile, error)
}

// ScheduleGeneratorHandler exposes timetable generation endpoints.
type ScheduleGeneratorHandler struct {
	service  scheduleGenerator
	exporter timetableRenderer
}

// NewScheduleGeneratorHandler constructs the handler.
func NewScheduleGeneratorHandler(svc *service.ScheduleGeneratorService, exporter *service.ExportService) *ScheduleGeneratorHandler {
	return &ScheduleGeneratorHandler{service: svc, exporter: exporter}
}

// Generate godoc
// @Summary Generate a weekly timetable
// @Description Runs the greedy allocator. Unmet quotas are reported in conflicts; the call still succeeds.
// @Tags Schedules
// @Accept json
// @Produce json
// @Param payload body dto.GenerateScheduleRequest true "Schedule request"
// @Success 200 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /schedules/generate [post]
func (h *ScheduleGeneratorHandler) Generate(c *gin.Context) {
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}
	result, cacheHit, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	middleware.SetCacheHit(c, cacheHit)
	response.JSON(c, http.StatusOK, result, middleware.ExtractMeta(c))
}

// Export godoc
// @Summary Generate a timetable and download it
// @Tags Schedules
// @Accept json
// @Produce text/csv
// @Produce application/pdf
// @Param format query string false "csv or pdf" Enums(csv, pdf)
// @Param payload body dto.GenerateScheduleRequest true "Schedule request"
// @Success 200 {file} file
// @Failure 400 {object} response.Envelope
// @Router /schedules/export [post]
func (h *ScheduleGeneratorHandler) Export(c *gin.Context) {
	var query dto.ExportScheduleQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid export query"))
		return
	}
	req, ok := bindGenerateRequest(c)
	if !ok {
		return
	}
	result, _, err := h.service.Generate(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	file, err := h.exporter.Render(result, query.Format)
	if err != nil {
		response.Error(c, err)
		return
	}
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=\"%s\"", file.Filename))
	c.Data(http.StatusOK, file.ContentType, file.Body)
}

// FlushCache godoc
// @Summary Drop cached timetables
// @Tags Schedules
// @Produce json
// @Security BearerAuth
// @Success 200 {object} response.Envelope
// @Router /schedules/cache [delete]
func (h *ScheduleGeneratorHandler) FlushCache(c *gin.Context) {
	removed, err := h.service.InvalidateCache(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"removed": removed})
}

func bindGenerateRequest(c *gin.Context) (dto.GenerateScheduleRequest, bool) {
	var req dto.GenerateScheduleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return req, false
	}
	if len(req.PersonProfiles) > maxProfiles || len(req.People) > maxPeople {
		response.Error(c, appErrors.Clone(appErrors.ErrValidation, "request exceeds supported roster size"))
		return req, false
	}
	return req, true
}
