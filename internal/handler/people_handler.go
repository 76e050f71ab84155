package handler

import (
	"context"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
	"github.com/noah-isme/tutor-timetable-api/pkg/response"
)

type peopleManager interface {
	List(ctx context.Context) ([]models.ScheduleFile, error)
	Get(ctx context.Context, name string) (*models.PersonSchedule, error)
	Put(ctx context.Context, name string, req dto.UpsertPersonRequest) (*models.PersonSchedule, error)
	Delete(ctx context.Context, name string, claims *models.JWTClaims) error
	Deletions(ctx context.Context) ([]models.DeletionEntry, error)
	Restore(ctx context.Context, name string) (*models.PersonSchedule, error)
	Purge(ctx context.Context, name string) error
	Upload(ctx context.Context, filename string, raw []byte, save bool) (*dto.UploadPeopleResponse, error)
	Changes(ctx context.Context, req dto.ScheduleChangesRequest) (*models.ScheduleChanges, error)
}

// PeopleHandler exposes the person schedule store.
type PeopleHandler struct {
	service        peopleManager
	maxUploadBytes int64
}

// NewPeopleHandler constructs the handler.
func NewPeopleHandler(svc *service.PeopleService, maxUploadBytes int64) *PeopleHandler {
	return &PeopleHandler{service: svc, maxUploadBytes: maxUploadBytes}
}

// List godoc
// @Summary List stored person schedules
// @Tags People
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /people [get]
func (h *PeopleHandler) List(c *gin.Context) {
	files, err := h.service.List(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, files, map[string]interface{}{"total": len(files)})
}

// Get godoc
// @Summary Get a person schedule
// @Tags People
// @Produce json
// @Param name path string true "Person name"
// @Success 200 {object} response.Envelope
// @Failure 404 {object} response.Envelope
// @Router /people/{name} [get]
func (h *PeopleHandler) Get(c *gin.Context) {
	schedule, err := h.service.Get(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

// Put godoc
// @Summary Create or replace a person schedule
// @Tags People
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param name path string true "Person name"
// @Param payload body dto.UpsertPersonRequest true "Schedule"
// @Success 200 {object} response.Envelope
// @Router /people/{name} [put]
func (h *PeopleHandler) Put(c *gin.Context) {
	var req dto.UpsertPersonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid schedule payload"))
		return
	}
	schedule, err := h.service.Put(c.Request.Context(), c.Param("name"), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

// Delete godoc
// @Summary Delete a person schedule
// @Description The schedule is kept in the deletion log and can be restored.
// @Tags People
// @Security BearerAuth
// @Param name path string true "Person name"
// @Success 204
// @Router /people/{name} [delete]
func (h *PeopleHandler) Delete(c *gin.Context) {
	if err := h.service.Delete(c.Request.Context(), c.Param("name"), claimsFromContext(c)); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Upload godoc
// @Summary Parse an uploaded people file
// @Description Accepts {"name": {"blockedIntervals": [...], "compatibleWith": [...]}} as JSON or YAML. save=true also stores every entry.
// @Tags People
// @Accept multipart/form-data
// @Produce json
// @Param file formData file true "People file"
// @Param save query bool false "Persist parsed entries"
// @Success 200 {object} response.Envelope
// @Failure 413 {object} response.Envelope
// @Router /people/upload [post]
func (h *PeopleHandler) Upload(c *gin.Context) {
	save, _ := strconv.ParseBool(c.DefaultQuery("save", "false"))
	if save {
		if claims := claimsFromContext(c); claims == nil || claims.Role != models.RoleAdmin {
			response.Error(c, appErrors.Clone(appErrors.ErrForbidden, "saving uploads requires the ADMIN role"))
			return
		}
	}

	header, err := c.FormFile("file")
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is required"))
		return
	}
	if h.maxUploadBytes > 0 && header.Size > h.maxUploadBytes {
		response.Error(c, appErrors.ErrTooLarge)
		return
	}
	file, err := header.Open()
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is unreadable"))
		return
	}
	defer file.Close()
	raw, err := io.ReadAll(file)
	if err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "file is unreadable"))
		return
	}

	result, err := h.service.Upload(c.Request.Context(), header.Filename, raw, save)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, result)
}

// Changes godoc
// @Summary Detect schedule changes since a client snapshot
// @Tags People
// @Accept json
// @Produce json
// @Param payload body dto.ScheduleChangesRequest true "Known files"
// @Success 200 {object} response.Envelope
// @Router /people/changes [post]
func (h *PeopleHandler) Changes(c *gin.Context) {
	var req dto.ScheduleChangesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid changes payload"))
		return
	}
	changes, err := h.service.Changes(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, changes)
}

// Deletions godoc
// @Summary List the deletion log
// @Tags People
// @Produce json
// @Success 200 {object} response.Envelope
// @Router /people/deletions [get]
func (h *PeopleHandler) Deletions(c *gin.Context) {
	entries, err := h.service.Deletions(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, entries)
}

// Restore godoc
// @Summary Restore a deleted schedule
// @Tags People
// @Produce json
// @Security BearerAuth
// @Param name path string true "Person name"
// @Success 200 {object} response.Envelope
// @Router /people/deletions/{name}/restore [post]
func (h *PeopleHandler) Restore(c *gin.Context) {
	schedule, err := h.service.Restore(c.Request.Context(), c.Param("name"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, schedule)
}

// Purge godoc
// @Summary Permanently remove a deletion record
// @Tags People
// @Security BearerAuth
// @Param name path string true "Person name"
// @Success 204
// @Router /people/deletions/{name} [delete]
func (h *PeopleHandler) Purge(c *gin.Context) {
	if err := h.service.Purge(c.Request.Context(), c.Param("name")); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}
