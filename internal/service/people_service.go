package service

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/repository"
	"github.com/noah-isme/tutor-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
	"github.com/noah-isme/tutor-timetable-api/pkg/logger"
)

// ScheduleStore is implemented by the filesystem and postgres repositories.
type ScheduleStore interface {
	List(ctx context.Context) ([]models.ScheduleFile, error)
	LoadAll(ctx context.Context) ([]models.PersonSchedule, error)
	Get(ctx context.Context, name string) (*models.PersonSchedule, error)
	Save(ctx context.Context, schedule models.PersonSchedule) (*models.PersonSchedule, error)
	Delete(ctx context.Context, name, deletedBy string) error
	Deletions(ctx context.Context) ([]models.DeletionEntry, error)
	Restore(ctx context.Context, name string) (*models.PersonSchedule, error)
	Purge(ctx context.Context, name string) error
}

type cacheInvalidator interface {
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// PeopleService manages stored person schedules.
type PeopleService struct {
	store     ScheduleStore
	cache     cacheInvalidator
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
}

// NewPeopleService constructs a PeopleService. cache may be nil.
func NewPeopleService(store ScheduleStore, cache cacheInvalidator, metrics *MetricsService, validate *validator.Validate, log *zap.Logger) *PeopleService {
	if validate == nil {
		validate = validator.New()
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &PeopleService{store: store, cache: cache, metrics: metrics, validator: validate, logger: log}
}

// List returns stored schedules with their modification times.
func (s *PeopleService) List(ctx context.Context) ([]models.ScheduleFile, error) {
	var files []models.ScheduleFile
	err := s.observe("list", func() (err error) {
		files, err = s.store.List(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to list schedules")
	}
	return files, nil
}

// LoadAll returns every stored schedule.
func (s *PeopleService) LoadAll(ctx context.Context) ([]models.PersonSchedule, error) {
	var schedules []models.PersonSchedule
	err := s.observe("load_all", func() (err error) {
		schedules, err = s.store.LoadAll(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to load schedules")
	}
	return schedules, nil
}

// Get returns one stored schedule.
func (s *PeopleService) Get(ctx context.Context, name string) (*models.PersonSchedule, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	var schedule *models.PersonSchedule
	err := s.observe("get", func() (err error) {
		schedule, err = s.store.Get(ctx, name)
		return err
	})
	if err != nil {
		return nil, storeError(err, "schedule not found")
	}
	return schedule, nil
}

// Put validates and stores a schedule under name.
func (s *PeopleService) Put(ctx context.Context, name string, req dto.UpsertPersonRequest) (*models.PersonSchedule, error) {
	if err := requireStorableName(name); err != nil {
		return nil, err
	}
	doc := models.ScheduleDocument{BlockedIntervals: req.BlockedIntervals, CompatibleWith: req.CompatibleWith}
	if err := s.validateDocument(name, doc); err != nil {
		return nil, err
	}

	var saved *models.PersonSchedule
	err := s.observe("save", func() (err error) {
		saved, err = s.store.Save(ctx, models.PersonSchedule{Name: name, ScheduleDocument: doc})
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to save schedule")
	}
	logger.FromContext(ctx, s.logger).Info("person schedule saved", zap.String("name", saved.Name), zap.Int("blocked", len(doc.BlockedIntervals)))
	s.invalidate(ctx)
	return saved, nil
}

// Delete removes a schedule, recording who deleted it.
func (s *PeopleService) Delete(ctx context.Context, name string, claims *models.JWTClaims) error {
	if err := requireName(name); err != nil {
		return err
	}
	actor := claims.Actor()
	err := s.observe("delete", func() error {
		return s.store.Delete(ctx, name, actor)
	})
	if err != nil {
		return storeError(err, "schedule not found")
	}
	logger.FromContext(ctx, s.logger).Info("person schedule deleted", zap.String("name", name), zap.String("deleted_by", actor))
	s.invalidate(ctx)
	return nil
}

// Deletions lists the deletion log, newest first.
func (s *PeopleService) Deletions(ctx context.Context) ([]models.DeletionEntry, error) {
	var entries []models.DeletionEntry
	err := s.observe("deletions", func() (err error) {
		entries, err = s.store.Deletions(ctx)
		return err
	})
	if err != nil {
		return nil, storeError(err, "failed to read deletion log")
	}
	return entries, nil
}

// Restore brings a deleted schedule back.
func (s *PeopleService) Restore(ctx context.Context, name string) (*models.PersonSchedule, error) {
	if err := requireName(name); err != nil {
		return nil, err
	}
	var restored *models.PersonSchedule
	err := s.observe("restore", func() (err error) {
		restored, err = s.store.Restore(ctx, name)
		return err
	})
	if err != nil {
		return nil, storeError(err, "deletion record not found")
	}
	logger.FromContext(ctx, s.logger).Info("person schedule restored", zap.String("name", restored.Name))
	s.invalidate(ctx)
	return restored, nil
}

// Purge permanently drops a deletion record.
func (s *PeopleService) Purge(ctx context.Context, name string) error {
	if err := requireName(name); err != nil {
		return err
	}
	err := s.observe("purge", func() error {
		return s.store.Purge(ctx, name)
	})
	if err != nil {
		return storeError(err, "deletion record not found")
	}
	logger.FromContext(ctx, s.logger).Info("deletion record purged", zap.String("name", name))
	return nil
}

// Upload parses a people file (JSON, or YAML when filename says so) and optionally stores
// every entry.
func (s *PeopleService) Upload(ctx context.Context, filename string, raw []byte, save bool) (*dto.UploadPeopleResponse, error) {
	people, err := ParsePeople(filename, raw)
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(people))
	for name, doc := range people {
		if err := requireStorableName(name); err != nil {
			return nil, err
		}
		if err := s.validateDocument(name, doc); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	sort.Strings(names)

	resp := &dto.UploadPeopleResponse{People: people}
	if !save {
		return resp, nil
	}
	for _, name := range names {
		var saved *models.PersonSchedule
		err := s.observe("save", func() (err error) {
			saved, err = s.store.Save(ctx, models.PersonSchedule{Name: name, ScheduleDocument: people[name]})
			return err
		})
		if err != nil {
			return nil, storeError(err, fmt.Sprintf("failed to save schedule %q", name))
		}
		resp.Saved = append(resp.Saved, saved.Name)
	}
	logger.FromContext(ctx, s.logger).Info("people file imported", zap.String("file", filename), zap.Int("saved", len(resp.Saved)))
	s.invalidate(ctx)
	return resp, nil
}

// Changes compares the store with the modification times a client already knows.
func (s *PeopleService) Changes(ctx context.Context, req dto.ScheduleChangesRequest) (*models.ScheduleChanges, error) {
	files, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	changes := &models.ScheduleChanges{
		New:      []string{},
		Modified: []string{},
		Deleted:  []string{},
		Files:    make(map[string]time.Time, len(files)),
	}
	for _, file := range files {
		changes.Files[file.Name] = file.ModifiedAt
		known, ok := req.KnownFiles[file.Name]
		switch {
		case !ok:
			changes.New = append(changes.New, file.Name)
		case file.ModifiedAt.After(known):
			changes.Modified = append(changes.Modified, file.Name)
		}
	}
	for name := range req.KnownFiles {
		if _, ok := changes.Files[name]; !ok {
			changes.Deleted = append(changes.Deleted, name)
		}
	}
	sort.Strings(changes.New)
	sort.Strings(changes.Modified)
	sort.Strings(changes.Deleted)
	return changes, nil
}

// ParsePeople decodes {"name": {"blockedIntervals": [...], "compatibleWith": [...]}}.
func ParsePeople(filename string, raw []byte) (map[string]models.ScheduleDocument, error) {
	if len(strings.TrimSpace(string(raw))) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "people file is empty")
	}
	people := map[string]models.ScheduleDocument{}
	var err error
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &people)
	default:
		err = json.Unmarshal(raw, &people)
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "people file is not valid")
	}
	if len(people) == 0 {
		return nil, appErrors.Clone(appErrors.ErrValidation, "people file contains no entries")
	}
	for name, doc := range people {
		if doc.BlockedIntervals == nil {
			doc.BlockedIntervals = []models.BlockedInterval{}
		}
		if doc.CompatibleWith == nil {
			doc.CompatibleWith = []string{}
		}
		people[name] = doc
	}
	return people, nil
}

func (s *PeopleService) validateDocument(name string, doc models.ScheduleDocument) error {
	if err := s.validator.Struct(doc); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, fmt.Sprintf("invalid schedule for %s", name))
	}
	for i, blocked := range doc.BlockedIntervals {
		field := fmt.Sprintf("%s.blockedIntervals[%d]", name, i)
		start, err := scheduler.ToMinutes(blocked.Start)
		if err != nil {
			return clockError(field+".start", err)
		}
		end, err := scheduler.ToMinutes(blocked.End)
		if err != nil {
			return clockError(field+".end", err)
		}
		if end < start {
			return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("%s ends before it starts", field))
		}
	}
	return nil
}

func (s *PeopleService) observe(operation string, fn func() error) error {
	start := time.Now()
	err := fn()
	s.metrics.ObserveStore(operation, time.Since(start))
	return err
}

func (s *PeopleService) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if _, err := s.cache.Invalidate(ctx, ScheduleCachePrefix+"*"); err != nil {
		logger.FromContext(ctx, s.logger).Warn("schedule cache invalidation failed", zap.Error(err))
	}
}

func requireName(name string) error {
	if repository.SanitizeName(name) == "" {
		return appErrors.Clone(appErrors.ErrValidation, "name is required")
	}
	return nil
}

// requireStorableName rejects names the store would rewrite. Stored entries come back under
// their storage key, and profiles and compatibleWith lists must still match it.
func requireStorableName(name string) error {
	if err := requireName(name); err != nil {
		return err
	}
	if key := repository.SanitizeName(name); key != name {
		return appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("name %q would be stored as %q; use the stored form", name, key))
	}
	return nil
}

func clockError(field string, err error) error {
	var formatErr *scheduler.FormatError
	if errors.As(err, &formatErr) {
		formatErr.Field = field
	}
	return appErrors.Wrap(err, appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, err.Error())
}

func storeError(err error, notFound string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return appErrors.Wrap(err, appErrors.ErrNotFound.Code, appErrors.ErrNotFound.Status, notFound)
	}
	var appErr *appErrors.Error
	if errors.As(err, &appErr) {
		return appErr
	}
	return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule store failure")
}
