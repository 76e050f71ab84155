package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/scheduler"
	appErrors "github.com/noah-isme/tutor-timetable-api/pkg/errors"
	"github.com/noah-isme/tutor-timetable-api/pkg/logger"
)

// ScheduleCachePrefix namespaces cached generation results.
const ScheduleCachePrefix = "schedule:result:"

type scheduleEngine interface {
	Generate(req scheduler.Request) (*scheduler.Result, error)
}

type peopleLoader interface {
	LoadAll(ctx context.Context) ([]models.PersonSchedule, error)
}

type resultCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) (int, error)
}

// ScheduleGeneratorConfig governs generator behaviour.
type ScheduleGeneratorConfig struct {
	CacheTTL time.Duration
}

// ScheduleGeneratorParams groups the generator collaborators. Only Engine is required.
type ScheduleGeneratorParams struct {
	Engine    scheduleEngine
	People    peopleLoader
	Cache     resultCache
	Metrics   *MetricsService
	Validator *validator.Validate
	Logger    *zap.Logger
}

// ScheduleGeneratorService validates requests, runs the allocation engine and caches results.
type ScheduleGeneratorService struct {
	engine    scheduleEngine
	people    peopleLoader
	cache     resultCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       ScheduleGeneratorConfig
}

// NewScheduleGeneratorService wires generator dependencies.
func NewScheduleGeneratorService(params ScheduleGeneratorParams, cfg ScheduleGeneratorConfig) *ScheduleGeneratorService {
	engine := params.Engine
	if engine == nil {
		engine = scheduler.NewEngine()
	}
	validate := params.Validator
	if validate == nil {
		validate = validator.New()
	}
	RegisterScheduleValidations(validate)
	log := params.Logger
	if log == nil {
		log = zap.NewNop()
	}
	return &ScheduleGeneratorService{
		engine:    engine,
		people:    params.People,
		cache:     params.Cache,
		metrics:   params.Metrics,
		validator: validate,
		logger:    log,
		cfg:       cfg,
	}
}

// RegisterScheduleValidations installs the struct-level rule for subject requirements.
func RegisterScheduleValidations(v *validator.Validate) {
	v.RegisterStructValidation(validateSubjectRequirement, dto.SubjectRequirementRequest{})
}

func validateSubjectRequirement(sl validator.StructLevel) {
	req := sl.Current().Interface().(dto.SubjectRequirementRequest)
	switch req.Type {
	case dto.SubjectTypeDaily:
		if req.DailyMinutes <= 0 {
			sl.ReportError(req.DailyMinutes, "dailyMinutes", "DailyMinutes", "required_for_daily", "")
		}
	case dto.SubjectTypeWeekly:
		if req.SessionsPerWeek <= 0 {
			sl.ReportError(req.SessionsPerWeek, "sessionsPerWeek", "SessionsPerWeek", "required_for_weekly", "")
		}
		if req.MinutesPerSession <= 0 {
			sl.ReportError(req.MinutesPerSession, "minutesPerSession", "MinutesPerSession", "required_for_weekly", "")
		}
	}
}

// Generate produces a timetable and reports whether it was served from cache.
func (s *ScheduleGeneratorService) Generate(ctx context.Context, req dto.GenerateScheduleRequest) (*dto.GenerateScheduleResponse, bool, error) {
	if err := s.validator.Struct(req); err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid schedule request")
	}

	merged, err := s.mergeStoredPeople(ctx, req)
	if err != nil {
		return nil, false, err
	}

	key, err := HashKey(ScheduleCachePrefix, merged)
	if err != nil {
		return nil, false, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to build cache key")
	}
	if cached, hit := s.tryCache(ctx, key); hit {
		return cached, true, nil
	}

	start := time.Now()
	result, err := s.engine.Generate(toEngineRequest(merged))
	elapsed := time.Since(start)
	if err != nil {
		s.metrics.ObserveGeneration(OutcomeError, 0, elapsed)
		return nil, false, mapEngineError(err)
	}

	outcome := OutcomeSuccess
	if !result.Success {
		outcome = OutcomeConflicts
	}
	s.metrics.ObserveGeneration(outcome, len(result.Conflicts), elapsed)
	logger.FromContext(ctx, s.logger).Info("schedule generated",
		zap.Int("people", len(merged.People)),
		zap.Int("profiles", len(merged.PersonProfiles)),
		zap.Int("blocks", len(result.Blocks)),
		zap.Int("conflicts", len(result.Conflicts)),
		zap.Duration("duration", elapsed),
	)

	resp := toResponse(result)
	s.persistCache(ctx, key, resp)
	return resp, false, nil
}

// InvalidateCache drops every cached generation result.
func (s *ScheduleGeneratorService) InvalidateCache(ctx context.Context) (int, error) {
	if s.cache == nil {
		return 0, nil
	}
	removed, err := s.cache.Invalidate(ctx, ScheduleCachePrefix+"*")
	if err != nil {
		return removed, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to flush schedule cache")
	}
	return removed, nil
}

// mergeStoredPeople folds the store into the inline people map; inline entries win.
func (s *ScheduleGeneratorService) mergeStoredPeople(ctx context.Context, req dto.GenerateScheduleRequest) (dto.GenerateScheduleRequest, error) {
	if !req.UsePeopleStore {
		return req, nil
	}
	if s.people == nil {
		return req, appErrors.Clone(appErrors.ErrValidation, "people store is not available")
	}
	start := time.Now()
	stored, err := s.people.LoadAll(ctx)
	s.metrics.ObserveStore("load_all", time.Since(start))
	if err != nil {
		return req, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load stored schedules")
	}

	people := make(map[string]dto.PersonAvailability, len(stored)+len(req.People))
	for _, schedule := range stored {
		people[schedule.Name] = dto.PersonAvailability{
			BlockedIntervals: schedule.BlockedIntervals,
			CompatibleWith:   schedule.CompatibleWith,
		}
	}
	for name, inline := range req.People {
		people[name] = inline
	}
	req.People = people
	req.UsePeopleStore = false
	return req, nil
}

func (s *ScheduleGeneratorService) tryCache(ctx context.Context, key string) (*dto.GenerateScheduleResponse, bool) {
	if s.cache == nil {
		return nil, false
	}
	var cached dto.GenerateScheduleResponse
	hit, err := s.cache.Get(ctx, key, &cached)
	if err != nil {
		logger.FromContext(ctx, s.logger).Warn("schedule cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	if !hit {
		return nil, false
	}
	return &cached, true
}

func (s *ScheduleGeneratorService) persistCache(ctx context.Context, key string, value *dto.GenerateScheduleResponse) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Set(ctx, key, value, s.cfg.CacheTTL); err != nil {
		logger.FromContext(ctx, s.logger).Warn("schedule cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func mapEngineError(err error) error {
	var formatErr *scheduler.FormatError
	switch {
	case errors.As(err, &formatErr):
		return appErrors.Wrap(err, appErrors.ErrFormat.Code, appErrors.ErrFormat.Status, formatErr.Error())
	case errors.Is(err, scheduler.ErrInvalidRequest):
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, err.Error())
	default:
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "schedule generation failed")
	}
}

func toEngineRequest(req dto.GenerateScheduleRequest) scheduler.Request {
	people := make(map[string]scheduler.Person, len(req.People))
	for name, person := range req.People {
		blocked := make([]scheduler.BlockedInterval, 0, len(person.BlockedIntervals))
		for _, b := range person.BlockedIntervals {
			blocked = append(blocked, scheduler.BlockedInterval{Day: b.Day, Start: b.Start, End: b.End, Label: b.Label})
		}
		people[name] = scheduler.Person{
			BlockedIntervals: blocked,
			CompatibleWith:   append([]string(nil), person.CompatibleWith...),
		}
	}

	profiles := make([]scheduler.PersonProfile, 0, len(req.PersonProfiles))
	for _, profile := range req.PersonProfiles {
		subjects := make([]scheduler.SubjectRequirement, 0, len(profile.Subjects))
		for _, subject := range profile.Subjects {
			switch subject.Type {
			case dto.SubjectTypeDaily:
				subjects = append(subjects, scheduler.DailyRequirement{Name: subject.Name, DailyMinutes: subject.DailyMinutes})
			case dto.SubjectTypeWeekly:
				subjects = append(subjects, scheduler.WeeklyRequirement{
					Name:              subject.Name,
					SessionsPerWeek:   subject.SessionsPerWeek,
					MinutesPerSession: subject.MinutesPerSession,
				})
			}
		}
		profiles = append(profiles, scheduler.PersonProfile{Name: profile.Name, Subjects: subjects})
	}

	return scheduler.Request{
		People:   people,
		Profiles: profiles,
		Calendar: scheduler.Calendar{
			Days:      append([]string(nil), req.Calendar.Days...),
			StartTime: req.Calendar.StartTime,
			EndTime:   req.Calendar.EndTime,
		},
		LunchTime:             req.LunchTime,
		FlexibleBlockRequired: req.FlexibleBlockRequired,
	}
}

func toResponse(result *scheduler.Result) *dto.GenerateScheduleResponse {
	blocks := make([]dto.TimeBlockResponse, 0, len(result.Blocks))
	for _, b := range result.Blocks {
		blocks = append(blocks, dto.TimeBlockResponse{
			Day:     b.Day,
			Start:   scheduler.ToClock(b.Start),
			End:     scheduler.ToClock(b.End),
			Type:    string(b.Kind),
			Subject: b.Subject,
			Person:  b.Person,
			People:  b.People,
			Label:   b.Label,
		})
	}
	resp := &dto.GenerateScheduleResponse{
		Blocks:  blocks,
		Success: result.Success,
		Message: result.Message,
	}
	if len(result.Conflicts) > 0 {
		resp.Conflicts = append([]string(nil), result.Conflicts...)
	}
	return resp
}

// Summary renders a one-line description of a generated timetable.
func Summary(resp *dto.GenerateScheduleResponse) string {
	if resp == nil {
		return ""
	}
	return fmt.Sprintf("%s: %d blocks, %d conflicts", resp.Message, len(resp.Blocks), len(resp.Conflicts))
}
