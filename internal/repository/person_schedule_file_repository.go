package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"sort"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/pkg/storage"
)

const (
	scheduleExt     = ".json"
	logsDir         = ".logs"
	deletionLogFile = "deletion_log.json"
)

type fileStorage interface {
	Save(filename string, data []byte) error
	Read(filename string) ([]byte, error)
	Stat(filename string) (storage.Entry, error)
	Delete(filename string) error
	List(ext string) ([]storage.Entry, error)
}

// FileScheduleRepository keeps one JSON document per person in a directory, plus a deletion
// log under .logs/ for restores. Missing entries are reported as sql.ErrNoRows so services
// treat both store drivers alike.
type FileScheduleRepository struct {
	files  fileStorage
	logger *zap.Logger
	mu     sync.Mutex
}

// NewFileScheduleRepository constructs the repository.
func NewFileScheduleRepository(files fileStorage, logger *zap.Logger) *FileScheduleRepository {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &FileScheduleRepository{files: files, logger: logger}
}

// List returns every stored schedule with its modification time.
func (r *FileScheduleRepository) List(ctx context.Context) ([]models.ScheduleFile, error) {
	entries, err := r.files.List(scheduleExt)
	if err != nil {
		return nil, err
	}
	out := make([]models.ScheduleFile, 0, len(entries))
	for _, entry := range entries {
		out = append(out, models.ScheduleFile{
			Name:       strings.TrimSuffix(entry.Name, scheduleExt),
			ModifiedAt: entry.ModTime.UTC(),
			Size:       entry.Size,
		})
	}
	return out, nil
}

// LoadAll reads every stored schedule. Unreadable documents are logged and skipped.
func (r *FileScheduleRepository) LoadAll(ctx context.Context) ([]models.PersonSchedule, error) {
	files, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]models.PersonSchedule, 0, len(files))
	for _, file := range files {
		schedule, err := r.load(file.Name)
		if err != nil {
			r.logger.Warn("skip unreadable schedule", zap.String("name", file.Name), zap.Error(err))
			continue
		}
		out = append(out, *schedule)
	}
	return out, nil
}

// Get loads a single schedule.
func (r *FileScheduleRepository) Get(ctx context.Context, name string) (*models.PersonSchedule, error) {
	return r.load(SanitizeName(name))
}

// Save writes a schedule atomically and returns it with the stored modification time.
func (r *FileScheduleRepository) Save(ctx context.Context, schedule models.PersonSchedule) (*models.PersonSchedule, error) {
	key := SanitizeName(schedule.Name)
	if key == "" {
		return nil, fmt.Errorf("schedule name %q is empty after sanitising", schedule.Name)
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.write(key, schedule.ScheduleDocument); err != nil {
		return nil, err
	}
	return r.load(key)
}

// Delete removes a schedule and records it in the deletion log.
func (r *FileScheduleRepository) Delete(ctx context.Context, name, deletedBy string) error {
	key := SanitizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	schedule, err := r.load(key)
	if err != nil {
		return err
	}
	log, err := r.readLog()
	if err != nil {
		return err
	}
	log[key] = models.DeletionEntry{
		Name:      key,
		DeletedAt: time.Now().UTC(),
		DeletedBy: deletedBy,
		Schedule:  schedule.ScheduleDocument,
	}
	if err := r.writeLog(log); err != nil {
		return err
	}
	return r.files.Delete(key + scheduleExt)
}

// Deletions returns the deletion log, most recent first.
func (r *FileScheduleRepository) Deletions(ctx context.Context) ([]models.DeletionEntry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	log, err := r.readLog()
	if err != nil {
		return nil, err
	}
	return sortedDeletions(log), nil
}

// Restore writes a logged schedule back and removes it from the log.
func (r *FileScheduleRepository) Restore(ctx context.Context, name string) (*models.PersonSchedule, error) {
	key := SanitizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.readLog()
	if err != nil {
		return nil, err
	}
	entry, ok := log[key]
	if !ok {
		return nil, fmt.Errorf("deletion record %q: %w", key, sql.ErrNoRows)
	}
	if err := r.write(key, entry.Schedule); err != nil {
		return nil, err
	}
	delete(log, key)
	if err := r.writeLog(log); err != nil {
		r.logger.Warn("restored schedule still listed in deletion log", zap.String("name", key), zap.Error(err))
	}
	return r.load(key)
}

// Purge permanently drops a deletion record.
func (r *FileScheduleRepository) Purge(ctx context.Context, name string) error {
	key := SanitizeName(name)
	r.mu.Lock()
	defer r.mu.Unlock()

	log, err := r.readLog()
	if err != nil {
		return err
	}
	if _, ok := log[key]; !ok {
		return fmt.Errorf("deletion record %q: %w", key, sql.ErrNoRows)
	}
	delete(log, key)
	return r.writeLog(log)
}

func (r *FileScheduleRepository) load(key string) (*models.PersonSchedule, error) {
	filename := key + scheduleExt
	raw, err := r.files.Read(filename)
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return nil, fmt.Errorf("schedule %q: %w", key, sql.ErrNoRows)
		}
		return nil, err
	}
	doc, err := decodeDocument(key, raw)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", filename, err)
	}
	entry, err := r.files.Stat(filename)
	if err != nil {
		return nil, err
	}
	return &models.PersonSchedule{Name: key, ScheduleDocument: doc, UpdatedAt: entry.ModTime.UTC()}, nil
}

func (r *FileScheduleRepository) write(key string, doc models.ScheduleDocument) error {
	payload, err := json.MarshalIndent(normalizeDocument(doc), "", "  ")
	if err != nil {
		return fmt.Errorf("marshal schedule %q: %w", key, err)
	}
	return r.files.Save(key+scheduleExt, payload)
}

func (r *FileScheduleRepository) readLog() (map[string]models.DeletionEntry, error) {
	raw, err := r.files.Read(path.Join(logsDir, deletionLogFile))
	if err != nil {
		if errors.Is(err, storage.ErrNotExist) {
			return map[string]models.DeletionEntry{}, nil
		}
		return nil, err
	}
	log := map[string]models.DeletionEntry{}
	if err := json.Unmarshal(raw, &log); err != nil {
		r.logger.Warn("deletion log unreadable, starting a new one", zap.Error(err))
		return map[string]models.DeletionEntry{}, nil
	}
	for name, entry := range log {
		entry.Name = name
		log[name] = entry
	}
	return log, nil
}

func (r *FileScheduleRepository) writeLog(log map[string]models.DeletionEntry) error {
	payload, err := json.MarshalIndent(log, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal deletion log: %w", err)
	}
	return r.files.Save(path.Join(logsDir, deletionLogFile), payload)
}

// decodeDocument accepts both the flat document and the older {"<name>": {...}} wrapper.
func decodeDocument(key string, raw []byte) (models.ScheduleDocument, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return models.ScheduleDocument{}, err
	}
	_, hasBlocked := fields["blockedIntervals"]
	_, hasCompat := fields["compatibleWith"]
	if !hasBlocked && !hasCompat {
		if nested, ok := fields[key]; ok {
			raw = nested
		}
	}
	var doc models.ScheduleDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return models.ScheduleDocument{}, err
	}
	return normalizeDocument(doc), nil
}

func normalizeDocument(doc models.ScheduleDocument) models.ScheduleDocument {
	if doc.BlockedIntervals == nil {
		doc.BlockedIntervals = []models.BlockedInterval{}
	}
	if doc.CompatibleWith == nil {
		doc.CompatibleWith = []string{}
	}
	return doc
}

func sortedDeletions(log map[string]models.DeletionEntry) []models.DeletionEntry {
	out := make([]models.DeletionEntry, 0, len(log))
	for _, entry := range log {
		out = append(out, entry)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].DeletedAt.Equal(out[j].DeletedAt) {
			return out[i].DeletedAt.After(out[j].DeletedAt)
		}
		return out[i].Name < out[j].Name
	})
	return out
}
