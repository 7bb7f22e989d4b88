package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/talentscout/hiring-assistant/internal/candidate"
	"go.uber.org/zap"
)

// FileStore keeps all candidates in one JSON array on disk. The whole file
// is rewritten on every save, which is fine at screening volumes.
type FileStore struct {
	path   string
	logger *zap.Logger

	mu sync.Mutex
}

func NewFileStore(path string, log *zap.Logger) *FileStore {
	if log == nil {
		log = zap.NewNop()
	}

	return &FileStore{
		path:   path,
		logger: log.With(zap.String("store", "file"), zap.String("path", path)),
	}
}

func (s *FileStore) Save(_ context.Context, p *candidate.Profile) error {
	sanitizeProfile(p)

	if problems := candidate.ValidateForSave(p); len(problems) > 0 {
		return fmt.Errorf("profile failed validation: %s", formatProblems(problems))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	records, err := s.readAll()
	if err != nil {
		return err
	}

	records = append(records, p.Record())

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("creating data directory: %w", err)
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding candidates: %w", err)
	}

	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		return fmt.Errorf("writing candidates file: %w", err)
	}

	s.logger.Info("candidate saved", zap.Int("total_records", len(records)))

	return nil
}

func (s *FileStore) LoadAll(_ context.Context) ([]candidate.Record, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.readAll()
}

// readAll tolerates a missing file but not a corrupt one.
func (s *FileStore) readAll() ([]candidate.Record, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return []candidate.Record{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading candidates file: %w", err)
	}

	var raw []map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parsing candidates file: %w", err)
	}

	records, err := candidate.DecodeRecords(raw)
	if err != nil {
		return nil, fmt.Errorf("decoding candidates: %w", err)
	}

	return records, nil
}

func sanitizeProfile(p *candidate.Profile) {
	p.FullName = candidate.Sanitize(p.FullName)
	p.Email = candidate.Sanitize(p.Email)
	p.Phone = candidate.Sanitize(p.Phone)
	p.ExperienceYears = candidate.Sanitize(p.ExperienceYears)
	p.DesiredPosition = candidate.Sanitize(p.DesiredPosition)
	p.Location = candidate.Sanitize(p.Location)
	p.TechStack = candidate.Sanitize(p.TechStack)
}

func formatProblems(problems map[string][]string) string {
	fields := make([]string, 0, len(problems))
	for field := range problems {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	parts := make([]string, 0, len(fields))
	for _, field := range fields {
		parts = append(parts, fmt.Sprintf("%s (%s)", field, strings.Join(problems[field], "; ")))
	}

	return strings.Join(parts, ", ")
}
