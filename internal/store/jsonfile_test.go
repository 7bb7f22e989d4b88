package store

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/talentscout/hiring-assistant/internal/candidate"
)

func testProfile() *candidate.Profile {
	p := candidate.New()
	p.FullName = "Jane Doe"
	p.Email = "jane@example.com"
	p.Phone = "1234567890"
	p.ExperienceYears = "4"
	p.DesiredPosition = "Backend Developer"
	p.Location = "Berlin"
	p.TechStack = "Go, PostgreSQL, Docker"
	p.TechnicalQuestions = []string{"Q1", "Q2", "Q3", "Q4"}
	p.TechnicalAnswers = []string{"A1", "A2", "A3", "A4"}

	return p
}

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "candidates.json")
	s := NewFileStore(path, nil)

	require.NoError(t, s.Save(context.Background(), testProfile()))

	second := testProfile()
	second.FullName = "John Roe"
	second.Email = "john@example.com"
	require.NoError(t, s.Save(context.Background(), second))

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 2)

	assert.Equal(t, "Jane Doe", records[0].FullName)
	assert.Equal(t, "john@example.com", records[1].Email)
	assert.Equal(t, []string{"Q1", "Q2", "Q3", "Q4"}, records[0].TechnicalQuestions)
	assert.Len(t, records[1].TechnicalAnswers, 4)
	assert.NotEmpty(t, records[0].SessionID)
	assert.NotEmpty(t, records[0].CreatedAt)
}

func TestFileStoreMissingFileIsEmpty(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "absent.json"), nil)

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreRejectsUnidentifiedProfile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "candidates.json"), nil)

	p := testProfile()
	p.Email = ""
	assert.Error(t, s.Save(context.Background(), p))

	p = testProfile()
	p.Email = "not-an-email"
	assert.Error(t, s.Save(context.Background(), p))

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestFileStoreAcceptsPartialProfile(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "candidates.json"), nil)

	p := candidate.New()
	p.FullName = "Early Exit"
	p.Email = "early@example.com"

	require.NoError(t, s.Save(context.Background(), p))

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Empty(t, records[0].Phone)
}

func TestFileStoreSanitizesOnSave(t *testing.T) {
	s := NewFileStore(filepath.Join(t.TempDir(), "candidates.json"), nil)

	p := testProfile()
	p.FullName = `  Jane <script>"Doe"  `

	require.NoError(t, s.Save(context.Background(), p))

	records, err := s.LoadAll(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Jane scriptDoe", records[0].FullName)
}
