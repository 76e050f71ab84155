package main

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/tutor-timetable-api/internal/dto"
	"github.com/noah-isme/tutor-timetable-api/internal/models"
	"github.com/noah-isme/tutor-timetable-api/internal/service"
)

const requestJSON = `{
  "people": {"Ana": {"blockedIntervals": [{"day": "Monday", "start": "09:00", "end": "10:00", "label": "Gym"}], "compatibleWith": []}},
  "personProfiles": [{"name": "Ana", "subjects": [{"type": "daily", "name": "Math", "dailyMinutes": 60}]}],
  "calendar": {"days": ["Monday"], "startTime": "09:00", "endTime": "17:00"},
  "lunchTime": "12:00"
}`

const requestYAML = `people:
  Ana:
    blockedIntervals: []
    compatibleWith: []
personProfiles:
  - name: Ana
    subjects:
      - type: daily
        name: Math
        dailyMinutes: 600
calendar:
  days: [Monday]
  startTime: "09:00"
  endTime: "17:00"
lunchTime: "12:00"
`

func runCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()
	generateFile, generateFormat, generateOut, generateStrict = "", "table", "", false
	tokenUser, tokenEmail, tokenRole, tokenTTL = "operator", "", string(models.RoleAdmin), time.Hour
	verbose = false

	var stdout, stderr bytes.Buffer
	rootCmd.SetOut(&stdout)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs(args)
	err := Execute()
	return stdout.String(), stderr.String(), err
}

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestGenerateTable(t *testing.T) {
	path := writeFile(t, "request.json", requestJSON)

	stdout, stderr, err := runCLI(t, "generate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stdout, "DAY")
	assert.Regexp(t, `Monday\s+10:00\s+11:00\s+session\s+Math\s+Ana`, stdout)
	assert.Regexp(t, `Monday\s+09:00\s+10:00\s+blocked\s+Gym`, stdout)
	assert.Contains(t, stderr, "Schedule generated successfully")
}

func TestGenerateJSONToFile(t *testing.T) {
	path := writeFile(t, "request.json", requestJSON)
	out := filepath.Join(t.TempDir(), "timetable.json")

	stdout, _, err := runCLI(t, "generate", "-f", path, "--format", "json", "--out", out)
	require.NoError(t, err)
	assert.Empty(t, stdout)

	raw, err := os.ReadFile(out)
	require.NoError(t, err)
	var resp dto.GenerateScheduleResponse
	require.NoError(t, json.Unmarshal(raw, &resp))
	assert.True(t, resp.Success)
	assert.NotEmpty(t, resp.Blocks)
}

func TestGenerateCSV(t *testing.T) {
	path := writeFile(t, "request.json", requestJSON)

	stdout, _, err := runCLI(t, "generate", "-f", path, "--format", "csv")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(stdout, "Day,Start,End,Type,Subject,People,Label"))
	assert.Contains(t, stdout, "Monday,10:00,11:00,session,Math,Ana,")
}

func TestGenerateYAMLStrictConflicts(t *testing.T) {
	path := writeFile(t, "request.yaml", requestYAML)

	_, stderr, err := runCLI(t, "generate", "-f", path)
	require.NoError(t, err)
	assert.Contains(t, stderr, "Ana - Math on Monday")

	_, _, err = runCLI(t, "generate", "-f", path, "--strict")
	assert.ErrorIs(t, err, errUnmetRequirements)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	path := writeFile(t, "request.json", requestJSON)

	_, _, err := runCLI(t, "generate", "-f", path, "--format", "xml")
	assert.ErrorContains(t, err, "unsupported format")

	bad := writeFile(t, "bad.json", `{"calendar":`)
	_, _, err = runCLI(t, "generate", "-f", bad)
	assert.ErrorContains(t, err, "decode bad.json")

	stored := writeFile(t, "stored.json", `{"usePeopleStore": true}`)
	_, _, err = runCLI(t, "generate", "-f", stored)
	assert.ErrorContains(t, err, "usePeopleStore")
}

func TestTokenRoundTrip(t *testing.T) {
	t.Setenv("JWT_SECRET", "cli-secret")
	t.Setenv("JWT_ISSUER", "")

	stdout, stderr, err := runCLI(t, "token", "--user", "u-1", "--email", "ops@example.com", "--role", "tutor", "--ttl", "10m")
	require.NoError(t, err)
	assert.Contains(t, stderr, "expires")

	claims, err := service.NewTokenService(service.TokenConfig{Secret: "cli-secret"}).ValidateToken(strings.TrimSpace(stdout))
	require.NoError(t, err)
	assert.Equal(t, "u-1", claims.UserID)
	assert.Equal(t, models.RoleTutor, claims.Role)
	assert.Equal(t, "ops@example.com", claims.Email)
}

func TestTokenUnknownRole(t *testing.T) {
	_, _, err := runCLI(t, "token", "--role", "owner")
	assert.ErrorContains(t, err, "unknown role")
}

func TestPeopleCheck(t *testing.T) {
	path := writeFile(t, "people.yaml", `Ana:
  blockedIntervals:
    - {day: Monday, start: "09:00", end: "10:00"}
  compatibleWith: [Ben]
Ben:
  blockedIntervals: []
  compatibleWith: []
`)
	stdout, _, err := runCLI(t, "people", "check", path)
	require.NoError(t, err)
	assert.Equal(t, "Ana: 1 blocked intervals, compatible with 1\nBen: 0 blocked intervals, compatible with 0\n", stdout)

	bad := writeFile(t, "people.json", `{"Ana": {"blockedIntervals": [{"day": "Monday", "start": "9am", "end": "10:00"}]}}`)
	_, _, err = runCLI(t, "people", "check", bad)
	assert.Error(t, err)
}

type failingCloser struct{ bytes.Buffer }

func (f *failingCloser) Close() error { return errors.New("disk full") }

func TestGenerateReportsOutputCloseFailure(t *testing.T) {
	path := writeFile(t, "request.json", requestJSON)
	sink := &failingCloser{}
	restore := createOutput
	createOutput = func(string) (io.WriteCloser, error) { return sink, nil }
	defer func() { createOutput = restore }()

	_, _, err := runCLI(t, "generate", "-f", path, "--out", "timetable.txt")
	assert.ErrorContains(t, err, "close output: disk full")
	assert.Contains(t, sink.String(), "DAY")

	createOutput = restore
	_, _, err = runCLI(t, "generate", "-f", path, "--out", filepath.Join(t.TempDir(), "missing", "t.txt"))
	assert.ErrorContains(t, err, "create output")
}
