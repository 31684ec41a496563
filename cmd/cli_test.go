package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Lumos-Labs-HQ/schoolseed/internal/export"
	"github.com/Lumos-Labs-HQ/schoolseed/internal/sqlgen"
)

var smallRoster = []string{
	"--years", "2",
	"--teachers", "3",
	"--classes", "2",
	"--students-per-class", "2",
	"--subjects", "2",
	"--rooms", "3",
	"--sessions-per-slot", "3",
	"--year", "2026",
}

func TestVersionCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, "version")
	require.NoError(t, err)
	assert.Equal(t, "schoolseed version "+Version+"\n", stdout)

	stdout, _, err = executeCLI(t, "--version")
	require.NoError(t, err)
	assert.Contains(t, stdout, Version)
}

func TestRootShowsBanner(t *testing.T) {
	stdout, _, err := executeCLI(t)
	require.NoError(t, err)
	assert.Contains(t, stdout, "S C H O O L S E E D")
	assert.Contains(t, stdout, "generate")
}

func TestGenerateWritesFileAndReport(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "data.sql")
	report := filepath.Join(dir, "report.yaml")

	args := append([]string{"generate", "--out", out, "--report", report, "--seed", "7", "--dialect", "sqlite"}, smallRoster...)
	stdout, _, err := executeCLI(t, args...)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Data generation completed successfully")
	assert.Contains(t, stdout, "seed: 7")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSuffix(string(data), "\n"), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "INSERT INTO years (name) VALUES ('2024'),('2025');", lines[0])
	for _, line := range lines {
		assert.True(t, strings.HasPrefix(line, "INSERT INTO "), line)
		assert.True(t, strings.HasSuffix(line, ";"), line)
	}

	r, err := export.ReadReport(report)
	require.NoError(t, err)
	assert.Equal(t, uint64(7), r.Seed)
	assert.Equal(t, "sqlite", r.Dialect)
	assert.Equal(t, out, r.Output)
	assert.Equal(t, len(lines), r.Statements)
	assert.Equal(t, 3, r.Tables["teachers"])
	assert.Equal(t, 4, r.Tables["students"])
	assert.Equal(t, 2*2*3*3, r.Sessions.Requested)
	assert.Equal(t, r.Tables["class_sessions"], r.Sessions.Accepted)
}

func TestGenerateIsReproducible(t *testing.T) {
	dir := t.TempDir()
	first := filepath.Join(dir, "a.sql")
	second := filepath.Join(dir, "b.sql")

	for _, out := range []string{first, second} {
		args := append([]string{"generate", "--out", out, "--seed", "99", "--batch", "4"}, smallRoster...)
		_, _, err := executeCLI(t, args...)
		require.NoError(t, err)
	}

	a, err := os.ReadFile(first)
	require.NoError(t, err)
	b, err := os.ReadFile(second)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
}

func TestGenerateDryRunWithSchema(t *testing.T) {
	dir := t.TempDir()
	out := filepath.Join(dir, "never.sql")

	args := append([]string{"generate", "--dry-run", "--with-schema", "--out", out, "--seed", "3", "--dialect", "mysql"}, smallRoster...)
	stdout, stderr, err := executeCLI(t, args...)
	require.NoError(t, err)

	assert.Contains(t, stdout, "CREATE TABLE IF NOT EXISTS `years`")
	assert.Contains(t, stdout, "INSERT INTO years (name) VALUES ('2024'),('2025');")
	assert.NotContains(t, stdout, "Data generation completed")
	assert.Contains(t, stderr, "Data generation completed")
	assert.NoFileExists(t, out)

	statements := sqlgen.SplitStatements(stdout)
	assert.Greater(t, len(statements), 9)
}

func TestGenerateFlagsOverrideConfigFile(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "schoolseed.config.json")
	out := filepath.Join(dir, "data.sql")
	report := filepath.Join(dir, "report.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{
  "output": "`+filepath.ToSlash(out)+`",
  "report": "`+filepath.ToSlash(report)+`",
  "seed": 5,
  "database": {"provider": "postgresql"},
  "roster": {"years": 1, "teachers": 2, "classes": 1, "students_per_class": 1, "subjects": 1, "rooms": 2},
  "scheduler": {"sessions_per_slot": 2, "year": 2026}
}`), 0644))

	_, _, err := executeCLI(t, "--config", cfgPath, "generate", "--teachers", "4")
	require.NoError(t, err)

	r, err := export.ReadReport(report)
	require.NoError(t, err)
	assert.Equal(t, uint64(5), r.Seed)
	assert.Equal(t, "postgresql", r.Dialect)
	assert.Equal(t, 4, r.Tables["teachers"])
	assert.Equal(t, 1, r.Tables["years"])
	assert.Equal(t, 1, r.Tables["students"])
	assert.FileExists(t, out)
}

func TestGenerateUsesConfiguredMarksRange(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "schoolseed.config.json")
	out := filepath.Join(dir, "data.sql")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`{"marks": {"min": 0, "max": 0, "coefficients": [1]}}`), 0644))

	args := append([]string{"--config", cfgPath, "generate", "--out", out, "--seed", "8"}, smallRoster...)
	_, _, err := executeCLI(t, args...)
	require.NoError(t, err)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	marks := 0
	for _, line := range strings.Split(string(data), "\n") {
		if strings.HasPrefix(line, "INSERT INTO marks ") {
			marks++
			assert.Contains(t, line, ", 0.0, 1.0);", line)
		}
	}
	assert.Equal(t, 8, marks)
}

func TestGenerateRejectsBadInput(t *testing.T) {
	dir := t.TempDir()

	_, _, err := executeCLI(t, "generate", "--out", filepath.Join(dir, "x.sql"), "--dialect", "oracle")
	assert.ErrorContains(t, err, "unsupported dialect")

	_, _, err = executeCLI(t, "generate", "--out", filepath.Join(dir, "x.sql"), "--overlap-room", "20", "--rooms", "5")
	assert.ErrorContains(t, err, "overlap_room_id")

	_, _, err = executeCLI(t, "--config", filepath.Join(dir, "missing.json"), "generate")
	assert.ErrorContains(t, err, "failed to read config")
}

func TestSchemaCommand(t *testing.T) {
	stdout, _, err := executeCLI(t, "schema", "--dialect", "sqlite")
	require.NoError(t, err)
	assert.Contains(t, stdout, `CREATE TABLE IF NOT EXISTS "years"`)
	assert.Contains(t, stdout, `FOREIGN KEY ("session_id") REFERENCES "class_sessions"("id")`)
	assert.Less(t, strings.Index(stdout, `"teachers"`), strings.Index(stdout, `"modules"`))

	out := filepath.Join(t.TempDir(), "db", "schema.sql")
	stdout, _, err = executeCLI(t, "schema", "--dialect", "mysql", "--out", out)
	require.NoError(t, err)
	assert.Contains(t, stdout, "9 tables")

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(data), "ENGINE=InnoDB")
}

func TestInitCommand(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("DATABASE_URL=x"), 0644))

	stdout, _, err := executeCLI(t, "init", "--sqlite", "--dir", dir)
	require.NoError(t, err)
	assert.Contains(t, stdout, "Initialized schoolseed for sqlite")

	data, err := os.ReadFile(filepath.Join(dir, "schoolseed.config.json"))
	require.NoError(t, err)
	assert.Contains(t, string(data), `"provider": "sqlite"`)

	env, err := os.ReadFile(filepath.Join(dir, ".env"))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(env), "DATABASE_URL=x\n"))
	assert.Contains(t, string(env), "SCHOOLSEED_SEED")

	_, _, err = executeCLI(t, "init", "--dir", dir)
	assert.ErrorContains(t, err, "already exists")

	_, _, err = executeCLI(t, "init", "--sqlite", "--mysql", "--dir", t.TempDir())
	assert.ErrorContains(t, err, "only one database type")
}

func TestHandleEnvFileIsIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, handleEnvFile(path))
	require.NoError(t, handleEnvFile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, envTemplate, string(data))
}

func executeCLI(t *testing.T, args ...string) (string, string, error) {
	t.Helper()

	root := newRootCmd()
	stdout := &bytes.Buffer{}
	stderr := &bytes.Buffer{}
	root.SetOut(stdout)
	root.SetErr(stderr)
	root.SetArgs(args)

	err := root.Execute()
	return stdout.String(), stderr.String(), err
}
