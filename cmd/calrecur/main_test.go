package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v2"
)

const standupYAML = `
id: standup
title: Standup
location: Room 4
start: 2024-01-01T09:00:00Z
end: 2024-01-01T09:30:00Z
rule:
  frequency: WEEKLY
  by_week_day: [MO, WE, FR]
exceptions:
  - date: 2024-01-03
    type: DELETED
  - date: 2024-01-05
    type: MODIFIED
    patch:
      title: Standup (remote)
`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	app := newApp()
	app.Writer = &out
	app.ErrWriter = &errOut
	err := app.Run(append([]string{"calrecur", "--config", filepath.Join(t.TempDir(), "none.yaml")}, args...))
	return out.String(), err
}

func TestExpand(t *testing.T) {
	dir := t.TempDir()
	series := writeFile(t, dir, "standup.yaml", standupYAML)

	out, err := run(t, "expand", "--file", series, "--from", "2024-01-01", "--to", "2024-01-08")
	require.NoError(t, err)

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Standup: Weekly on Monday, Wednesday, Friday", lines[0])
	assert.Equal(t, "2024-01-01  09:00 - 09:30  Standup", lines[1])
	assert.Equal(t, "2024-01-05  09:00 - 09:30  Standup (remote)  [modified]", lines[2])
}

func TestValidate(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, dir, "good.yaml", standupYAML)

	out, err := run(t, "validate", "--file", good)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "valid: "))

	bad := writeFile(t, dir, "bad.yaml", strings.Replace(standupYAML, "by_week_day: [MO, WE, FR]", "by_month_day: [40]", 1))

	exitCode := 0
	saved := cli.OsExiter
	cli.OsExiter = func(code int) { exitCode = code }
	defer func() { cli.OsExiter = saved }()

	out, err = run(t, "validate", "--file", bad)
	assert.Error(t, err)
	assert.Equal(t, 2, exitCode)
	assert.Contains(t, out, "invalid: ")
}

func TestRemind(t *testing.T) {
	dir := t.TempDir()
	series := writeFile(t, dir, "standup.yaml", standupYAML)
	ctx := writeFile(t, dir, "ctx.yaml", `
now: 2024-01-01T06:00:00Z
weather: {condition: STORM, temperature_c: 18}
`)

	out, err := run(t, "remind", "--file", series, "--context", ctx, "--from", "2024-01-01", "--to", "2024-01-02")
	require.NoError(t, err)
	assert.Contains(t, out, "skip at 2024-01-01 08:15")
	assert.Contains(t, out, "45 minutes")
	assert.Contains(t, out, "storm")
}

func TestExportImport(t *testing.T) {
	dir := t.TempDir()
	series := writeFile(t, dir, "standup.yaml", standupYAML)

	ics, err := run(t, "export", "--file", series)
	require.NoError(t, err)
	assert.Contains(t, ics, "BEGIN:VCALENDAR")
	assert.Contains(t, ics, "RECURRENCE-ID")
	assert.Contains(t, ics, "EXDATE")

	icsPath := writeFile(t, dir, "standup.ics", ics)
	out, err := run(t, "import", "--file", icsPath)
	require.NoError(t, err)
	assert.Contains(t, out, "id: standup")
	assert.Contains(t, out, "type: DELETED")
	assert.Contains(t, out, "title: Standup (remote)")
}

func TestInitConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), "calrecur.yaml")

	app := newApp()
	var out bytes.Buffer
	app.Writer = &out
	require.NoError(t, app.Run([]string{"calrecur", "--config", path, "init-config"}))
	assert.FileExists(t, path)

	err := app.Run([]string{"calrecur", "--config", path, "init-config"})
	assert.Error(t, err)
}
