package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDef(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0644))
}

func TestNew_IndexesDirectory(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "singleton.yaml", `
id: singleton
name: Singleton
description: single shared instance
tags: [creational]
`)
	writeDef(t, dir, "retry-queue.yml", `
id: retry-queue
name: Retry Queue
`)
	writeDef(t, dir, "README.md", "not a definition")

	c, err := New(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 2, c.Len())
	assert.True(t, c.Exists("singleton"))
	assert.True(t, c.Exists("retry-queue"))
	assert.False(t, c.Exists("README"))

	entry, ok := c.Get("singleton")
	require.True(t, ok)
	assert.Equal(t, "Singleton", entry.Name)
	assert.Equal(t, []string{"creational"}, entry.Tags)
}

func TestNew_MissingDirIsEmpty(t *testing.T) {
	c, err := New(filepath.Join(t.TempDir(), "absent"), nil)
	require.NoError(t, err)
	assert.Equal(t, 0, c.Len())
}

func TestNew_FilenameStemFallbackID(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "event-bus.yaml", `
name: Event Bus
`)

	c, err := New(dir, nil)
	require.NoError(t, err)

	assert.True(t, c.Exists("event-bus"))
}

func TestReload_SkipsMalformedFiles(t *testing.T) {
	dir := t.TempDir()
	writeDef(t, dir, "good.yaml", "id: good\n")
	writeDef(t, dir, "bad.yaml", "id: [unclosed\n")

	c, err := New(dir, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, c.Len())
	assert.True(t, c.Exists("good"))
}

func TestReload_PicksUpNewDefinitions(t *testing.T) {
	dir := t.TempDir()
	c, err := New(dir, nil)
	require.NoError(t, err)
	require.Equal(t, 0, c.Len())

	writeDef(t, dir, "late.yaml", "id: late\n")
	require.NoError(t, c.Reload())

	assert.True(t, c.Exists("late"))
}
