package validator

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aetherlight/readygate/internal/engine"
)

func TestValidate_FindsGoTests(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "internal", "store"), 0755))
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "internal", "store", "store_test.go"), []byte("package store\n"), 0644))

	v := New()
	report, err := v.Validate(context.Background(), &engine.Context{
		TaskID:     "PROTO-001",
		WorkingDir: dir,
	})

	require.NoError(t, err)
	assert.True(t, report.Valid)
	assert.Empty(t, report.Errors)
}

func TestValidate_FindsTypescriptSpecs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "app.spec.ts"), []byte("describe()\n"), 0644))

	v := New()
	report, err := v.Validate(context.Background(), &engine.Context{WorkingDir: dir})

	require.NoError(t, err)
	assert.True(t, report.Valid)
}

func TestValidate_NoTestFiles(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "main.go"), []byte("package main\n"), 0644))

	v := New()
	report, err := v.Validate(context.Background(), &engine.Context{WorkingDir: dir})

	require.NoError(t, err)
	assert.False(t, report.Valid)
	require.NotEmpty(t, report.Errors)
	assert.Contains(t, report.Errors[0], "no test files found")
}

func TestValidate_TrustsContextWithoutDir(t *testing.T) {
	v := New()

	report, err := v.Validate(context.Background(), &engine.Context{TestFilesExist: true})
	require.NoError(t, err)
	assert.True(t, report.Valid)
	require.NotEmpty(t, report.Warnings)
	assert.Contains(t, report.Warnings[0], "not verified on disk")

	report, err = v.Validate(context.Background(), &engine.Context{TestFilesExist: false})
	require.NoError(t, err)
	assert.False(t, report.Valid)
	assert.NotEmpty(t, report.Errors)
}

func TestValidate_MissingWorkingDir(t *testing.T) {
	v := New()

	_, err := v.Validate(context.Background(), &engine.Context{
		WorkingDir: filepath.Join(t.TempDir(), "does-not-exist"),
	})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "working directory unavailable")
}

func TestValidate_CustomGlobs(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(
		filepath.Join(dir, "check.bats"), []byte("@test\n"), 0644))

	v := NewWithGlobs([]string{"**/*.bats"})
	report, err := v.Validate(context.Background(), &engine.Context{WorkingDir: dir})

	require.NoError(t, err)
	assert.True(t, report.Valid)
}
