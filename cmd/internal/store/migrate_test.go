package store

import (
	"errors"
	"io/fs"
	"strings"
	"testing"

	"github.com/golang-migrate/migrate/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMigrate struct {
	upErr      error
	downErr    error
	stepsErr   error
	version    uint
	dirty      bool
	versionErr error
	forced     []int
	srcErr     error
	dbErr      error
}

func (f *fakeMigrate) Up() error       { return f.upErr }
func (f *fakeMigrate) Down() error     { return f.downErr }
func (f *fakeMigrate) Steps(int) error { return f.stepsErr }
func (f *fakeMigrate) Version() (uint, bool, error) {
	return f.version, f.dirty, f.versionErr
}
func (f *fakeMigrate) Force(v int) error {
	f.forced = append(f.forced, v)
	return nil
}
func (f *fakeMigrate) Close() (error, error) { return f.srcErr, f.dbErr }

func TestMigrator_NoChangeIsNotAnError(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{upErr: migrate.ErrNoChange, downErr: migrate.ErrNoChange, stepsErr: migrate.ErrNoChange}}

	assert.NoError(t, m.Up())
	assert.NoError(t, m.Down())
	assert.NoError(t, m.Steps(1))
}

func TestMigrator_WrapsFailures(t *testing.T) {
	boom := errors.New("boom")
	m := &Migrator{m: &fakeMigrate{upErr: boom, stepsErr: boom}}

	err := m.Up()
	require.Error(t, err)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, m.Steps(-1).Error(), "steps(-1)")
}

func TestMigrator_Version(t *testing.T) {
	m := &Migrator{m: &fakeMigrate{versionErr: migrate.ErrNilVersion}}
	v, dirty, err := m.Version()
	require.NoError(t, err)
	assert.Zero(t, v)
	assert.False(t, dirty)

	m = &Migrator{m: &fakeMigrate{version: 1, dirty: true}}
	v, dirty, err = m.Version()
	require.NoError(t, err)
	assert.Equal(t, uint(1), v)
	assert.True(t, dirty)
}

func TestMigrator_Force(t *testing.T) {
	fake := &fakeMigrate{}
	m := &Migrator{m: fake}

	require.Error(t, m.Force(-1))
	require.NoError(t, m.Force(1))
	assert.Equal(t, []int{1}, fake.forced)
}

func TestMigrator_CloseJoinsErrors(t *testing.T) {
	src, db := errors.New("src"), errors.New("db")
	m := &Migrator{m: &fakeMigrate{srcErr: src, dbErr: db}}

	err := m.Close()
	assert.ErrorIs(t, err, src)
	assert.ErrorIs(t, err, db)
}

func TestMigrateURL(t *testing.T) {
	cases := map[string]string{
		"postgres://u:p@h:5432/db":   "pgx5://u:p@h:5432/db",
		"postgresql://u:p@h:5432/db": "pgx5://u:p@h:5432/db",
		"pgx5://u:p@h:5432/db":       "pgx5://u:p@h:5432/db",
	}
	for in, want := range cases {
		assert.Equal(t, want, MigrateURL(in), in)
	}
}

func TestNewMigrator_EmptyURL(t *testing.T) {
	_, err := NewMigrator("  ")
	assert.Error(t, err)
}

func TestEmbeddedMigrations_Paired(t *testing.T) {
	entries, err := fs.ReadDir(migrationsFS, "migrations")
	require.NoError(t, err)
	require.NotEmpty(t, entries)

	ups, downs := 0, 0
	for _, e := range entries {
		switch {
		case strings.HasSuffix(e.Name(), ".up.sql"):
			ups++
		case strings.HasSuffix(e.Name(), ".down.sql"):
			downs++
		}
	}
	assert.Equal(t, ups, downs)
}

func TestEmbeddedMigrations_TargetDefaultSchema(t *testing.T) {
	raw, err := fs.ReadFile(migrationsFS, "migrations/000001_init.up.sql")
	require.NoError(t, err)
	sql := string(raw)

	assert.Contains(t, sql, "CREATE SCHEMA IF NOT EXISTS "+DefaultSchema+";")
	for _, table := range []string{"accounts", "preferences", "questionnaire_responses", "meal_history"} {
		assert.Contains(t, sql, "CREATE TABLE "+DefaultSchema+"."+table+" (", table)
	}
}
