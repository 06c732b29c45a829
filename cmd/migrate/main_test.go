package main

import (
	"strings"
	"testing"
	"testing/fstest"

	"github.com/dvloznov/seller-analytics/migrations"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationFilenamePattern(t *testing.T) {
	tests := []struct {
		filename string
		valid    bool
		version  string
		name     string
	}{
		{"0001_create_sellers.sql", true, "0001", "create_sellers"},
		{"001_invalid.sql", false, "", ""},
		{"0001_test", false, "", ""},
		{"0001.sql", false, "", ""},
		{"invalid_0001_test.sql", false, "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.filename, func(t *testing.T) {
			m := migrationPattern.FindStringSubmatch(tt.filename)
			if !tt.valid {
				assert.Nil(t, m)
				return
			}
			require.Len(t, m, 3)
			assert.Equal(t, tt.version, m[1])
			assert.Equal(t, tt.name, m[2])
		})
	}
}

func TestReadMigrations_SortsAndSubstitutes(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql":  {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.b` (id INT64);")},
		"m/0001_a.sql":  {Data: []byte("CREATE TABLE `{{PROJECT_ID}}.{{DATASET_ID}}.a` (id INT64);")},
		"m/README.md":   {Data: []byte("ignored")},
		"m/nested/x.sq": {Data: []byte("ignored")},
	}

	got, err := readMigrations(fsys, "m", "proj", "sales", zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, 1, got[0].Version)
	assert.Equal(t, "a", got[0].Name)
	assert.Equal(t, "CREATE TABLE `proj.sales.a` (id INT64);", got[0].SQL)
	assert.Equal(t, 2, got[1].Version)
	assert.Len(t, got[0].Checksum, 64)

	other, err := readMigrations(fsys, "m", "other", "prod", zerolog.Nop())
	require.NoError(t, err)
	assert.Equal(t, got[0].Checksum, other[0].Checksum, "checksum ignores placeholder values")
}

func TestReadMigrations_DuplicateVersion(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0001_a.sql": {Data: []byte("SELECT 1;")},
		"m/0001_b.sql": {Data: []byte("SELECT 2;")},
	}
	_, err := readMigrations(fsys, "m", "p", "d", zerolog.Nop())
	assert.Error(t, err)
}

func TestEmbeddedMigrations(t *testing.T) {
	got, err := readMigrations(migrations.BigQuery, migrations.BigQueryDir, "proj", "sales", zerolog.Nop())
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "create_sellers", got[0].Name)
	assert.Equal(t, "create_transactions", got[1].Name)
	for _, m := range got {
		assert.NotContains(t, m.SQL, "{{")
		assert.True(t, strings.Contains(m.SQL, "`proj.sales."), m.Filename)
	}
}

func TestPlanMigrations(t *testing.T) {
	all := []Migration{
		{Version: 1, Filename: "0001_a.sql", Checksum: "aaa"},
		{Version: 2, Filename: "0002_b.sql", Checksum: "bbb"},
		{Version: 3, Filename: "0003_c.sql", Checksum: "ccc"},
	}
	applied := []AppliedMigration{
		{Version: 1, Checksum: "aaa"},
		{Version: 2, Checksum: "changed"},
	}

	todo := planMigrations(all, applied, zerolog.Nop())
	require.Len(t, todo, 1)
	assert.Equal(t, 3, todo[0].Version)
}
