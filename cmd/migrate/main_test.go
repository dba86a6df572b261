package main

import (
	"io/fs"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appmigrations "github.com/wolfman30/prisoner-profile/migrations"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		args    []string
		command string
		n       int
		wantErr bool
	}{
		{args: nil, command: "up"},
		{args: []string{"up"}, command: "up"},
		{args: []string{"down", "1"}, command: "down", n: 1},
		{args: []string{"force", "2"}, command: "force", n: 2},
		{args: []string{"down", "0"}, wantErr: true},
		{args: []string{"force"}, wantErr: true},
		{args: []string{"drop"}, wantErr: true},
	}
	for _, tt := range tests {
		command, n, err := parseArgs(tt.args)
		if tt.wantErr {
			assert.Error(t, err, "args %v", tt.args)
			continue
		}
		require.NoError(t, err, "args %v", tt.args)
		assert.Equal(t, tt.command, command)
		assert.Equal(t, tt.n, n)
	}
}

func TestRunRequiresDatabaseURL(t *testing.T) {
	assert.EqualError(t, run("  ", nil), "DATABASE_URL is required")
}

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	ups, err := fs.Glob(appmigrations.FS, "*.up.sql")
	require.NoError(t, err)
	downs, err := fs.Glob(appmigrations.FS, "*.down.sql")
	require.NoError(t, err)
	assert.NotEmpty(t, ups)
	assert.Len(t, downs, len(ups))
}
