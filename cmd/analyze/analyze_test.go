/*
Copyright © 2026 Benny Powers <web@bennypowers.com>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <http://www.gnu.org/licenses/>.
*/

package analyze

import (
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"driftscan.dev/driftscan/config"
	"driftscan.dev/driftscan/internal/mapfs"
)

func TestLoadConfigDefaultsWithoutFile(t *testing.T) {
	mfs := mapfs.New()
	viper.Set("config", "")
	t.Cleanup(func() { viper.Set("config", "") })

	cfg, err := loadConfig(mfs, "/workspace")
	require.NoError(t, err)
	assert.Equal(t, config.Defaults().PackagePatterns, cfg.PackagePatterns)
	assert.True(t, cfg.CacheEnabled())
}

func TestLoadConfigDiscoversWorkspaceFile(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/workspace/driftscan.yaml", "minSeverity: error\nconcurrency: 2\n", 0o644)
	viper.Set("config", "")
	t.Cleanup(func() { viper.Set("config", "") })

	cfg, err := loadConfig(mfs, "/workspace")
	require.NoError(t, err)
	assert.Equal(t, "error", cfg.MinSeverity)
	assert.Equal(t, 2, cfg.Concurrency)
}

func TestLoadConfigExplicitPathWins(t *testing.T) {
	mfs := mapfs.New()
	mfs.AddFile("/workspace/driftscan.yaml", "minSeverity: error\n", 0o644)
	mfs.AddFile("/custom/config.yaml", "minSeverity: critical\n", 0o644)
	viper.Set("config", "/custom/config.yaml")
	t.Cleanup(func() { viper.Set("config", "") })

	cfg, err := loadConfig(mfs, "/workspace")
	require.NoError(t, err)
	assert.Equal(t, "critical", cfg.MinSeverity)
}

func TestApplyFlagOverrides(t *testing.T) {
	require.NoError(t, Cmd.Flags().Set("min-severity", "critical"))
	require.NoError(t, Cmd.Flags().Set("no-cache", "true"))
	require.NoError(t, Cmd.Flags().Set("concurrency", "8"))
	require.NoError(t, Cmd.Flags().Set("category", "dependency,performance"))
	t.Cleanup(func() {
		_ = Cmd.Flags().Set("min-severity", "")
		_ = Cmd.Flags().Set("no-cache", "false")
		_ = Cmd.Flags().Set("concurrency", "0")
		_ = Cmd.Flags().Set("category", "")
	})

	cfg := config.Defaults()
	applyFlagOverrides(Cmd, &cfg)

	assert.Equal(t, "critical", cfg.MinSeverity)
	assert.False(t, cfg.CacheEnabled())
	assert.Equal(t, 8, cfg.Concurrency)
	assert.Equal(t, []string{"dependency", "performance"}, cfg.Categories)
}
