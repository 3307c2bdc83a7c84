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

// Package analyze provides the analyze command for driftscan: it runs the
// full scan → parse → graph → analyze pipeline over a workspace and prints
// a plain issue listing and summary. Report formatting beyond this plain
// listing (console/JSON/Markdown/HTML) is an external collaborator's job
// per spec.md §1, not this command's.
package analyze

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"driftscan.dev/driftscan/analyzers"
	"driftscan.dev/driftscan/config"
	"driftscan.dev/driftscan/fs"
	"driftscan.dev/driftscan/issue"
	"driftscan.dev/driftscan/orchestrator"
)

// Cmd is the analyze cobra command.
var Cmd = &cobra.Command{
	Use:   "analyze [workspace]",
	Short: "Analyze a workspace for configuration drift and dependency issues",
	Long: `Scan a monorepo workspace, build its inter-module dependency graph, and
run the built-in analyzer suite: configuration drift, unused and duplicated
dependencies, circular imports, architectural layer violations, and
bundle-performance hazards.`,
	Example: `  # Analyze the workspace rooted at the current directory
  driftscan analyze

  # Analyze a specific workspace with a config file
  driftscan analyze ./monorepo --config driftscan.yaml

  # Only report errors and above, skip the cache
  driftscan analyze --min-severity error --no-cache

  # Emit machine-readable JSON instead of the plain text listing
  driftscan analyze --format json`,
	Args: cobra.MaximumNArgs(1),
	RunE: run,
}

func init() {
	Cmd.Flags().String("config", "", "Path to a YAML configuration file")
	Cmd.Flags().String("min-severity", "", "Minimum severity to report (info, warning, error, critical)")
	Cmd.Flags().StringSlice("category", nil, "Restrict output to these issue categories")
	Cmd.Flags().Bool("no-cache", false, "Disable the incremental analysis cache for this run")
	Cmd.Flags().Int("concurrency", 0, "Analyzer concurrency limit (default: config value, else 4)")
	Cmd.Flags().StringP("format", "f", "text", "Output format (text, json)")

	_ = viper.BindPFlag("config", Cmd.Flags().Lookup("config"))
	_ = viper.BindPFlag("min-severity", Cmd.Flags().Lookup("min-severity"))
	_ = viper.BindPFlag("category", Cmd.Flags().Lookup("category"))
	_ = viper.BindPFlag("no-cache", Cmd.Flags().Lookup("no-cache"))
	_ = viper.BindPFlag("concurrency", Cmd.Flags().Lookup("concurrency"))
}

func run(cmd *cobra.Command, args []string) error {
	root := viper.GetString("package")
	if len(args) == 1 {
		root = args[0]
	}
	absRoot, err := filepath.Abs(root)
	if err != nil {
		return fmt.Errorf("invalid workspace directory: %w", err)
	}

	osfs := fs.NewOSFileSystem()
	cfg, err := loadConfig(osfs, absRoot)
	if err != nil {
		return fmt.Errorf("loading configuration: %w", err)
	}
	applyFlagOverrides(cmd, cfg)

	registry := analyzers.NewDefaultRegistry()
	o := orchestrator.New(osfs, registry)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("error reading format flag: %w", err)
	}

	var progress orchestrator.ProgressFunc
	if format != "json" {
		progress = func(e orchestrator.ProgressEvent) {
			if e.Current != "" {
				fmt.Fprintf(os.Stderr, "[%s] %s (%d/%d)\n", e.Phase, e.Current, e.Processed, e.Total)
			}
		}
	}

	result, err := o.Run(context.Background(), absRoot, cfg, progress)
	if err != nil {
		var orchErr *orchestrator.Error
		if errors.As(err, &orchErr) {
			return fmt.Errorf("%s: %w", orchErr.Kind, orchErr.Err)
		}
		return err
	}

	switch format {
	case "json":
		if err := printJSON(result); err != nil {
			return err
		}
	default:
		printText(result)
	}

	for _, i := range result.Issues {
		if i.Severity >= issue.Error {
			os.Exit(1)
		}
	}
	return nil
}

func loadConfig(osfs fs.FileSystem, workspacePath string) (*config.Config, error) {
	path := viper.GetString("config")
	if path == "" {
		candidate := filepath.Join(workspacePath, "driftscan.yaml")
		if osfs.Exists(candidate) {
			path = candidate
		}
	}
	if path == "" {
		d := config.Defaults()
		return &d, nil
	}
	return config.Load(osfs, path)
}

func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	if v, _ := cmd.Flags().GetString("min-severity"); v != "" {
		cfg.MinSeverity = v
	}
	if v, _ := cmd.Flags().GetStringSlice("category"); len(v) > 0 {
		cfg.Categories = v
	}
	if noCache, _ := cmd.Flags().GetBool("no-cache"); noCache {
		disabled := false
		cfg.Cache = &disabled
	}
	if v, _ := cmd.Flags().GetInt("concurrency"); v > 0 {
		cfg.Concurrency = v
	}
}

func printJSON(result *orchestrator.Result) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(result)
}

func printText(result *orchestrator.Result) {
	for _, i := range result.Issues {
		loc := i.Location.FilePath
		if i.Location.Line > 0 {
			loc = fmt.Sprintf("%s:%d", loc, i.Location.Line)
		}
		fmt.Printf("%s [%s/%s] %s: %s\n", loc, i.Severity, i.Category, i.ID, i.Title)
		if i.Suggestion != "" {
			fmt.Printf("    suggestion: %s\n", i.Suggestion)
		}
	}
	s := result.Summary
	fmt.Printf(
		"\n%d issue(s) across %d package(s), %d file(s) analyzed, %dms\n",
		s.TotalIssues, s.PackagesAnalyzed, s.FilesAnalyzed, s.DurationMs,
	)
}
