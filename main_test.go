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

package main

import "testing"

func TestRootCommandHasAnalyzeAndVersionSubcommands(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	if !names["analyze"] {
		t.Error("expected rootCmd to register the analyze subcommand")
	}
	if !names["version"] {
		t.Error("expected rootCmd to register the version subcommand")
	}
}

func TestRootCommandHasPackageFlag(t *testing.T) {
	flag := rootCmd.PersistentFlags().Lookup("package")
	if flag == nil {
		t.Fatal("expected rootCmd to declare a --package persistent flag")
	}
	if flag.DefValue != "." {
		t.Errorf("expected --package default %q, got %q", ".", flag.DefValue)
	}
}
