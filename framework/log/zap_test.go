/*
edbx - Exchange EDB extraction and PST synthesis toolkit.
Copyright © 2024 edbx contributors

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
GNU General Public License for more details.

You should have received a copy of the GNU General Public License
along with this program. If not, see <https://www.gnu.org/licenses/>.
*/

package log

import (
	"strings"
	"testing"
	"time"
)

func TestStdLoggerRoutesThroughZapCore(t *testing.T) {
	var got []string
	out := FuncOutput(func(_ time.Time, debug bool, msg string) {
		got = append(got, msg)
	}, func() error { return nil })

	l := Logger{Out: out, Name: "http"}
	l.StdLogger().Print("listener failed")

	if len(got) != 1 || !strings.Contains(got[0], "listener failed") {
		t.Fatalf("log output = %q", got)
	}
	if !strings.HasPrefix(got[0], "http: ") {
		t.Fatalf("expected logger name prefix, got %q", got[0])
	}
}

func TestZapCoreDebugGating(t *testing.T) {
	var got []string
	out := FuncOutput(func(_ time.Time, debug bool, msg string) {
		got = append(got, msg)
	}, func() error { return nil })

	l := Logger{Out: out}
	l.Zap().Debug("hidden")
	if len(got) != 0 {
		t.Fatalf("debug message leaked with Debug=false: %q", got)
	}

	l.Debug = true
	l.Zap().Debug("visible")
	if len(got) != 1 {
		t.Fatalf("expected debug message with Debug=true, got %q", got)
	}
}
