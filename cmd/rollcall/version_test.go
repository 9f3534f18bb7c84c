package main

import (
	"bytes"
	"encoding/json"
	"runtime"
	"strings"
	"testing"

	"rollcall-hq/attendance/pkg/telemetry/health"
)

func TestVersionCommand(t *testing.T) {
	origVersion, origCommit := Version, GitCommit
	defer func() { Version, GitCommit = origVersion, origCommit }()

	Version = "0.1.0-test"
	GitCommit = "abc123"

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	out := buf.String()
	for _, want := range []string{"Rollcall 0.1.0-test", "Git Commit: abc123", runtime.Version()} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestVersionCommand_JSON(t *testing.T) {
	versionFlags.output = "json"
	defer func() { versionFlags.output = "text" }()

	var buf bytes.Buffer
	versionCmd.SetOut(&buf)
	defer versionCmd.SetOut(nil)
	if err := versionCmd.RunE(versionCmd, nil); err != nil {
		t.Fatalf("version failed: %v", err)
	}

	var info health.VersionInfo
	if err := json.Unmarshal(buf.Bytes(), &info); err != nil {
		t.Fatalf("output is not JSON: %v\n%s", err, buf.String())
	}
	if info.Version != Version || info.GoVersion != runtime.Version() {
		t.Errorf("unexpected version info %+v", info)
	}
}

func TestCommandsRegistered(t *testing.T) {
	want := map[string]bool{"run": false, "version": false, "records": false, "sweep": false, "store": false, "roster": false}
	for _, c := range rootCmd.Commands() {
		if _, ok := want[c.Name()]; ok {
			want[c.Name()] = true
		}
	}
	for name, found := range want {
		if !found {
			t.Errorf("command %q not registered", name)
		}
	}
}
