package main

import (
	"path/filepath"
	"testing"

	"github.com/jerryscript-project/jerry-debugger-go/internal/config"
)

func TestServeCommandFlags(t *testing.T) {
	if len(serveCommand().Flags) == 0 {
		t.Errorf("serveCommand().Flags should never be nil or empty")
	}
}

func TestConfigFile(t *testing.T) {
	d := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", d)

	got := configFile()
	want := filepath.Join(d, config.ConfigDirName, config.ConfigFileName)
	if got.SourceURI() != want {
		t.Errorf("configFile() = %q, want %q", got.SourceURI(), want)
	}
}
