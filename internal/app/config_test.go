package app

import (
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	c := NewConfig()
	if c.Window.Scale != 3 {
		t.Errorf("default scale = %d, want 3", c.Window.Scale)
	}
	if c.Video.Backend != "ebitengine" {
		t.Errorf("default backend = %q", c.Video.Backend)
	}
	if c.Audio.SampleRate != 32000 {
		t.Errorf("default sample rate = %d, want 32000", c.Audio.SampleRate)
	}
}

func TestMissingFileUsesDefaults(t *testing.T) {
	c, err := LoadConfig(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("missing file should not error: %v", err)
	}
	if c.Window.Scale != 3 {
		t.Error("defaults not applied")
	}
}

func TestConfigRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	c, err := LoadConfig(path)
	if err != nil {
		t.Fatal(err)
	}
	c.Window.Scale = 5
	c.Emulation.LoopDetection = true
	if err := c.Save(); err != nil {
		t.Fatalf("save: %v", err)
	}

	c2, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if c2.Window.Scale != 5 || !c2.Emulation.LoopDetection {
		t.Error("round trip lost values")
	}
}

func TestBadJSONRejected(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Error("invalid JSON should error")
	}
}
