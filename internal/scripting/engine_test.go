package scripting

import (
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
)

func TestBuiltinPlantFormulas(t *testing.T) {
	e, err := NewEngine("", zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if got := e.PlantMaxStage(); got != 3 {
		t.Errorf("PlantMaxStage() = %d, want 3", got)
	}
	cases := []struct {
		stage int
		want  float64
	}{
		{0, 2000},
		{1, 3000},
		{2, 5000},
		{7, 5000},
	}
	for _, c := range cases {
		if got := e.PlantStageDuration(c.stage); got != c.want {
			t.Errorf("PlantStageDuration(%d) = %v, want %v", c.stage, got, c.want)
		}
	}
}

func TestScriptsDirOverrides(t *testing.T) {
	dir := t.TempDir()
	src := "function plant_max_stage() return 1 end\nfunction plant_stage_duration(s) return -5 end\n"
	if err := os.WriteFile(filepath.Join(dir, "fast.lua"), []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()

	if got := e.PlantMaxStage(); got != 1 {
		t.Errorf("PlantMaxStage() = %d, want 1", got)
	}
	if got := e.PlantStageDuration(0); got != 0 {
		t.Errorf("negative duration should clamp to 0, got %v", got)
	}
}

func TestMissingFunctionFallsBack(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "empty.lua"), []byte("x = 1\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	e, err := NewEngine(dir, zap.NewNop())
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	defer e.Close()
	if got := e.PlantMaxStage(); got != 0 {
		t.Errorf("PlantMaxStage() = %d, want 0", got)
	}
}

func TestBadScriptFails(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "bad.lua"), []byte("function (\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := NewEngine(dir, zap.NewNop()); err == nil {
		t.Error("expected a load error for invalid Lua")
	}
	if _, err := NewEngine(filepath.Join(dir, "nope"), zap.NewNop()); err == nil {
		t.Error("expected an error for a missing scripts dir")
	}
}
