package data

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultSpawnList(t *testing.T) {
	l, err := LoadSpawnList("")
	if err != nil {
		t.Fatalf("LoadSpawnList: %v", err)
	}
	player := l.Kind("player")
	if player == nil || player.Speed != 0.001 || !player.Plants {
		t.Errorf("player = %+v", player)
	}
	hare := l.Kind("hare")
	if hare == nil || hare.Speed != 0.005 || !hare.Brain {
		t.Errorf("hare = %+v", hare)
	}
	if got := l.Total(); got != 13 {
		t.Errorf("Total() = %d, want 13", got)
	}
}

func TestParseSpawnListErrors(t *testing.T) {
	cases := []struct {
		name    string
		src     string
		unknown bool
	}{
		{"unknown kind", "kinds: [{name: a}]\nspawns: [{kind: b}]\n", true},
		{"duplicate kind", "kinds: [{name: a}, {name: a}]\n", false},
		{"nameless kind", "kinds: [{speed: 1}]\n", false},
		{"negative speed", "kinds: [{name: a, speed: -1}]\n", false},
		{"negative count", "kinds: [{name: a}]\nspawns: [{kind: a, count: -2}]\n", false},
		{"bad yaml", "kinds: [\n", false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			_, err := ParseSpawnList([]byte(c.src))
			if err == nil {
				t.Fatal("expected an error")
			}
			if got := errors.Is(err, ErrUnknownKind); got != c.unknown {
				t.Errorf("errors.Is(ErrUnknownKind) = %v, want %v (%v)", got, c.unknown, err)
			}
		})
	}
}

func TestLoadSpawnListFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "spawns.yaml")
	src := "kinds:\n  - name: mole\n    speed: 0.01\nspawns:\n  - kind: mole\n    x: 3\n    y: -4\n"
	if err := os.WriteFile(path, []byte(src), 0o644); err != nil {
		t.Fatal(err)
	}
	l, err := LoadSpawnList(path)
	if err != nil {
		t.Fatalf("LoadSpawnList: %v", err)
	}
	if len(l.Spawns) != 1 || l.Spawns[0].Count != 1 || l.Spawns[0].Y != -4 {
		t.Errorf("Spawns = %+v, want one mole at y=-4 with count defaulted to 1", l.Spawns)
	}
	if kinds := l.Kinds(); len(kinds) != 1 || kinds[0] != "mole" {
		t.Errorf("Kinds() = %v", kinds)
	}

	if _, err := LoadSpawnList(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected an error for a missing file")
	}
}
