package data

import (
	_ "embed"
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

//go:embed defaults/spawn_list.yaml
var defaultSpawnList []byte

// ErrUnknownKind is returned when a spawn entry names a kind that the kinds
// table does not define.
var ErrUnknownKind = errors.New("unknown entity kind")

// KindTemplate holds static data for an entity kind.
type KindTemplate struct {
	Name   string  `yaml:"name"`
	Speed  float32 `yaml:"speed"`  // mover progress per simulated unit
	Brain  bool    `yaml:"brain"`  // random walk
	Plants bool    `yaml:"plants"` // eligible for automatic plant requests
}

// SpawnEntry defines where and how many entities of a kind to create.
type SpawnEntry struct {
	Kind    string `yaml:"kind"`
	X       int32  `yaml:"x"`
	Y       int32  `yaml:"y"`
	Count   int    `yaml:"count"`
	RandomX int32  `yaml:"randomx"` // spread around X, +/-
	RandomY int32  `yaml:"randomy"`
}

type spawnListFile struct {
	Kinds  []KindTemplate `yaml:"kinds"`
	Spawns []SpawnEntry   `yaml:"spawns"`
}

// SpawnList is a validated spawn list.
type SpawnList struct {
	kinds  map[string]*KindTemplate
	order  []string
	Spawns []SpawnEntry
}

// LoadSpawnList loads a spawn list from a YAML file. An empty path loads the
// built-in default.
func LoadSpawnList(path string) (*SpawnList, error) {
	raw := defaultSpawnList
	if path != "" {
		var err error
		raw, err = os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read spawn_list: %w", err)
		}
	}
	return ParseSpawnList(raw)
}

// ParseSpawnList decodes and validates spawn list YAML.
func ParseSpawnList(raw []byte) (*SpawnList, error) {
	var f spawnListFile
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("parse spawn_list: %w", err)
	}
	l := &SpawnList{kinds: make(map[string]*KindTemplate, len(f.Kinds))}
	for i := range f.Kinds {
		k := &f.Kinds[i]
		if k.Name == "" {
			return nil, fmt.Errorf("spawn_list: kind #%d has no name", i)
		}
		if k.Speed < 0 {
			return nil, fmt.Errorf("spawn_list: kind %q has negative speed", k.Name)
		}
		if _, dup := l.kinds[k.Name]; dup {
			return nil, fmt.Errorf("spawn_list: kind %q defined twice", k.Name)
		}
		l.kinds[k.Name] = k
		l.order = append(l.order, k.Name)
	}
	for i, s := range f.Spawns {
		if _, ok := l.kinds[s.Kind]; !ok {
			return nil, fmt.Errorf("spawn_list: spawn #%d: %w %q", i, ErrUnknownKind, s.Kind)
		}
		if s.Count < 0 || s.RandomX < 0 || s.RandomY < 0 {
			return nil, fmt.Errorf("spawn_list: spawn #%d: negative count or spread", i)
		}
		if s.Count == 0 {
			f.Spawns[i].Count = 1
		}
	}
	l.Spawns = f.Spawns
	return l, nil
}

// Kind returns a kind template by name, or nil if not found.
func (l *SpawnList) Kind(name string) *KindTemplate {
	return l.kinds[name]
}

// Kinds returns the kind names in file order.
func (l *SpawnList) Kinds() []string {
	return l.order
}

// Total returns the number of entities the list creates.
func (l *SpawnList) Total() int {
	n := 0
	for _, s := range l.Spawns {
		n += s.Count
	}
	return n
}
