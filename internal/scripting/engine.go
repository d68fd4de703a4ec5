package scripting

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
)

//go:embed scripts/*.lua
var builtin embed.FS

// Engine wraps a single gopher-lua VM for simulation formulas.
// Single-goroutine access only (simulation loop).
type Engine struct {
	vm  *lua.LState
	log *zap.Logger
}

// NewEngine creates a Lua engine. Scripts come from scriptsDir, or from the
// embedded defaults when scriptsDir is empty.
func NewEngine(scriptsDir string, log *zap.Logger) (*Engine, error) {
	vm := lua.NewState(lua.Options{
		SkipOpenLibs: false,
	})

	// Set API version global
	vm.SetGlobal("API_VERSION", lua.LNumber(1))

	e := &Engine{vm: vm, log: log}

	var err error
	if scriptsDir == "" {
		err = e.loadEmbedded()
	} else {
		err = e.loadDir(scriptsDir)
	}
	if err != nil {
		vm.Close()
		return nil, fmt.Errorf("load scripts: %w", err)
	}
	return e, nil
}

// loadDir loads all .lua files in a directory.
func (e *Engine) loadDir(dir string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return err
	}
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".lua" {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		if err := e.vm.DoFile(path); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded lua script", zap.String("file", path))
	}
	return nil
}

func (e *Engine) loadEmbedded() error {
	return fs.WalkDir(builtin, "scripts", func(path string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return err
		}
		src, err := builtin.ReadFile(path)
		if err != nil {
			return err
		}
		if err := e.vm.DoString(string(src)); err != nil {
			return fmt.Errorf("load %s: %w", path, err)
		}
		e.log.Debug("loaded builtin lua script", zap.String("file", path))
		return nil
	})
}

// --- Plant Bridge ---

// PlantMaxStage calls Lua plant_max_stage(). A plant at this stage is grown.
func (e *Engine) PlantMaxStage() int {
	return int(e.callNumberFunc("plant_max_stage", 0))
}

// PlantStageDuration calls Lua plant_stage_duration(stage).
// Returns simulated units spent in stage; never negative.
func (e *Engine) PlantStageDuration(stage int) float64 {
	d := e.callNumberFunc("plant_stage_duration", 0, stage)
	if d < 0 {
		return 0
	}
	return d
}

// --- Lua helpers ---

// callNumberFunc calls a Lua function with int args and returns a number
// result, or def when the function is missing or fails.
func (e *Engine) callNumberFunc(name string, def float64, args ...int) float64 {
	fn := e.vm.GetGlobal(name)
	if fn == lua.LNil {
		e.log.Error("lua function not found", zap.String("name", name))
		return def
	}

	lArgs := make([]lua.LValue, len(args))
	for i, a := range args {
		lArgs[i] = lua.LNumber(a)
	}

	if err := e.vm.CallByParam(lua.P{
		Fn:      fn,
		NRet:    1,
		Protect: true,
	}, lArgs...); err != nil {
		e.log.Error("lua call error", zap.String("func", name), zap.Error(err))
		return def
	}

	result := e.vm.Get(-1)
	e.vm.Pop(1)
	n, ok := result.(lua.LNumber)
	if !ok {
		e.log.Error("lua function returned non-number", zap.String("func", name))
		return def
	}
	return float64(n)
}

// Close shuts down the Lua VM.
func (e *Engine) Close() {
	e.vm.Close()
}
