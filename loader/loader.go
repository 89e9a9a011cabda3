package loader

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	lua "github.com/yuin/gopher-lua"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/nathoo/cyoa/engine/state"
	"github.com/nathoo/cyoa/types"
)

// document is the shape of a YAML or JSON content file. Any of the three
// sections may be omitted.
type document struct {
	Game    *types.GameDef `yaml:"game"`
	Scenes  []types.Scene  `yaml:"scenes"`
	Actions []types.Action `yaml:"actions"`
}

// Load reads every content file in dir, compiles the definitions, validates
// them and returns the immutable Catalog. Warnings are logged; a nil logger
// discards them.
func Load(dir string, log *zap.Logger) (*state.Catalog, error) {
	c, warnings, err := Inspect(dir)
	if log != nil {
		for _, w := range warnings {
			log.Warn("content warning", zap.String("dir", dir), zap.String("warning", w))
		}
	}
	return c, err
}

// Inspect is Load without logging: it returns the catalog together with
// the validation warnings. On validation failure the error is a
// *ValidationError.
func Inspect(dir string) (*state.Catalog, []string, error) {
	files, err := contentFiles(dir)
	if err != nil {
		return nil, nil, err
	}

	coll := &collector{}
	var luaFiles []string
	for _, f := range files {
		if filepath.Ext(f) == ".lua" {
			luaFiles = append(luaFiles, f)
			continue
		}
		coll.file = f
		if err := loadDocument(filepath.Join(dir, f), coll); err != nil {
			return nil, nil, fmt.Errorf("decoding %s: %w", f, err)
		}
	}
	if len(luaFiles) > 0 {
		if err := runLua(dir, luaFiles, coll); err != nil {
			return nil, nil, err
		}
	}

	c, dups, err := compile(coll)
	if err != nil {
		return nil, nil, fmt.Errorf("compiling game data: %w", err)
	}

	ve := validate(c)
	ve.Errors = append(dups, ve.Errors...)
	if len(ve.Errors) > 0 {
		return nil, ve.Warnings, ve
	}
	return c, ve.Warnings, nil
}

// contentFiles lists the .lua, .yaml, .yml and .json files in dir, with
// game.* first and the rest alphabetical.
func contentFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading game directory %s: %w", dir, err)
	}

	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".lua", ".yaml", ".yml", ".json":
			files = append(files, e.Name())
		}
	}
	if len(files) == 0 {
		return nil, fmt.Errorf("no content files (.lua, .yaml, .json) found in %s", dir)
	}
	return sortedContentFiles(files), nil
}

// sortedContentFiles returns files with game.* first and the rest sorted
// alphabetically.
func sortedContentFiles(files []string) []string {
	sort.Slice(files, func(i, j int) bool {
		gi, gj := isGameFile(files[i]), isGameFile(files[j])
		if gi != gj {
			return gi
		}
		return files[i] < files[j]
	})
	return files
}

func isGameFile(name string) bool {
	return strings.TrimSuffix(name, filepath.Ext(name)) == "game"
}

// loadDocument decodes one YAML or JSON file. A YAML file may hold several
// documents separated by "---". Unknown fields are errors.
func loadDocument(path string, coll *collector) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	for {
		var doc document
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
		if doc.Game != nil {
			coll.addGame(*doc.Game)
		}
		for _, s := range doc.Scenes {
			coll.addScene(s)
		}
		for _, a := range doc.Actions {
			coll.addAction(a)
		}
	}
}

// runLua executes the Lua files in one sandboxed VM.
func runLua(dir string, files []string, coll *collector) error {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	defer L.Close()

	// Open safe libs only.
	openSafeLibs(L)

	// Sandbox: remove dangerous globals.
	sandbox(L)

	registerAPI(L, coll)

	for _, f := range files {
		coll.file = f
		if err := L.DoFile(filepath.Join(dir, f)); err != nil {
			return fmt.Errorf("executing %s: %w", f, err)
		}
	}
	return nil
}

// openSafeLibs opens only the safe subset of Lua standard libraries.
func openSafeLibs(L *lua.LState) {
	// Base library (print, type, tostring, tonumber, pairs, ipairs, etc.)
	lua.OpenBase(L)
	// Table library (table.insert, table.sort, etc.)
	lua.OpenTable(L)
	// String library (string.format, string.sub, etc.)
	lua.OpenString(L)
	// Math library (math.floor, math.max, etc.)
	lua.OpenMath(L)
}

// sandbox removes dangerous globals and functions.
func sandbox(L *lua.LState) {
	dangerous := []string{
		"dofile", "loadfile", "load", "loadstring",
		"rawset", "rawget", "rawequal",
		"collectgarbage",
	}
	for _, name := range dangerous {
		L.SetGlobal(name, lua.LNil)
	}

	// Content must not touch the engine's random stream.
	if tbl, ok := L.GetGlobal("math").(*lua.LTable); ok {
		tbl.RawSetString("random", lua.LNil)
		tbl.RawSetString("randomseed", lua.LNil)
	}
}
