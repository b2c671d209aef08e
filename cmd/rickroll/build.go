package main

import (
	"fmt"
	"os"
	"strings"

	"github.com/chazu/rickroll/cache"
	"github.com/chazu/rickroll/compiler"
	"github.com/chazu/rickroll/manifest"
	"github.com/chazu/rickroll/pkg/bytecode"
	"github.com/chazu/rickroll/pkg/lang"
)

type buildOptions struct {
	useCache    bool
	manifestDir string
}

// loadProgram produces a runnable program from a path: .rrbc files are
// deserialized directly, anything else is treated as source and compiled,
// consulting the compile cache when enabled.
func loadProgram(path string, opts buildOptions) (*bytecode.Program, *lang.Error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lang.Errorf(lang.IllegalArgumentError, 0, "Could not read %s: %v", path, err)
	}

	if strings.HasSuffix(path, ".rrbc") {
		prog, err := bytecode.Deserialize(data)
		if err != nil {
			return nil, lang.Errorf(lang.IllegalArgumentError, 0, "Invalid bytecode file %s: %v", path, err)
		}
		return prog, nil
	}

	if !opts.useCache {
		return compileSource(data)
	}

	store, err := openCache(opts.manifestDir)
	if err != nil {
		log.Errorf("compile cache unavailable: %v", err)
		return compileSource(data)
	}
	defer store.Close()

	hash := cache.SourceHash(data)
	if blob, ok, err := store.Get(hash); err == nil && ok {
		if prog, derr := bytecode.Deserialize(blob); derr == nil {
			log.Infof("compile cache hit for %s", path)
			return prog, nil
		}
		// A stale or corrupt entry falls through to a fresh compile.
	}

	prog, lerr := compileSource(data)
	if lerr != nil {
		return nil, lerr
	}
	if blob, err := prog.Serialize(); err == nil {
		if err := store.Put(hash, blob); err != nil {
			log.Errorf("writing compile cache: %v", err)
		}
	}
	return prog, nil
}

// compileSource runs the lexer and compiler over source text.
func compileSource(src []byte) (*bytecode.Program, *lang.Error) {
	stmts, err := compiler.NewLexer(string(src)).Lex()
	if err != nil {
		return nil, err
	}
	return compiler.Compile(stmts)
}

// openCache opens the compile cache at the manifest-configured path, or
// the default location.
func openCache(manifestDir string) (*cache.Store, error) {
	path := ""
	if m, err := loadManifest(manifestDir); err == nil && m != nil {
		if p, err := m.CachePath(); err == nil {
			path = p
		}
	}
	if path == "" {
		p, err := manifest.DefaultCachePath()
		if err != nil {
			return nil, err
		}
		path = p
	}
	return cache.Open(path)
}

// writeBytecode serializes a program to disk.
func writeBytecode(prog *bytecode.Program, path string) error {
	data, err := prog.Serialize()
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing %s: %w", path, err)
	}
	return nil
}
