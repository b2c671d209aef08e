// Rickroll CLI - compiles and runs Rickroll programs.
package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"

	"github.com/chazu/rickroll/manifest"
	"github.com/chazu/rickroll/vm"
)

var log = commonlog.GetLogger("rickroll")

func main() {
	verbose := flag.Bool("v", false, "Verbose output")
	interactive := flag.Bool("i", false, "Start interactive REPL")
	disasm := flag.Bool("disasm", false, "Print disassembled bytecode instead of running")
	output := flag.String("o", "", "Compile to a .rrbc bytecode file instead of running")
	useCache := flag.Bool("cache", false, "Use the compile cache")
	manifestDir := flag.String("manifest", "", "Project directory containing rickroll.toml")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: rickroll [options] [file]\n\n")
		fmt.Fprintf(os.Stderr, "Runs a Rickroll program from a .rr source file or a compiled .rrbc file.\n")
		fmt.Fprintf(os.Stderr, "With no file argument, the entry point of the rickroll.toml in the\n")
		fmt.Fprintf(os.Stderr, "current directory (or --manifest DIR) is used.\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  rickroll song.rr             # Compile and run\n")
		fmt.Fprintf(os.Stderr, "  rickroll -i                  # Start REPL\n")
		fmt.Fprintf(os.Stderr, "  rickroll -o song.rrbc song.rr  # Compile only\n")
		fmt.Fprintf(os.Stderr, "  rickroll --disasm song.rr    # Show bytecode listing\n")
		fmt.Fprintf(os.Stderr, "  rickroll --cache song.rr     # Reuse cached bytecode\n")
	}
	flag.Parse()

	verbosity := 0
	if *verbose {
		verbosity = 1
	}
	commonlog.Configure(verbosity, nil)

	if *interactive {
		if err := runREPL(); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	opts := buildOptions{
		useCache:    *useCache,
		manifestDir: *manifestDir,
	}

	path := flag.Arg(0)
	if path == "" {
		m, err := loadManifest(*manifestDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		if m == nil {
			flag.Usage()
			os.Exit(2)
		}
		path = m.EntryPath()
		if m.Cache.Enabled {
			opts.useCache = true
		}
		if *output == "" && !*disasm {
			log.Infof("running manifest entry %s", path)
		}
	}

	prog, lerr := loadProgram(path, opts)
	if lerr != nil {
		fmt.Fprintln(os.Stderr, lerr.Format())
		os.Exit(1)
	}

	if *disasm {
		fmt.Print(prog.Disassemble())
		return
	}

	if *output != "" {
		if err := writeBytecode(prog, *output); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		log.Infof("wrote bytecode to %s", *output)
		return
	}

	interp := vm.New(prog, os.Stdout, os.Stdin)
	if _, err := interp.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err.Format())
		os.Exit(1)
	}
}

// loadManifest loads the project manifest from dir (or the current
// directory). A missing manifest is not an error unless dir was explicit.
func loadManifest(dir string) (*manifest.Manifest, error) {
	explicit := dir != ""
	if dir == "" {
		dir = "."
	}
	if !manifest.Exists(dir) {
		if explicit {
			return nil, fmt.Errorf("no %s in %s", manifest.FileName, dir)
		}
		return nil, nil
	}
	return manifest.Load(dir)
}
