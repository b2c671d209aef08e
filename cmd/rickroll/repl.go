package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/chzyer/readline"

	"github.com/chazu/rickroll/compiler"
	"github.com/chazu/rickroll/pkg/bytecode"
	"github.com/chazu/rickroll/vm"
)

// runREPL starts the interactive session. Each submitted snippet compiles
// as an Intro-like block and runs against a retained global scope, so
// variables and Verse definitions persist across inputs. Bare expressions
// evaluate and print directly.
func runREPL() error {
	home, _ := os.UserHomeDir()
	histPath := ""
	if home != "" {
		histPath = filepath.Join(home, ".rickroll_history")
	}

	rl, err := readline.NewEx(&readline.Config{
		Prompt:            "rr> ",
		HistoryFile:       histPath,
		InterruptPrompt:   "^C",
		EOFPrompt:         "exit",
		HistorySearchFold: true,
	})
	if err != nil {
		return err
	}
	defer rl.Close()

	fmt.Println("Rickroll REPL — :help for commands, :quit to exit.")
	fmt.Println()

	prog := bytecode.NewProgram()
	session := vm.NewSession(prog, vm.Context{}, os.Stdout, os.Stdin)

	var buf strings.Builder
	depth := 0
	inBlock := false

	for {
		if depth > 0 || inBlock {
			rl.SetPrompt("... ")
		} else {
			rl.SetPrompt("rr> ")
		}

		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if buf.Len() > 0 {
				buf.Reset()
				depth = 0
				inBlock = false
				fmt.Println("^C (buffer cleared)")
			}
			continue
		}
		if err == io.EOF {
			fmt.Println()
			return nil
		}
		if err != nil {
			return err
		}

		trim := strings.TrimSpace(line)

		if depth == 0 && !inBlock && strings.HasPrefix(trim, ":") {
			if quit := handleCommand(trim, session); quit {
				return nil
			}
			continue
		}

		// An empty line submits an open [Verse]/[Chorus] block.
		if trim == "" {
			if inBlock && depth == 0 && buf.Len() > 0 {
				inBlock = false
				submit(prog, session, buf.String())
				buf.Reset()
			}
			continue
		}

		buf.WriteString(line)
		buf.WriteByte('\n')

		switch {
		case strings.HasPrefix(trim, "[Verse") || trim == "[Chorus]" || trim == "[Intro]":
			inBlock = true
		case compiler.OpensBlock(trim):
			depth++
		case compiler.ClosesBlock(trim):
			if depth > 0 {
				depth--
			}
		}
		if depth > 0 || inBlock {
			continue
		}

		src := buf.String()
		buf.Reset()

		// A single unrecognised line may still be a bare expression.
		if tryExpression(session, src) {
			continue
		}
		submit(prog, session, src)
	}
}

// submit compiles a snippet as an Intro-like block and runs it against the
// session's persistent globals. If the snippet declared a [Chorus], run it.
func submit(prog *bytecode.Program, session *vm.Interpreter, src string) {
	stmts, err := compiler.NewLexer("[Intro]\n" + src).Lex()
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Format())
		return
	}
	if err := compiler.CompileInto(prog, stmts); err != nil {
		fmt.Fprintln(os.Stderr, err.Format())
		return
	}
	if err := session.RunGlobal(); err != nil {
		fmt.Fprintln(os.Stderr, err.Format())
		return
	}
	for _, s := range stmts {
		if s.Kind == compiler.StmtChorus {
			if _, err := session.RunMain(); err != nil {
				fmt.Fprintln(os.Stderr, err.Format())
			}
			return
		}
	}
}

// tryExpression evaluates a one-line snippet as a bare expression,
// printing its value. It reports whether the snippet was handled.
func tryExpression(session *vm.Interpreter, src string) bool {
	lines := strings.Split(strings.TrimSpace(src), "\n")
	if len(lines) != 1 {
		return false
	}
	line := strings.TrimSpace(lines[0])
	if compiler.MatchesStatement(line) {
		return false
	}
	tokens, err := compiler.TokenizeExpr(line, 1)
	if err != nil {
		fmt.Fprintln(os.Stderr, err.Format())
		return true
	}
	v, eerr := session.EvalExpr(tokens)
	if eerr != nil {
		fmt.Fprintln(os.Stderr, eerr.Format())
		return true
	}
	fmt.Println(v)
	return true
}

// handleCommand processes a :command; it reports whether to quit.
func handleCommand(cmd string, session *vm.Interpreter) bool {
	switch cmd {
	case ":q", ":quit", ":exit":
		return true
	case ":h", ":help":
		fmt.Println("Commands:")
		fmt.Println("  :help     Show this help")
		fmt.Println("  :quit     Exit the REPL")
		fmt.Println("  :vars     Show session variables")
		fmt.Println()
		fmt.Println("Notes:")
		fmt.Println("  - Statements run as if inside a persistent [Intro].")
		fmt.Println("  - Bare expressions evaluate and print their value.")
		fmt.Println("  - Start a [Verse name] block to define a function;")
		fmt.Println("    finish it with an empty line.")
		fmt.Println("  - Inside we both know ... blocks buffer until closed.")
	case ":vars":
		globals := session.Globals()
		if len(globals) == 0 {
			fmt.Println("(no variables)")
			return false
		}
		for _, name := range sortedKeys(globals) {
			fmt.Printf("%s = %s\n", name, globals[name])
		}
	default:
		fmt.Println("Unknown command. Try :help")
	}
	return false
}

func sortedKeys(m vm.Context) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
