package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/daveroberts0321/nadra/diag"
	"github.com/daveroberts0321/nadra/generator"
	"github.com/daveroberts0321/nadra/project"
	"github.com/daveroberts0321/nadra/pygen"
	"github.com/daveroberts0321/nadra/stubgen"
	"github.com/daveroberts0321/nadra/transpile"
	"github.com/daveroberts0321/nadra/watch"
)

const version = "Nadra v0.3.0 - Nadra to Python 3 transpiler"

func main() {
	os.Exit(run(os.Args[1:]))
}

// run dispatches one command line and returns the process exit code. Usage
// errors exit 2, failed commands exit 1.
func run(args []string) int {
	if len(args) < 1 {
		printUsage()
		return 0
	}

	cmd := args[0]

	switch cmd {
	case "build":
		if len(args) < 3 {
			fmt.Println("Usage: nadra build <input.nd> <output.py>")
			return 2
		}
		return translate(args[1], args[2], os.Stderr)

	case "init":
		if len(args) < 2 {
			fmt.Println("Usage: nadra init <project-name>")
			return 2
		}
		projectName := args[1]
		if err := project.Init(projectName); err != nil {
			fmt.Printf("Error initializing project: %v\n", err)
			return 1
		}
		fmt.Printf("Project '%s' initialized successfully!\n", projectName)
		fmt.Printf("   cd %s\n", projectName)
		fmt.Printf("   nadra start http\n")

	case "start":
		if len(args) < 2 {
			fmt.Println("Usage: nadra start <http|build>")
			return 2
		}
		subCmd := args[1]
		switch subCmd {
		case "http":
			cfg, err := project.LoadConfig(".")
			if err != nil {
				fmt.Printf("Error loading %s: %v\n", project.ConfigFile, err)
				return 1
			}
			ctx, stop := signalContext()
			defer stop()
			if err := project.StartDevServer(ctx, cfg); err != nil {
				fmt.Printf("Error starting dev server: %v\n", err)
				return 1
			}
		case "build":
			if err := project.Build(); err != nil {
				printDiagnostic(os.Stderr, err)
				return 1
			}
			fmt.Println("Project built successfully!")
		default:
			fmt.Printf("Unknown start command: %s\n", subCmd)
			return 2
		}

	case "gen":
		if len(args) < 3 {
			fmt.Println("Usage: nadra gen <struct|enum|function|manifest|stub> <name>")
			return 2
		}
		subCmd, arg := args[1], args[2]
		var err error
		switch subCmd {
		case "struct":
			err = generator.GenerateStruct(arg)
		case "enum":
			err = generator.GenerateEnum(arg, args[3:]...)
		case "function":
			err = generator.GenerateFunction(arg)
		case "manifest":
			err = generator.GenerateManifest(arg)
		case "stub":
			outDir := "."
			if len(args) > 3 {
				outDir = args[3]
			}
			var file string
			if file, err = stubgen.Generate(arg, outDir); err == nil {
				fmt.Printf("Stub written to %s\n", file)
			}
		default:
			fmt.Printf("Unknown gen command: %s\n", subCmd)
			return 2
		}
		if err != nil {
			fmt.Printf("Error generating %s: %v\n", subCmd, err)
			return 1
		}

	case "check":
		if len(args) < 2 {
			fmt.Println("Usage: nadra check <file.py>")
			return 2
		}
		return check(args[1], os.Stdout, os.Stderr)

	case "repl":
		repl(os.Stdin, os.Stdout, pygen.Options{Verify: true})

	case "watch":
		cfg, err := project.LoadConfig(".")
		if err != nil {
			fmt.Printf("Error loading %s: %v\n", project.ConfigFile, err)
			return 1
		}
		ctx, stop := signalContext()
		defer stop()
		rebuild := func() error { return project.BuildWith(ctx, cfg) }
		if err := watch.Watch(ctx, cfg.SourceDirs, rebuild); err != nil {
			fmt.Printf("Error watching files: %v\n", err)
			return 1
		}

	case "version":
		fmt.Println(version)

	case "help", "--help", "-h":
		printUsage()

	default:
		if len(args) == 2 {
			return translate(args[0], args[1], os.Stderr)
		}
		fmt.Printf("Unknown command: %s\n", cmd)
		printUsage()
		return 2
	}
	return 0
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}

// translate runs the single-file pipeline and returns the process exit code
func translate(in, out string, stderr io.Writer) int {
	opts := pygen.Options{Indent: pygen.DefaultIndent, Verify: true}
	if err := transpile.File(in, out, opts); err != nil {
		printDiagnostic(stderr, err)
		return 1
	}
	return 0
}

// printDiagnostic writes "line:column: message" for pipeline diagnostics and
// the plain error otherwise.
func printDiagnostic(w io.Writer, err error) {
	if d, ok := diag.As(err); ok {
		fmt.Fprintln(w, d.Report())
		return
	}
	fmt.Fprintf(w, "error: %v\n", err)
}

func check(path string, stdout, stderr io.Writer) int {
	code, err := os.ReadFile(path)
	if err != nil {
		fmt.Fprintf(stderr, "error: %v\n", err)
		return 1
	}
	if err := pygen.VerifyNamed(string(code), path); err != nil {
		fmt.Fprintln(stderr, err)
		return 1
	}
	fmt.Fprintf(stdout, "%s: ok\n", path)
	return 0
}

// repl reads Nadra a line at a time and prints the Python for each complete
// unit. Lines accumulate while the parser reports the input ended early.
func repl(in io.Reader, out io.Writer, opts pygen.Options) {
	fmt.Fprintln(out, "Nadra REPL. Type .quit to exit.")

	scanner := bufio.NewScanner(in)
	var pending strings.Builder

	prompt := ">>> "
	for {
		fmt.Fprint(out, prompt)
		if !scanner.Scan() {
			break
		}
		line := scanner.Text()

		if pending.Len() == 0 {
			switch strings.TrimSpace(line) {
			case ".quit":
				return
			case "":
				continue
			}
		}

		pending.WriteString(line)
		pending.WriteByte('\n')

		code, err := transpile.Source(pending.String(), "<stdin>", opts)
		if diag.IsIncomplete(err) {
			prompt = "... "
			continue
		}

		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		} else {
			fmt.Fprint(out, code)
		}
		pending.Reset()
		prompt = ">>> "
	}

	fmt.Fprintln(out)
	if pending.Len() > 0 {
		if _, err := transpile.Source(pending.String(), "<stdin>", opts); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
		}
	}
}

func printUsage() {
	fmt.Println(`Nadra - a small indentation-free language that compiles to Python 3

USAGE:
    nadra <input.nd> <output.py>
    nadra <command> [arguments]

COMMANDS:
    build <in> <out>          Translate one file
    init <name>               Initialize a new Nadra project
    start http                Start the playground server with rebuild on change
    start build               Build the project once
    gen struct <name>         Generate a struct template
    gen enum <name> [vars]    Generate an enum template
    gen function <name>       Generate a function template
    gen manifest <file>       Write the YAML manifest of a .nd file
    gen stub <manifest> [dir] Write a .pyi stub from a manifest
    check <file.py>           Check that a Python file parses
    repl                      Translate interactively
    watch                     Watch files and rebuild on changes
    version                   Show version information
    help                      Show this help message

EXAMPLES:
    nadra hello.nd hello.py
    nadra init myapp
    nadra start http
    nadra gen struct User
    nadra gen enum Color Red Green Blue`)
}
