package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"jasper/internal/parser"
	"jasper/internal/repl"
	"jasper/internal/runner"
	"jasper/internal/util"

	"github.com/google/uuid"
)

var (
	// Version is the current version of the jasper binary, set at link time.
	Version   = "dev"
	BuildDate = "unknown"
	Commit    = "unknown"
	help      bool
	version   bool
	// logging
	logLevel string
	logFile  string
	// config vars
	configPath  string
	debugAST    string
	interactive bool
)

func init() {
	flag.BoolVar(&help, "help", false, "Display help information and exit")
	flag.BoolVar(&help, "h", false, "Display help information and exit")
	flag.BoolVar(&version, "version", false, "Display version information and exit")
	flag.BoolVar(&version, "v", false, "Display version information and exit")
	// evaluator config
	flag.StringVar(&configPath, "config", "", "Path to a TOML configuration file")
	flag.BoolVar(&interactive, "repl", false, "Start an interactive session")
	// parser config
	flag.StringVar(&debugAST, "debug-ast", "", "Dump the parsed tree to stderr as json, yaml or text")
	// log config
	flag.StringVar(&logLevel, "log-level", "", "Log level: debug, info, warn, error")
	flag.StringVar(&logFile, "log-file", "", "Log file path (if not set, logs to stderr)")
}

func main() {

	flag.Parse()

	if version {
		printVersion()
		return
	}

	if help {
		printHelp()
		return
	}

	config, err := loadConfiguration()
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		os.Exit(2)
	}

	// Creates a new Logger that uses a JSONHandler, tagged with this run's id
	loggerOptions := &slog.HandlerOptions{
		AddSource: false,
		Level:     logLevelFromString(config.LogLevel),
	}
	logWriter := configureLogWriter(config.LogFile)
	defaultLogger := slog.New(slog.NewJSONHandler(logWriter, loggerOptions)).
		With(slog.String("run", uuid.NewString()))
	slog.SetDefault(defaultLogger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	r := runner.New(config, os.Stdout)
	code := run(ctx, r)
	if err := r.Close(); err != nil {
		slog.Warn("failed to release host resources", slog.Any("error", err))
	}
	if logWriter != os.Stderr {
		_ = logWriter.Close()
	}
	os.Exit(code)
}

func run(ctx context.Context, r *runner.Runner) int {
	if interactive {
		if err := repl.Start(ctx, r, os.Stdin, os.Stdout); err != nil {
			fmt.Fprintf(os.Stderr, "%v\n", err)
			return 1
		}
		return 0
	}

	src, err := readSource(flag.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "%v\n", err)
		return 1
	}

	val, err := r.Run(ctx, src)
	if err != nil {
		slog.Error("program failed", slog.Any("error", err))
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(val.Inspect())
	return 0
}

// loadConfiguration layers flags over an optional TOML file over defaults.
func loadConfiguration() (util.Configuration, error) {
	config := util.DefaultConfiguration()
	config.Version = Version
	config.BuildDate = BuildDate
	config.Commit = Commit
	config.JasperHome = os.Getenv("JASPER_HOME")

	path := configPath
	if path == "" && config.JasperHome != "" {
		candidate := filepath.Join(config.JasperHome, "jasper.toml")
		if _, err := os.Stat(candidate); err == nil {
			path = candidate
		}
	}
	if path != "" {
		var err error
		config, err = util.LoadConfiguration(path, config)
		if err != nil {
			return config, err
		}
	}

	if logLevel != "" {
		config.LogLevel = logLevel
	}
	if logFile != "" {
		config.LogFile = logFile
	}
	if debugAST != "" {
		switch debugAST {
		case parser.FormatJSON, parser.FormatYAML, parser.FormatText:
			config.DebugAST = debugAST
		default:
			return config, fmt.Errorf("-debug-ast must be one of json, yaml, text, got %q", debugAST)
		}
	}
	return config, nil
}

// readSource reads the program file, or stdin when no file or "-" is given.
func readSource(name string) (string, error) {
	if name == "" || name == "-" {
		src, err := io.ReadAll(os.Stdin)
		if err != nil {
			return "", fmt.Errorf("failed to read stdin: %w", err)
		}
		return string(src), nil
	}
	src, err := os.ReadFile(name)
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", name, err)
	}
	return string(src), nil
}

func configureLogWriter(logFile string) *os.File {
	var logWriter *os.File
	var err error
	if logFile != "" {
		// Create parent directories if they don't exist
		if err := os.MkdirAll(filepath.Dir(logFile), 0o755); err != nil {
			fmt.Fprintf(os.Stderr, "failed to create log directory for '%s': %v; falling back to stderr\n", logFile, err)
			return os.Stderr
		}
		logWriter, err = os.OpenFile(logFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to open log file '%s': %v; falling back to stderr\n", logFile, err)
			logWriter = os.Stderr
		}
	} else {
		logWriter = os.Stderr
	}
	return logWriter
}

func printVersion() {

	fmt.Printf("jasper version 'v%s' %s %s\n", Version, BuildDate, Commit)
}

func printHelp() {
	fmt.Printf(`Usage: jasper [options] [filename]

Options:
  -config <path>     Load settings from a TOML file. Defaults to $JASPER_HOME/jasper.toml when present.
  -repl              Start an interactive session.
  -debug-ast <fmt>   Dump the parsed tree to stderr as json, yaml or text.
  -help              Display this help information and exit.
  -version           Display version information and exit.
  -log-level <level> Set the log level: debug, info, warn, error. Default is 'error'.
  -log-file <path>   Specify a log file to write logs. Default is stderr.

Details:
Jasper evaluates a small prefix-notation expression language. With no
filename the program is read from standard input. The value of the last
top-level expression is printed on success.

Examples:
  jasper area.jas                    Execute the provided file
  echo '(+ 1 2)' | jasper            Execute a program from stdin
  jasper -config db.toml report.jas  Execute with configured databases
  jasper -repl                       Start an interactive session

Version Information:
  Version:    %s
  Build Date: %s
  Commit:     %s
`, Version, BuildDate, Commit)
}

func logLevelFromString(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelError
	}
}
