// Command mongodb-lsp is a Language Server Protocol server for MongoDB
// shell scripts.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/urfave/cli/v3"
	"go.lsp.dev/jsonrpc2"
	"go.lsp.dev/protocol"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	mongolsp "github.com/Aldin-SXR/mongodb-lsp"
	"github.com/Aldin-SXR/mongodb-lsp/lsp"
)

var version = "dev"

func main() {
	app := &cli.Command{
		Name:    "mongodb-lsp",
		Version: version,
		Usage:   "Language server for MongoDB shell scripts",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to a mongodb-lsp config file (found by walking up from the cwd when unset)",
				Sources: cli.EnvVars("MONGODB_LSP_CONFIG"),
			},
			&cli.StringFlag{
				Name:  "log-level",
				Usage: "log verbosity: debug, info, warn, error (overrides config)",
			},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			return serve(ctx, cmd.String("config"), cmd.String("log-level"))
		},
	}

	err := app.Run(context.Background(), os.Args)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func serve(ctx context.Context, configPath, logLevel string) error {
	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}

	logger, err := buildLogger(logLevel)
	if err != nil {
		return err
	}

	defer func() {
		_ = logger.Sync()
	}()

	logger.Info("Starting mongodb-lsp server", zap.String("version", version))

	return run(ctx, logger, cfg, os.Stdin, os.Stdout)
}

// loadConfig loads the config from an explicit path, or searches upward
// from the working directory. A missing config is not an error; the server
// falls back to static catalog data only.
func loadConfig(path string) (*mongolsp.Config, error) {
	if path != "" {
		return mongolsp.LoadConfigFile(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	cfg, err := mongolsp.LoadConfig(cwd)
	if errors.Is(err, mongolsp.ErrConfigNotFound) {
		return &mongolsp.Config{}, nil
	}

	return cfg, err
}

// buildLogger sets up logging to stderr; stdout carries the LSP stream.
func buildLogger(level string) (*zap.Logger, error) {
	config := zap.NewDevelopmentConfig()
	config.OutputPaths = []string{"stderr"}

	parsed := zapcore.InfoLevel
	if level != "" {
		var err error

		parsed, err = zapcore.ParseLevel(level)
		if err != nil {
			return nil, fmt.Errorf("invalid log level %q: %w", level, err)
		}
	}

	config.Level = zap.NewAtomicLevelAt(parsed)

	return config.Build()
}

func run(ctx context.Context, logger *zap.Logger, cfg *mongolsp.Config, in io.Reader, out io.Writer) error {
	// Create a JSON-RPC stream connection over stdio
	stream := jsonrpc2.NewStream(&readWriteCloser{in, out})
	conn := jsonrpc2.NewConn(stream)

	// Create a client to send notifications to the editor
	client := protocol.ClientDispatcher(conn, logger)

	provider := mongolsp.NewStaticProvider(cfg.Schema)
	server := lsp.NewServer(client, logger, provider)
	server.SetDiagnosticsEnabled(cfg.DiagnosticsEnabled())

	// Register the server handler with the connection
	conn.Go(ctx, protocol.ServerHandler(server, nil))

	// Wait for the connection to close
	<-conn.Done()

	return conn.Err()
}

// readWriteCloser wraps separate reader/writer into io.ReadWriteCloser.
type readWriteCloser struct {
	io.Reader
	io.Writer
}

func (rwc *readWriteCloser) Close() error {
	// Close writer if it's closeable
	if c, ok := rwc.Writer.(io.Closer); ok {
		return c.Close()
	}

	return nil
}
