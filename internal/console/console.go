// Package console bundles a confirmation prompt and a log sink into a
// single injectable interface, so Crawler and reader.IndexReader can take
// one as a constructor argument instead of reaching for package globals.
package console

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"
)

// Console is the confirmation-prompt and log-sink capability injected into
// Crawler and reader.IndexReader.
type Console interface {
	// Confirm prints question and reads a line of input. Any answer
	// beginning with "y" or "Y" is consent; anything else declines.
	Confirm(question string) bool
	Logger() *zap.SugaredLogger
}

type stdConsole struct {
	logger *zap.SugaredLogger
	out    io.Writer
	in     *bufio.Reader
}

// New builds a Console that prompts on stdin/stdout and logs through logger.
func New(logger *zap.SugaredLogger) Console {
	return &stdConsole{logger: logger, out: os.Stdout, in: bufio.NewReader(os.Stdin)}
}

func (c *stdConsole) Confirm(question string) bool {
	fmt.Fprint(c.out, question)
	line, _ := c.in.ReadString('\n')
	line = strings.TrimSpace(line)
	return strings.HasPrefix(strings.ToLower(line), "y")
}

func (c *stdConsole) Logger() *zap.SugaredLogger {
	return c.logger
}

// autoConsole answers every confirmation with a fixed value. Useful for
// tests and for non-interactive deployments that never want to block on a
// prompt.
type autoConsole struct {
	logger *zap.SugaredLogger
	answer bool
}

// NewAutoConfirm builds a Console that never blocks on stdin, always
// answering confirmation prompts with answer.
func NewAutoConfirm(logger *zap.SugaredLogger, answer bool) Console {
	return &autoConsole{logger: logger, answer: answer}
}

func (c *autoConsole) Confirm(string) bool        { return c.answer }
func (c *autoConsole) Logger() *zap.SugaredLogger { return c.logger }

// NewLogger builds a *zap.SugaredLogger at the given level
// (debug|info|warn|error).
func NewLogger(level string) (*zap.SugaredLogger, error) {
	var zapLevel zap.AtomicLevel
	switch strings.ToLower(level) {
	case "debug":
		zapLevel = zap.NewAtomicLevelAt(zap.DebugLevel)
	case "", "info":
		zapLevel = zap.NewAtomicLevelAt(zap.InfoLevel)
	case "warn":
		zapLevel = zap.NewAtomicLevelAt(zap.WarnLevel)
	case "error":
		zapLevel = zap.NewAtomicLevelAt(zap.ErrorLevel)
	default:
		return nil, fmt.Errorf("arccrawler: unknown log level %q", level)
	}

	cfg := zap.NewProductionConfig()
	cfg.Level = zapLevel
	cfg.Encoding = "console"
	cfg.EncoderConfig.TimeKey = "ts"

	logger, err := cfg.Build()
	if err != nil {
		return nil, fmt.Errorf("arccrawler: building logger: %w", err)
	}
	return logger.Sugar(), nil
}
