package logging

import (
	"io"
	"os"
	"strings"
	"sync"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"pocketpoker/internal/config"
)

var (
	mu     sync.Mutex
	writer io.Writer = os.Stdout
	file   *rotatingWriter
)

// Init configures the global zerolog logger. When cfg.File is set, output is
// teed into a rotating file next to stdout.
func Init(cfg config.LogConfig) error {
	mu.Lock()
	defer mu.Unlock()

	level := zerolog.InfoLevel
	if v := strings.TrimSpace(cfg.Level); v != "" {
		if parsed, err := zerolog.ParseLevel(strings.ToLower(v)); err == nil {
			level = parsed
		}
	}

	var out io.Writer = os.Stdout
	if cfg.File != "" {
		if file != nil {
			_ = file.Close()
			file = nil
		}
		w, err := newRotatingWriter(cfg.File, cfg.MaxMB)
		if err != nil {
			return err
		}
		file = w
		out = io.MultiWriter(os.Stdout, w)
	}
	writer = out

	var output io.Writer = out
	if cfg.Pretty {
		output = zerolog.ConsoleWriter{Out: out}
	}

	zerolog.SetGlobalLevel(level)
	logger := zerolog.New(output).With().Timestamp().Logger()
	if cfg.SampleEvery > 1 {
		logger = logger.Sample(&zerolog.BasicSampler{N: uint32(cfg.SampleEvery)})
	}
	log.Logger = logger
	return nil
}

// Writer returns the raw destination shared with the HTTP access log.
func Writer() io.Writer {
	mu.Lock()
	defer mu.Unlock()
	return writer
}

func Close() error {
	mu.Lock()
	defer mu.Unlock()
	if file == nil {
		return nil
	}
	err := file.Close()
	file = nil
	writer = os.Stdout
	return err
}
