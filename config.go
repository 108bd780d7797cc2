package httpcache

import (
	"errors"
	"fmt"
	"os"

	"github.com/always-cache/httpcache/cache"
	cacherules "github.com/always-cache/httpcache/pkg/cache-rules"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// DefaultMemLimit is the byte budget used when Options.MemLimit is zero.
const DefaultMemLimit = 512000

const (
	ProviderMemory = "memory"
	ProviderSQLite = "sqlite"
)

var ErrUnknownProvider = errors.New("unknown provider")

// Options configures a Storage.
type Options struct {
	// Byte budget for stored entries. An entry accounts for its header block
	// in HTTP/1.1 wire format plus its body.
	MemLimit int64 `yaml:"memLimit"`
	// Provider is "memory" (default) or "sqlite".
	Provider string `yaml:"provider"`
	// SQLite data source. An empty DSN opens a private in-memory database.
	DSN string `yaml:"dsn"`
	// Rules registered as listeners ahead of any other listener.
	Rules cacherules.Rules `yaml:"rules"`
	// Logger to use. A console logger is used if nil.
	Logger *zerolog.Logger `yaml:"-"`
	// Registerer for the cache metrics. A private registry is used if nil.
	Registerer prometheus.Registerer `yaml:"-"`
}

// ReadOptions reads options from a YAML file.
func ReadOptions(filename string) (Options, error) {
	var options Options
	optionsBytes, err := os.ReadFile(filename)
	if err != nil {
		return options, err
	}
	err = yaml.Unmarshal(optionsBytes, &options)
	return options, err
}

// NewStorage creates the provider described by options and a Storage using it.
func NewStorage(options Options) (*Storage, error) {
	memLimit := options.MemLimit
	if memLimit == 0 {
		memLimit = DefaultMemLimit
	}
	logger := options.logger()

	var provider cache.Provider
	var err error
	switch options.Provider {
	case "", ProviderMemory:
		provider, err = cache.NewMemoryStorage(memLimit, logger)
	case ProviderSQLite:
		provider, err = cache.NewSQLiteStorage(options.DSN, memLimit, logger)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownProvider, options.Provider)
	}
	if err != nil {
		return nil, err
	}
	return New(provider, options), nil
}

// logger returns the configured logger, or a console logger if there is none.
func (o Options) logger() zerolog.Logger {
	// use console logger if not specified in options
	if o.Logger == nil {
		return zerolog.New(zerolog.NewConsoleWriter())
	}
	return *o.Logger
}
