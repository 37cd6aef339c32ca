package savestate

import (
	"strings"
	"time"

	"github.com/goliatone/go-savestate/guard"
	"github.com/goliatone/go-savestate/pkg/obfuscate"
	"github.com/google/uuid"
)

// DefaultFileName is the store name used when none is configured.
const DefaultFileName = "SaveGame"

// Option configures a Service.
type Option func(*serviceConfig)

// EntityGuard vets decoded values before they are applied. *guard.Guard
// satisfies it.
type EntityGuard interface {
	Check(ctx guard.Context) error
}

type serviceConfig struct {
	fileName   string
	obfuscator obfuscate.Obfuscator
	logger     Logger
	guard      EntityGuard
	registry   *Registry
	now        func() time.Time
	newID      func() string
	activity   activityConfig
}

func defaultServiceConfig() serviceConfig {
	return serviceConfig{
		fileName:   DefaultFileName,
		obfuscator: obfuscate.None{},
		logger:     noopLogger{},
		now:        time.Now,
		newID:      uuid.NewString,
	}
}

func applyOptions(opts []Option) serviceConfig {
	cfg := defaultServiceConfig()
	for _, opt := range opts {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// WithFileName sets the name the container is stored under.
func WithFileName(name string) Option {
	return func(cfg *serviceConfig) {
		if name = strings.TrimSpace(name); name != "" {
			cfg.fileName = name
		}
	}
}

// WithObfuscator wraps the stored container. See package obfuscate for what
// this does and does not protect against.
func WithObfuscator(o obfuscate.Obfuscator) Option {
	return func(cfg *serviceConfig) {
		if o == nil {
			cfg.obfuscator = obfuscate.None{}
			return
		}
		cfg.obfuscator = o
	}
}

// WithLogger routes diagnostics to logger. It also applies to the registry
// the service creates; a registry passed through WithRegistry keeps its own.
func WithLogger(logger Logger) Option {
	return func(cfg *serviceConfig) {
		if logger == nil {
			cfg.logger = noopLogger{}
			return
		}
		cfg.logger = logger
	}
}

// WithGuard checks every decoded entity before it is applied or parked.
func WithGuard(g EntityGuard) Option {
	return func(cfg *serviceConfig) {
		cfg.guard = g
	}
}

// WithRegistry shares an existing registry with the service.
func WithRegistry(registry *Registry) Option {
	return func(cfg *serviceConfig) {
		cfg.registry = registry
	}
}

// WithClock overrides the time source used for save timestamps and durations.
func WithClock(now func() time.Time) Option {
	return func(cfg *serviceConfig) {
		if now != nil {
			cfg.now = now
		}
	}
}

// WithIDGenerator overrides how save ids are minted.
func WithIDGenerator(next func() string) Option {
	return func(cfg *serviceConfig) {
		if next != nil {
			cfg.newID = next
		}
	}
}
