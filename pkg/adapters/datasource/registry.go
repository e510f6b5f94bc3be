package datasource

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
)

// DatasourceAdapterInfo describes a registered adapter for discovery.
type DatasourceAdapterInfo struct {
	Type        string `json:"type" yaml:"type"`                 // "postgres", "mysql", "mssql", "snowflake"
	DisplayName string `json:"display_name" yaml:"display_name"` // "PostgreSQL", "Microsoft SQL Server"
	Description string `json:"description" yaml:"description"`
	Profiling   bool   `json:"profiling" yaml:"profiling"` // true if the adapter can sample rows for quality profiling
}

// AdapterOptions carries process-wide settings into adapter factories.
type AdapterOptions struct {
	Logger         *zap.Logger
	ConnectTimeout time.Duration // zero means DefaultConnectTimeout
}

func (o AdapterOptions) withDefaults() AdapterOptions {
	if o.Logger == nil {
		o.Logger = zap.NewNop()
	}
	if o.ConnectTimeout <= 0 {
		o.ConnectTimeout = DefaultConnectTimeout
	}
	return o
}

// DatasourceAdapterRegistration contains info + factories for one dialect.
type DatasourceAdapterRegistration struct {
	Dialect          Dialect
	Info             DatasourceAdapterInfo
	ConnectorFactory func(opts AdapterOptions) Connector
	SamplerFactory   func(ctx context.Context, creds models.Credentials, opts AdapterOptions) (Sampler, error)
}

// Registry maps dialect tags to adapter registrations.
// It is written during init() and read-only afterwards.
type Registry struct {
	mu   sync.RWMutex
	regs map[Dialect]DatasourceAdapterRegistration
}

// NewRegistry returns an empty registry. Most callers use the package-level
// registry populated by adapter init() functions.
func NewRegistry() *Registry {
	return &Registry{regs: make(map[Dialect]DatasourceAdapterRegistration)}
}

var defaultRegistry = NewRegistry()

// DefaultRegistry returns the registry adapters register into from init().
func DefaultRegistry() *Registry {
	return defaultRegistry
}

// Register adds or replaces the registration for reg.Dialect.
// Thread-safe for concurrent init() calls.
func (r *Registry) Register(reg DatasourceAdapterRegistration) {
	if reg.Info.Type == "" {
		reg.Info.Type = string(reg.Dialect)
	}
	reg.Info.Profiling = reg.SamplerFactory != nil

	r.mu.Lock()
	defer r.mu.Unlock()
	r.regs[reg.Dialect] = reg
}

// lookup validates tag and returns its registration. It performs no I/O.
func (r *Registry) lookup(tag string) (DatasourceAdapterRegistration, error) {
	d, err := ParseDialect(tag)
	if err != nil {
		return DatasourceAdapterRegistration{}, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()
	reg, ok := r.regs[d]
	if !ok {
		return DatasourceAdapterRegistration{}, fmt.Errorf("%w: database type %q is not compiled in", apperrors.ErrValidation, d)
	}
	return reg, nil
}

// Connector returns the connector for tag, or an error wrapping
// apperrors.ErrValidation for unknown tags.
func (r *Registry) Connector(tag string, opts AdapterOptions) (Connector, error) {
	reg, err := r.lookup(tag)
	if err != nil {
		return nil, err
	}
	if reg.ConnectorFactory == nil {
		return nil, fmt.Errorf("%w: schema extraction not supported for type: %s", apperrors.ErrValidation, reg.Dialect)
	}
	return reg.ConnectorFactory(opts.withDefaults()), nil
}

// OpenSampler validates creds.Dialect, then opens a sampling session.
func (r *Registry) OpenSampler(ctx context.Context, creds models.Credentials, opts AdapterOptions) (Sampler, error) {
	reg, err := r.lookup(creds.Dialect)
	if err != nil {
		return nil, err
	}
	if reg.SamplerFactory == nil {
		return nil, fmt.Errorf("%w: quality profiling not supported for type: %s", apperrors.ErrValidation, reg.Dialect)
	}
	return reg.SamplerFactory(ctx, creds, opts.withDefaults())
}

// RegisteredAdapters returns info for all registered adapters, sorted by type.
func (r *Registry) RegisteredAdapters() []DatasourceAdapterInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	result := make([]DatasourceAdapterInfo, 0, len(r.regs))
	for _, reg := range r.regs {
		result = append(result, reg.Info)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Type < result[j].Type })
	return result
}

// IsRegistered checks if an adapter type is available.
func (r *Registry) IsRegistered(tag string) bool {
	_, err := r.lookup(tag)
	return err == nil
}

// Register is called by each adapter's init() function.
func Register(reg DatasourceAdapterRegistration) {
	defaultRegistry.Register(reg)
}

// RegisteredAdapters returns info for all adapters in the default registry.
func RegisteredAdapters() []DatasourceAdapterInfo {
	return defaultRegistry.RegisteredAdapters()
}

// IsRegistered checks if an adapter type is available in the default registry.
func IsRegistered(tag string) bool {
	return defaultRegistry.IsRegistered(tag)
}
