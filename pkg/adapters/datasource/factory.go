package datasource

import (
	"context"
	"fmt"
	"strings"

	"github.com/datalens/datalens-engine/pkg/apperrors"
	"github.com/datalens/datalens-engine/pkg/models"
	sqlcheck "github.com/datalens/datalens-engine/pkg/sql"
)

// DatasourceAdapterFactory creates adapters from a registry.
type DatasourceAdapterFactory interface {
	// NewConnector returns the schema connector for the given dialect tag.
	NewConnector(dialect string) (Connector, error)

	// OpenSampler validates creds and opens a sampling session against the target.
	OpenSampler(ctx context.Context, creds models.Credentials) (Sampler, error)

	// ListTypes returns info for all registered adapter types.
	ListTypes() []DatasourceAdapterInfo
}

type registryFactory struct {
	registry *Registry
	opts     AdapterOptions
}

// NewDatasourceAdapterFactory returns a factory backed by registry.
// A nil registry uses the default one populated by adapter init() functions.
func NewDatasourceAdapterFactory(registry *Registry, opts AdapterOptions) DatasourceAdapterFactory {
	if registry == nil {
		registry = defaultRegistry
	}
	return &registryFactory{registry: registry, opts: opts.withDefaults()}
}

// named scopes the adapter logger to the dialect.
func (f *registryFactory) named(dialect string) AdapterOptions {
	opts := f.opts
	opts.Logger = opts.Logger.Named(strings.ToLower(strings.TrimSpace(dialect)))
	return opts
}

func (f *registryFactory) NewConnector(dialect string) (Connector, error) {
	return f.registry.Connector(dialect, f.named(dialect))
}

func (f *registryFactory) OpenSampler(ctx context.Context, creds models.Credentials) (Sampler, error) {
	if err := ValidateCredentials(creds); err != nil {
		return nil, err
	}
	return f.registry.OpenSampler(ctx, creds, f.named(creds.Dialect))
}

func (f *registryFactory) ListTypes() []DatasourceAdapterInfo {
	return f.registry.RegisteredAdapters()
}

// Ensure registryFactory implements DatasourceAdapterFactory at compile time.
var _ DatasourceAdapterFactory = (*registryFactory)(nil)

// ValidateCredentials checks the dialect tag and rejects identifier fields that
// look like SQL injection. Some of these fields are interpolated into catalog
// queries by warehouse dialects. It performs no I/O.
func ValidateCredentials(creds models.Credentials) error {
	if _, err := ParseDialect(creds.Dialect); err != nil {
		return err
	}
	identifiers := map[string]any{
		"database":  creds.Database,
		"schema":    creds.Schema,
		"warehouse": creds.Warehouse,
		"account":   creds.Account,
		"role":      creds.Role,
	}
	if results := sqlcheck.CheckAllParameters(identifiers); len(results) > 0 {
		return fmt.Errorf("%w: %s contains a suspicious SQL pattern (fingerprint %s)",
			apperrors.ErrValidation, results[0].ParamName, results[0].Fingerprint)
	}
	for name, v := range identifiers {
		if s, _ := v.(string); !sqlcheck.IsSafeIdentifier(s) {
			return fmt.Errorf("%w: %s contains characters not allowed in an identifier", apperrors.ErrValidation, name)
		}
	}
	return nil
}
