package postgres

import (
	"context"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Dialect: datasource.DialectPostgres,
		Info: datasource.DatasourceAdapterInfo{
			DisplayName: "PostgreSQL",
			Description: "Connect to PostgreSQL 12+, Aurora PostgreSQL, Supabase",
		},
		ConnectorFactory: func(opts datasource.AdapterOptions) datasource.Connector {
			return NewConnector(opts)
		},
		SamplerFactory: func(ctx context.Context, creds models.Credentials, opts datasource.AdapterOptions) (datasource.Sampler, error) {
			s, err := OpenSampler(ctx, creds, opts)
			if err != nil {
				return nil, err
			}
			return s, nil
		},
	})
}
