package snowflake

import (
	"context"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
)

func init() {
	datasource.Register(datasource.DatasourceAdapterRegistration{
		Dialect: datasource.DialectSnowflake,
		Info: datasource.DatasourceAdapterInfo{
			DisplayName: "Snowflake",
			Description: "Connect to a Snowflake warehouse (catalog only, no key metadata)",
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
