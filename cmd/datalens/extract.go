package main

import (
	"github.com/spf13/cobra"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/models"
	"github.com/datalens/datalens-engine/pkg/services"
)

// schemaOutput is the document printed by extract and profile.
type schemaOutput struct {
	Dialect    string         `json:"dbType" yaml:"dbType"`
	Database   string         `json:"database" yaml:"database"`
	Tables     []models.Table `json:"tables" yaml:"tables"`
	TableCount int            `json:"tableCount" yaml:"tableCount"`
}

func newExtractCmd(g *globalFlags) *cobra.Command {
	cf := &credentialFlags{}
	var tables string

	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the schema of a database",
		Example: `  datalens extract --dialect postgres --host localhost --database shop --username lens
  datalens extract --credentials prod.yaml --format yaml -o schema.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			creds, err := cf.resolve(cmd)
			if err != nil {
				return err
			}
			logger, err := newLogger(g)
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			factory := datasource.NewDatasourceAdapterFactory(nil, datasource.AdapterOptions{
				Logger:         logger,
				ConnectTimeout: g.connectTimeout,
			})
			svc := services.NewSchemaService(nil, factory, nil, logger)

			extracted, err := svc.Extract(cmd.Context(), creds)
			if err != nil {
				return err
			}
			extracted = filterTables(extracted, tables)

			return writeOutput(cmd, g, schemaOutput{
				Dialect:    creds.Dialect,
				Database:   creds.Database,
				Tables:     extracted,
				TableCount: len(extracted),
			})
		},
	}

	bindCredentialFlags(cmd, cf)
	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Only output these tables (comma-separated)")
	return cmd
}
