package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/quality"
	"github.com/datalens/datalens-engine/pkg/services"
)

func newProfileCmd(g *globalFlags) *cobra.Command {
	cf := &credentialFlags{}
	var tables string
	opts := quality.Options{}

	cmd := &cobra.Command{
		Use:   "profile",
		Short: "Extract a schema and score the data quality of every table",
		Long: `profile extracts the schema, then samples up to --sample-limit rows per table
over a single connection and annotates each column with completeness,
uniqueness and numeric statistics, and each table with a 0-100 quality score.`,
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

			opts.Logger = logger
			profiler := quality.NewProfiler(factory, opts)
			progress := func(done, total int, table string) {
				if g.verbose {
					fmt.Fprintf(cmd.ErrOrStderr(), "[%d/%d] %s\n", done, total, table)
				}
			}

			profiled, err := profiler.Profile(cmd.Context(), extracted, creds, progress)
			if err != nil {
				return err
			}

			return writeOutput(cmd, g, schemaOutput{
				Dialect:    creds.Dialect,
				Database:   creds.Database,
				Tables:     profiled,
				TableCount: len(profiled),
			})
		},
	}

	bindCredentialFlags(cmd, cf)
	cmd.Flags().StringVarP(&tables, "tables", "t", "", "Only profile these tables (comma-separated)")
	cmd.Flags().IntVar(&opts.SampleLimit, "sample-limit", quality.DefaultSampleLimit, "Rows sampled per table")
	cmd.Flags().IntVar(&opts.StaleAfterDays, "stale-after-days", quality.DefaultStaleAfterDays, "Flag temporal columns whose newest value is older than this")
	return cmd
}
