package main

import (
	"fmt"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/datalens/datalens-engine/pkg/adapters/datasource"
	"github.com/datalens/datalens-engine/pkg/logging"
	"github.com/datalens/datalens-engine/pkg/models"
)

// PasswordEnv supplies the password when --password is not given.
const PasswordEnv = "DATALENS_PASSWORD"

// globalFlags are shared by every subcommand.
type globalFlags struct {
	verbose        bool
	format         string
	output         string
	connectTimeout time.Duration
}

// credentialFlags describe the target datastore.
type credentialFlags struct {
	file  string
	creds models.Credentials
}

func newRootCmd() *cobra.Command {
	g := &globalFlags{}

	root := &cobra.Command{
		Use:   "datalens",
		Short: "Extract database schemas and profile data quality",
		Long: `datalens connects to PostgreSQL, MySQL, SQL Server or Snowflake, extracts a
dialect-independent description of the schema and optionally profiles a sample
of live rows to score each table's data quality.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().BoolVarP(&g.verbose, "verbose", "v", false, "Log progress to stderr")
	root.PersistentFlags().StringVarP(&g.format, "format", "f", "json", "Output format: json or yaml")
	root.PersistentFlags().StringVarP(&g.output, "output", "o", "", "Output file (default: stdout)")
	root.PersistentFlags().DurationVar(&g.connectTimeout, "connect-timeout", datasource.DefaultConnectTimeout, "Connection timeout")

	root.AddCommand(
		newVersionCmd(),
		newAdaptersCmd(g),
		newExtractCmd(g),
		newProfileCmd(g),
	)
	return root
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "datalens %s\n", version)
			fmt.Fprintf(cmd.OutOrStdout(), "Go version: %s\n", runtime.Version())
			fmt.Fprintf(cmd.OutOrStdout(), "OS/Arch: %s/%s\n", runtime.GOOS, runtime.GOARCH)
		},
	}
}

func newAdaptersCmd(g *globalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "adapters",
		Short: "List supported database types",
		RunE: func(cmd *cobra.Command, args []string) error {
			return writeOutput(cmd, g, datasource.RegisteredAdapters())
		},
	}
}

// bindCredentialFlags registers the target flags on cmd.
func bindCredentialFlags(cmd *cobra.Command, cf *credentialFlags) {
	f := cmd.Flags()
	f.StringVar(&cf.file, "credentials", "", "YAML file with target credentials; flags override its fields")
	f.StringVar(&cf.creds.Dialect, "dialect", "", "Database type: postgres, mysql, mssql or snowflake")
	f.StringVar(&cf.creds.Host, "host", "", "Database host")
	f.IntVar(&cf.creds.Port, "port", 0, "Database port (default: dialect default)")
	f.StringVar(&cf.creds.Database, "database", "", "Database name")
	f.StringVar(&cf.creds.Username, "username", "", "User name")
	f.StringVar(&cf.creds.Password, "password", "", "Password (default: $"+PasswordEnv+")")
	f.StringVar(&cf.creds.Schema, "schema", "", "Schema (default: dialect default)")
	f.StringVar(&cf.creds.Account, "account", "", "Snowflake account identifier")
	f.StringVar(&cf.creds.Warehouse, "warehouse", "", "Snowflake warehouse")
	f.StringVar(&cf.creds.Role, "role", "", "Snowflake role")
}

// resolve merges the credentials file, explicit flags and the password
// environment variable, in increasing precedence order for flags.
func (cf *credentialFlags) resolve(cmd *cobra.Command) (models.Credentials, error) {
	creds := models.Credentials{}
	if cf.file != "" {
		fileCreds, err := loadCredentials(cf.file)
		if err != nil {
			return models.Credentials{}, err
		}
		creds = fileCreds
	}

	flags := cmd.Flags()
	override := func(name string, dst *string, v string) {
		if flags.Changed(name) {
			*dst = v
		}
	}
	override("dialect", &creds.Dialect, cf.creds.Dialect)
	override("host", &creds.Host, cf.creds.Host)
	override("database", &creds.Database, cf.creds.Database)
	override("username", &creds.Username, cf.creds.Username)
	override("password", &creds.Password, cf.creds.Password)
	override("schema", &creds.Schema, cf.creds.Schema)
	override("account", &creds.Account, cf.creds.Account)
	override("warehouse", &creds.Warehouse, cf.creds.Warehouse)
	override("role", &creds.Role, cf.creds.Role)
	if flags.Changed("port") {
		creds.Port = cf.creds.Port
	}

	if creds.Password == "" {
		creds.Password = os.Getenv(PasswordEnv)
	}
	if creds.Dialect == "" {
		return models.Credentials{}, fmt.Errorf("--dialect is required")
	}
	return creds, nil
}

// loadCredentials reads a YAML credentials file.
func loadCredentials(path string) (models.Credentials, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return models.Credentials{}, fmt.Errorf("failed to read credentials file: %w", err)
	}
	var creds models.Credentials
	if err := yaml.Unmarshal(data, &creds); err != nil {
		return models.Credentials{}, fmt.Errorf("failed to parse credentials file: %w", err)
	}
	return creds, nil
}

// newLogger logs to stderr in verbose mode and discards otherwise.
func newLogger(g *globalFlags) (*zap.Logger, error) {
	if !g.verbose {
		return zap.NewNop(), nil
	}
	return logging.NewLogger("local")
}

// filterTables keeps only the named tables, preserving catalog order.
func filterTables(tables []models.Table, names string) []models.Table {
	if strings.TrimSpace(names) == "" {
		return tables
	}
	keep := make(map[string]bool)
	for _, n := range strings.Split(names, ",") {
		keep[strings.TrimSpace(n)] = true
	}
	out := make([]models.Table, 0, len(tables))
	for _, t := range tables {
		if keep[t.Name] {
			out = append(out, t)
		}
	}
	return out
}
