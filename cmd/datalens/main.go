// Command datalens extracts schemas and profiles data quality from the command line.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	// Register the compiled-in dialects
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/mssql"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/mysql"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/postgres"
	_ "github.com/datalens/datalens-engine/pkg/adapters/datasource/snowflake"
)

// version is set at build time via ldflags
var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
