// Command checkdb verifies that the data store is reachable and that the
// tables the portal reads on every dashboard exist.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/jwalitptl/pharmacy-portal/internal/config"
	"github.com/jwalitptl/pharmacy-portal/internal/repository"
	"github.com/jwalitptl/pharmacy-portal/internal/repository/postgres"
)

var requiredTables = []string{"profiles", "prescriptions", "orders"}

func main() {
	// .env.local is optional; variables already in the environment win.
	_ = godotenv.Load(".env.local")

	platform, err := config.LoadPlatform()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Missing environment variables: %v\n", err)
		os.Exit(1)
	}

	db, err := postgres.NewDB(postgres.Config{URL: platform.DataStoreURL, MaxOpenConns: 1})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Cannot reach data store: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if !checkTables(ctx, postgres.NewTableProber(postgres.NewBaseRepository(db)), requiredTables, os.Stdout) {
		db.Close()
		os.Exit(1)
	}
}

// checkTables probes each table and reports whether all of them exist. Only
// an undefined-table error counts as missing; anything else is printed as a
// warning and the table is assumed present.
func checkTables(ctx context.Context, prober repository.TableProber, tables []string, out io.Writer) bool {
	fmt.Fprintln(out, "Checking database tables...")

	missing := 0
	for _, table := range tables {
		err := prober.Probe(ctx, table)
		switch {
		case err == nil:
			fmt.Fprintf(out, "  ok       %s\n", table)
		case errors.Is(err, repository.ErrUndefinedTable):
			missing++
			fmt.Fprintf(out, "  missing  %s\n", table)
		default:
			fmt.Fprintf(out, "  warning  %s: %v\n", table, err)
		}
	}

	if missing > 0 {
		fmt.Fprintf(out, "%d of %d tables missing; run the migrations\n", missing, len(tables))
		return false
	}
	fmt.Fprintf(out, "All %d tables present\n", len(tables))
	return true
}
