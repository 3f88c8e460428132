package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"melodybot/internal/catalog"
	"melodybot/internal/config"
	"melodybot/internal/repository/kv"
	"melodybot/internal/storage/backend"

	"github.com/spf13/pflag"
	"go.uber.org/zap"
)

const usage = `Usage: catalog <command> [flags]

Manage the melody catalog in the store configured by the environment.

Commands:
  import --file items.yaml   add or replace the items of a catalog file
  remove --id N              remove the item with id N
  list                       print every item
`

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(context.Background(), os.Args[1:], os.Stdout, logger); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdout io.Writer, logger *zap.Logger) error {
	if len(args) == 0 || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprint(stdout, usage)
		return nil
	}

	command, args := args[0], args[1:]

	var filePath string
	var itemID uint64

	flagSet := pflag.NewFlagSet(command, pflag.ContinueOnError)
	switch command {
	case "import":
		flagSet.StringVarP(&filePath, "file", "f", "", "path to the YAML catalog file")
	case "remove":
		flagSet.Uint64Var(&itemID, "id", 0, "id of the item to remove")
	case "list":
	default:
		return fmt.Errorf("unknown command %q\n\n%s", command, usage)
	}

	if err := flagSet.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}
	if flagSet.NArg() > 0 {
		return fmt.Errorf("unexpected argument: %s", flagSet.Arg(0))
	}

	// Validate flags before touching the store
	var f *os.File
	switch command {
	case "import":
		if filePath == "" {
			return fmt.Errorf("--file is required")
		}
		var err error
		f, err = os.Open(filePath)
		if err != nil {
			return err
		}
		defer f.Close()
	case "remove":
		if !flagSet.Changed("id") {
			return fmt.Errorf("--id is required")
		}
	}

	cfg, err := config.LoadStore()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	store, err := backend.Open(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer store.Close()

	repo := kv.NewCatalogRepo(store, cfg.CatalogSeed)

	switch command {
	case "import":
		items, err := catalog.Parse(f)
		if err != nil {
			return err
		}
		n, err := catalog.Import(ctx, repo, items, logger)
		if err != nil {
			return err
		}
		fmt.Fprintf(stdout, "imported %d items\n", n)

	case "remove":
		if err := repo.DeleteItem(ctx, itemID); err != nil {
			return err
		}
		fmt.Fprintf(stdout, "removed item %d\n", itemID)

	case "list":
		ids, err := repo.ListIDs(ctx)
		if err != nil {
			return err
		}
		for _, id := range ids {
			item, err := repo.GetItem(ctx, id)
			if err != nil {
				return err
			}
			if item == nil {
				fmt.Fprintf(stdout, "%d\t(missing)\n", id)
				continue
			}
			fmt.Fprintf(stdout, "%d\t%s\t%s\n", item.ID, item.RightAnswer, item.MediaRef)
		}
	}

	return nil
}
