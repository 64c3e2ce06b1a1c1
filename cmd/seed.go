package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ziadkadry99/dirpage/internal/api"
	"github.com/ziadkadry99/dirpage/internal/db"
	"github.com/ziadkadry99/dirpage/internal/directory"
	"github.com/ziadkadry99/dirpage/internal/mock"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Store a directory payload in the API database",
	Long: `Stores a directory in the SQLite database served by the built-in directory
API. The payload comes from a JSON file in the API's response format, or from
the sample data generator with --mock.`,
	RunE: runSeed,
}

func init() {
	seedCmd.Flags().String("key", "", "directory key (required)")
	seedCmd.Flags().String("file", "", "JSON payload file")
	seedCmd.Flags().Bool("mock", false, "store the sample payload for key")
	seedCmd.Flags().Bool("delete", false, "remove the directory instead")
	seedCmd.MarkFlagRequired("key")
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	key, _ := cmd.Flags().GetString("key")
	file, _ := cmd.Flags().GetString("file")
	useMock, _ := cmd.Flags().GetBool("mock")
	del, _ := cmd.Flags().GetBool("delete")
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return fmt.Errorf("--key must not be empty")
	}

	database, err := db.Open(cfg.API.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()
	store := api.NewStore(database)
	ctx := cmd.Context()

	if del {
		existed, err := store.Delete(ctx, key)
		if err != nil {
			return err
		}
		if !existed {
			return fmt.Errorf("directory %q not found", key)
		}
		fmt.Fprintf(os.Stderr, "Deleted %s\n", key)
		return nil
	}

	var p *directory.Payload
	switch {
	case useMock && file != "":
		return fmt.Errorf("--mock and --file are mutually exclusive")
	case useMock:
		p = mock.For(key, time.Now())
	case file != "":
		data, err := os.ReadFile(file)
		if err != nil {
			return fmt.Errorf("reading %s: %w", file, err)
		}
		p = &directory.Payload{}
		if err := json.Unmarshal(data, p); err != nil {
			return fmt.Errorf("parsing %s: %w", file, err)
		}
		if p.Listings == nil {
			return fmt.Errorf("%s has no listings array", file)
		}
		p.Normalize(key)
	default:
		return fmt.Errorf("one of --file or --mock is required")
	}

	if err := store.Put(ctx, key, p); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "Stored %s (%d listings) in %s\n", key, len(p.Listings), cfg.API.DBPath)
	return nil
}
