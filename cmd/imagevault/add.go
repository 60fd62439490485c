package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/sagarc03/imagevault"
	"github.com/sagarc03/imagevault/config"
)

var addCmd = &cobra.Command{
	Use:   "add --owner <owner> <file1> [file2] ...",
	Short: "Import image files into storage",
	Long: `Import local image files into the storage directory without going
through the HTTP API. Each file gets a metadata sidecar recording the
given owner.

Only .jpg and .jpeg files are accepted. Files whose name is already
taken are skipped unless --replace is set.

Examples:
  # Add a single file owned by alice
  imagevault add --owner alice /path/to/photo.jpg

  # Add several files, replacing existing ones
  imagevault add --owner alice --replace a.jpg b.jpeg`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

var (
	addOwner   string
	addReplace bool
	addQuiet   bool
)

func init() {
	addCmd.Flags().StringVar(&addOwner, "owner", "", "owner recorded for the imported files (required)")
	addCmd.Flags().BoolVar(&addReplace, "replace", false, "replace existing objects instead of skipping them")
	addCmd.Flags().BoolVarP(&addQuiet, "quiet", "q", false, "suppress per-file output")
	_ = addCmd.MarkFlagRequired("owner")
	rootCmd.AddCommand(addCmd)
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	service, err := imagevault.NewService(store)
	if err != nil {
		return fmt.Errorf("create service: %w", err)
	}

	ctx := cmd.Context()
	failures := 0

	for _, sourcePath := range args {
		base := filepath.Base(sourcePath)
		name, nameErr := imagevault.ParseObjectName(base)
		if nameErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", sourcePath, nameErr)
			failures++
			continue
		}

		f, openErr := os.Open(filepath.Clean(sourcePath))
		if openErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", sourcePath, openErr)
			failures++
			continue
		}

		_, _, addErr := service.Create(ctx, base, f, addOwner)
		if errors.Is(addErr, imagevault.ErrConflict) && addReplace {
			if _, seekErr := f.Seek(0, 0); seekErr != nil {
				_ = f.Close()
				fmt.Fprintf(os.Stderr, "error: %s: %v\n", sourcePath, seekErr)
				failures++
				continue
			}
			_, addErr = service.Replace(ctx, base, f, addOwner)
		}
		_ = f.Close()

		if addErr != nil {
			fmt.Fprintf(os.Stderr, "error: %s: %v\n", sourcePath, addErr)
			failures++
			continue
		}

		if !addQuiet {
			fmt.Printf("added %s (owner %s)\n", name, addOwner)
		}
	}

	if failures > 0 {
		return fmt.Errorf("%d file(s) failed", failures)
	}
	return nil
}
