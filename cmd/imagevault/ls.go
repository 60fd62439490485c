package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/sagarc03/imagevault/config"
)

var lsCmd = &cobra.Command{
	Use:   "ls",
	Short: "List objects in storage",
	Long: `List every object in the storage directory with its owner and
timestamps, reading the metadata sidecars directly.

Objects whose sidecar is missing or unreadable are not listed.`,
	Args: cobra.NoArgs,
	RunE: runLs,
}

var lsOwner string

func init() {
	lsCmd.Flags().StringVar(&lsOwner, "owner", "", "only list objects held by this owner")
	rootCmd.AddCommand(lsCmd)
}

func runLs(cmd *cobra.Command, args []string) error {
	cfg, err := config.FromContext(cmd.Context())
	if err != nil {
		return err
	}

	store, cleanup, err := openStore(cfg.Storage.Path)
	if err != nil {
		return err
	}
	defer cleanup()

	objects, err := store.Enumerate(cmd.Context())
	if err != nil {
		return fmt.Errorf("list storage: %w", err)
	}

	count := 0
	for _, obj := range objects {
		if lsOwner != "" && obj.Metadata.Owner != lsOwner {
			continue
		}
		fmt.Printf("%s\t%s\tcreated %s\tmodified %s\n",
			obj.Name,
			obj.Metadata.Owner,
			obj.Metadata.CreatedAt.Format("2006-01-02 15:04:05"),
			obj.Metadata.ModifiedAt.Format("2006-01-02 15:04:05"),
		)
		count++
	}

	fmt.Printf("%d object(s)\n", count)
	return nil
}
