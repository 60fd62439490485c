package main

import (
	"context"
	"os"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/spf13/cobra"
)

var (
	queryCreationDate     string
	queryModificationDate string
	queryOwner            string
)

var queryCmd = &cobra.Command{
	Use:   "query <filter-type>",
	Short: "Query the object catalog",
	Long: `Query the object catalog with one of the supported filters.

Filter types:
  ByModificationDate        objects modified before --modified-before
  ByCreationDateAscending   objects created after --created-after, oldest first
  ByCreationDateDescending  objects created after --created-after, newest first
  ByOwner                   objects owned by --query-owner

Dates are RFC 3339. A date filter without its date returns no results.

Examples:
  imagevault-cli query ByOwner --query-owner alice
  imagevault-cli query ByCreationDateAscending --created-after 2024-01-01T00:00:00Z
  imagevault-cli query ByModificationDate --modified-before 2024-06-01T00:00:00Z`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().StringVar(&queryCreationDate, "created-after", "", "creation date cutoff (RFC 3339)")
	queryCmd.Flags().StringVar(&queryModificationDate, "modified-before", "", "modification date cutoff (RFC 3339)")
	queryCmd.Flags().StringVar(&queryOwner, "query-owner", "", "owner to match for ByOwner")
}

func runQuery(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.QueryOptions{
		FilterType:       args[0],
		CreationDate:     queryCreationDate,
		ModificationDate: queryModificationDate,
		Owner:            queryOwner,
	}

	entries, err := client.Query(context.Background(), opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	return formatter.FormatCatalog(os.Stdout, entries)
}
