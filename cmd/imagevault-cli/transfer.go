package main

import (
	"context"
	"os"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/spf13/cobra"
)

var transferCmd = &cobra.Command{
	Use:   "transfer <old-owner> <new-owner>",
	Short: "Transfer all objects from one owner to another",
	Long: `Transfer every object held by old-owner to new-owner.

The command prints new-owner's complete holdings afterwards, which
includes objects new-owner already held before the transfer.

Examples:
  imagevault-cli transfer alice bob`,
	Args: cobra.ExactArgs(2),
	RunE: runTransfer,
}

func runTransfer(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	entries, err := client.Transfer(context.Background(), clientcli.TransferOptions{
		OldOwner: args[0],
		NewOwner: args[1],
	})
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	return formatter.FormatCatalog(os.Stdout, entries)
}
