package main

import (
	"context"
	"io"
	"os"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/spf13/cobra"
)

var (
	downloadOutput string
	downloadStdout bool
)

var downloadCmd = &cobra.Command{
	Use:   "download <name> [local-path]",
	Short: "Download an object from the server",
	Long: `Download an object from the server.

Only the object's owner can download it; anyone else gets a 403.

Examples:
  imagevault-cli download cat.jpg
  imagevault-cli download cat.jpg ./copy.jpg
  imagevault-cli download --stdout cat.jpg > cat.jpg
  imagevault-cli download -o alice cat.jpg`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runDownload,
}

func init() {
	downloadCmd.Flags().StringVar(&downloadOutput, "output", "", "output file path")
	downloadCmd.Flags().BoolVar(&downloadStdout, "stdout", false, "write to stdout")
}

func runDownload(_ *cobra.Command, args []string) error {
	remoteName := args[0]

	localPath := ""
	if len(args) > 1 {
		localPath = args[1]
	}
	if downloadOutput != "" {
		localPath = downloadOutput
	}
	if downloadStdout {
		localPath = "-"
	}

	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.DownloadOptions{
		RemoteName: remoteName,
		LocalPath:  localPath,
		Owner:      ownerFlag,
	}

	result, reader, err := client.Download(context.Background(), opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	// Stdout mode: stream the content, keep metadata off stdout.
	if reader != nil {
		defer func() { _ = reader.Close() }()
		if _, err := io.Copy(os.Stdout, reader); err != nil {
			return err
		}
		if jsonOutput {
			formatter := getFormatter()
			return formatter.FormatDownload(os.Stderr, &result)
		}
		return nil
	}

	formatter := getFormatter()
	return formatter.FormatDownload(os.Stdout, &result)
}
