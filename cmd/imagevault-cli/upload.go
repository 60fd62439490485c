package main

import (
	"context"
	"os"

	"github.com/sagarc03/imagevault/clientcli"
	"github.com/spf13/cobra"
)

var (
	uploadRemoteName string
	uploadReplace    bool
)

var uploadCmd = &cobra.Command{
	Use:   "upload <local-path>",
	Short: "Upload an image to the server",
	Long: `Upload a .jpg or .jpeg image to the server.

The object name defaults to the file's base name. The uploading owner
becomes the object's owner; creating a name that already exists fails,
use --replace to overwrite an object you own.

Examples:
  imagevault-cli upload ./cat.jpg
  imagevault-cli upload --name pets.jpg ./cat.jpg
  imagevault-cli upload --replace ./cat.jpg
  imagevault-cli upload -o alice ./cat.jpg`,
	Args: cobra.ExactArgs(1),
	RunE: runUpload,
}

func init() {
	uploadCmd.Flags().StringVarP(&uploadRemoteName, "name", "n", "", "object name (default: local base name)")
	uploadCmd.Flags().BoolVar(&uploadReplace, "replace", false, "replace an existing object you own")
}

func runUpload(_ *cobra.Command, args []string) error {
	client, err := getClient()
	if err != nil {
		return err
	}

	opts := clientcli.UploadOptions{
		LocalPath:  args[0],
		RemoteName: uploadRemoteName,
		Owner:      ownerFlag,
		Replace:    uploadReplace,
	}

	result, err := client.Upload(context.Background(), opts)
	if err != nil {
		formatter := getFormatter()
		_ = formatter.FormatError(os.Stderr, err)
		return err
	}

	formatter := getFormatter()
	return formatter.FormatUpload(os.Stdout, &result)
}
