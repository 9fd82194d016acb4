package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/poiesic/docindex/frontdoor"
	"github.com/urfave/cli/v2"
)

func serverFlag() cli.Flag {
	return &cli.StringFlag{
		Name:    "server",
		Aliases: []string{"s"},
		Usage:   "Front door gRPC address",
		Value:   "localhost:50051",
		EnvVars: []string{"DOCINDEX_SERVER"},
	}
}

func dial(c *cli.Context) (*frontdoor.Client, error) {
	cfg, err := configFrom(c)
	if err != nil {
		return nil, err
	}
	return frontdoor.Dial(c.String("server"), cfg.MaxMessageSize)
}

func uploadCommand() *cli.Command {
	return &cli.Command{
		Name:      "upload",
		Usage:     "Upload a document",
		ArgsUsage: "<file>",
		Flags:     []cli.Flag{serverFlag()},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("upload requires exactly one file argument")
			}
			path := c.Args().First()
			content, err := os.ReadFile(path)
			if err != nil {
				return err
			}

			client, err := dial(c)
			if err != nil {
				return err
			}
			defer client.Close()

			id, message, err := client.UploadDocument(c.Context, filepath.Base(path), content)
			if err != nil {
				return err
			}
			fmt.Fprintf(c.App.Writer, "%s\n%s\n", message, id)
			return nil
		},
	}
}

func getCommand() *cli.Command {
	return &cli.Command{
		Name:      "get",
		Usage:     "Fetch a document in a single response",
		ArgsUsage: "<document-id>",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Write the content to this file instead of stdout",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("get requires exactly one document id")
			}

			client, err := dial(c)
			if err != nil {
				return err
			}
			defer client.Close()

			_, content, err := client.GetDocument(c.Context, c.Args().First())
			if err != nil {
				return err
			}
			if out := c.String("out"); out != "" {
				return os.WriteFile(out, content, 0644)
			}
			_, err = c.App.Writer.Write(content)
			return err
		},
	}
}

func downloadCommand() *cli.Command {
	return &cli.Command{
		Name:      "download",
		Usage:     "Stream a document to a file",
		ArgsUsage: "<document-id>",
		Flags: []cli.Flag{
			serverFlag(),
			&cli.StringFlag{
				Name:    "out",
				Aliases: []string{"o"},
				Usage:   "Destination file (defaults to the document id)",
			},
		},
		Action: func(c *cli.Context) error {
			if c.NArg() != 1 {
				return fmt.Errorf("download requires exactly one document id")
			}
			id := c.Args().First()
			out := c.String("out")
			if out == "" {
				out = id
			}

			client, err := dial(c)
			if err != nil {
				return err
			}
			defer client.Close()

			f, err := os.Create(out)
			if err != nil {
				return err
			}
			n, err := client.DownloadDocument(c.Context, id, f)
			if closeErr := f.Close(); err == nil {
				err = closeErr
			}
			if err != nil {
				os.Remove(out)
				return err
			}
			fmt.Fprintf(c.App.Writer, "wrote %d bytes to %s\n", n, out)
			return nil
		},
	}
}
