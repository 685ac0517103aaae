package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"chirp/models"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func feedCmd() *cli.Command {
	return &cli.Command{
		Name:  "feed",
		Usage: "Print the feed to the command line",
		Description: `Prints the most recent posts joined with their authors.

Returns each entry as a JSON object on a single line. Use a tool like jq to
process the output.

Prints all other log messages to stderr.`,
		Flags: append(serviceFlags(),
			&cli.StringFlag{
				Name:  "author",
				Usage: "Only print posts by this author id",
			},
		),
		Action: func(ctx *cli.Context) error {
			// Keep stdout for the entries
			log.SetOutput(os.Stderr)

			svc, _, database, err := setup(ctx.Context, ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			var entries []models.FeedEntry
			if author := ctx.String("author"); author != "" {
				entries, err = svc.GetByAuthor(ctx.Context, author)
			} else {
				entries, err = svc.GetAll(ctx.Context)
			}
			if err != nil {
				return err
			}

			return printEntries(os.Stdout, entries)
		},
	}
}

// printEntries writes one JSON object per line
func printEntries(w io.Writer, entries []models.FeedEntry) error {
	for _, entry := range entries {
		line, err := json.Marshal(entry)
		if err != nil {
			return fmt.Errorf("could not encode post %s: %w", entry.Post.Id, err)
		}
		if _, err := fmt.Fprintln(w, string(line)); err != nil {
			return err
		}
	}
	return nil
}
