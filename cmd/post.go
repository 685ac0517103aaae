package cmd

import (
	"fmt"

	"chirp/posts"

	"github.com/cqroot/prompt"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli/v2"
)

func postCmd() *cli.Command {
	return &cli.Command{
		Name:  "post",
		Usage: "Write a post from the command line",
		Description: `Prompts for an author id and the post content and creates the post.

The content is validated with the same rules as posts created through
the web interface.`,
		Flags: append(serviceFlags(),
			&cli.StringFlag{
				Name:  "author",
				Usage: "Author id, prompted for when empty",
			},
		),
		Action: func(ctx *cli.Context) error {
			svc, _, database, err := setup(ctx.Context, ctx)
			if err != nil {
				return err
			}
			defer database.Close()

			author := ctx.String("author")
			if author == "" {
				author, err = prompt.New().Ask("Author id:").Input("")
				if err != nil {
					return err
				}
			}

			content, err := prompt.New().Ask("Content:").Input("")
			if err != nil {
				return err
			}

			post, err := svc.Create(ctx.Context, author, content)
			if err != nil {
				if message, ok := posts.FirstFieldError(err, "content"); ok {
					return fmt.Errorf("post rejected: %s", message)
				}
				return err
			}

			log.WithFields(log.Fields{
				"id":        post.Id,
				"author_id": post.AuthorId,
			}).Info("Created post")
			return nil
		},
	}
}
