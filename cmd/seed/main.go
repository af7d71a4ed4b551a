package main

import (
	"fmt"
	"os"

	humanize "github.com/dustin/go-humanize/english"
	"github.com/robinjoseph08/golib/logger"
	"github.com/shishobooks/locallibrary/pkg/config"
	"github.com/shishobooks/locallibrary/pkg/database"
	"github.com/shishobooks/locallibrary/pkg/sampledata"
	"github.com/shishobooks/locallibrary/pkg/store"
	"github.com/urfave/cli/v2"
)

func main() {
	log := logger.New()

	cfg, err := config.New()
	if err != nil {
		log.Err(err).Fatal("config error")
	}

	var s store.Store

	app := &cli.App{
		Name:        "seed",
		Usage:       "CLI to fill or clear the catalog",
		Description: "CLI to fill or clear the catalog",
		Before: func(c *cli.Context) error {
			s, err = database.OpenStore(log.WithContext(c.Context), cfg)
			return err
		},
		After: func(_ *cli.Context) error {
			if s == nil {
				return nil
			}
			return s.Close()
		},
		Commands: []*cli.Command{
			{
				Name:  "populate",
				Usage: "insert the sample catalog",
				Action: func(c *cli.Context) error {
					sum, err := sampledata.Populate(c.Context, s)
					if err != nil {
						return err
					}
					printSummary("Inserted", sum)
					return nil
				},
			},
			{
				Name:  "reset",
				Usage: "delete every catalog record",
				Action: func(c *cli.Context) error {
					sum, err := sampledata.Reset(c.Context, s)
					if err != nil {
						return err
					}
					printSummary("Deleted", sum)
					return nil
				},
			},
		},
	}
	if err := app.Run(os.Args); err != nil {
		log.Err(err).Fatal("app run error")
	}
}

func printSummary(verb string, sum *sampledata.Summary) {
	fmt.Printf("%s %s, %s, %s and %s\n", verb,
		humanize.Plural(sum.Authors, "author", ""),
		humanize.Plural(sum.Genres, "genre", ""),
		humanize.Plural(sum.Books, "book", ""),
		humanize.Plural(sum.BookInstances, "book copy", "book copies"),
	)
}
