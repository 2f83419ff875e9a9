package main

import (
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/GyroZepelix/library-cms/internal/seed"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load a YAML fixture into the database",
	Long: `Upserts organizations, categories, subcategories, tags, authors, media,
library entries and users from a YAML fixture. Records are matched by natural
key (name, slug, URL or email), so seeding the same file twice is safe.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		fixture, err := seed.LoadFile(seedFile)
		if err != nil {
			return err
		}

		db, err := connect(cmd.Context())
		if err != nil {
			return err
		}
		defer db.Close()

		sum, err := seed.Run(cmd.Context(), db, fixture)
		if err != nil {
			return err
		}

		slog.Info("fixture seeded",
			"file", seedFile,
			"organizations", sum.Organizations,
			"categories", sum.Categories,
			"subcategories", sum.Subcategories,
			"tags", sum.Tags,
			"authors", sum.Authors,
			"media", sum.Media,
			"entries", sum.Entries,
			"users", sum.Users,
		)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "fixtures/library.yaml", "path to the YAML fixture")
}
