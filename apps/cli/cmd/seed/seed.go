// Package seedcmd loads sample wallpapers into the catalog for development.
package seedcmd

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/repo"
	"github.com/wallpapersverse/wallpapers-api/domains/wallpapers/be/service"
	"github.com/wallpapersverse/wallpapers-api/platform/go/persistence"
	"github.com/wallpapersverse/wallpapers-api/platform/go/slug"
)

var sampleWallpapers = []service.CreateInput{
	{Title: "Misty Mountain Sunrise", Category: "nature", Tags: []string{"mountains", "fog", "sunrise"}, Resolution: "1170x2532", DeviceType: "phone"},
	{Title: "Neon City Nights", Category: "dark", Tags: []string{"city", "neon", "night"}, Resolution: "1170x2532", DeviceType: "phone"},
	{Title: "Geometric Waves", Category: "abstract", Tags: []string{"geometry", "waves"}, Resolution: "2560x1440", DeviceType: "desktop"},
	{Title: "Pure White Space", Category: "minimal", Tags: []string{"white", "clean"}, Resolution: "2560x1440", DeviceType: "desktop"},
	{Title: "Andromeda Galaxy", Category: "space", Tags: []string{"galaxy", "stars"}, Resolution: "2048x2732", DeviceType: "tablet"},
	{Title: "Golden Retriever Portrait", Category: "animals", Tags: []string{"dog", "portrait"}, Resolution: "1170x2532", DeviceType: "phone"},
	{Title: "Classic Roadster", Category: "cars", Tags: []string{"vintage", "roadster"}, Resolution: "2560x1440", DeviceType: "desktop"},
	{Title: "Brutalist Tower", Category: "architecture", Tags: []string{"concrete", "tower"}, Resolution: "1170x2532", DeviceType: "phone"},
}

// Command seeds the catalog with sample data.
func Command() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "seed",
		Short: "Insert sample wallpapers for local development",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()
			_ = godotenv.Load()

			if databaseURL == "" {
				databaseURL = os.Getenv("DATABASE_URL")
			}
			if strings.TrimSpace(databaseURL) == "" {
				return fmt.Errorf("database url is required (flag --database-url or DATABASE_URL)")
			}

			pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
			if err != nil {
				return fmt.Errorf("init pool: %w", err)
			}
			defer persistence.ClosePool(pool)

			store, err := persistence.NewWallpaperStore(ctx, pool)
			if err != nil {
				return fmt.Errorf("init wallpaper store: %w", err)
			}
			svc := service.New(repo.NewPostgresRepository(store))

			created := 0
			for _, input := range sampleWallpapers {
				base := slug.Generate(input.Title, slug.Options{})
				exists, err := svc.SlugExists(ctx, base, "")
				if err != nil {
					return fmt.Errorf("check %q: %w", base, err)
				}
				if exists {
					// already seeded
					continue
				}
				if _, err := svc.Create(ctx, input); err != nil {
					return fmt.Errorf("seed %q: %w", input.Title, err)
				}
				created++
			}

			fmt.Printf("seeded %d wallpapers\n", created)
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	return c
}
