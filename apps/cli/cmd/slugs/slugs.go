// Package slugscmd holds the slug maintenance commands.
package slugscmd

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

// Command groups slug-related helpers.
func Command() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slugs",
		Short: "Slug utilities (backfill, suggest, validate)",
	}

	cmd.AddCommand(backfillCommand())
	cmd.AddCommand(suggestCommand())
	cmd.AddCommand(validateCommand())
	return cmd
}

func backfillCommand() *cobra.Command {
	var databaseURL string

	c := &cobra.Command{
		Use:   "backfill",
		Short: "Assign slugs to every wallpaper that is missing one",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := context.Background()

			svc, cleanup, err := wireService(ctx, databaseURL)
			if err != nil {
				return err
			}
			defer cleanup()

			result, err := svc.BackfillMissingSlugs(ctx)
			if err != nil {
				return fmt.Errorf("backfill slugs: %w", err)
			}

			fmt.Printf("updated %d wallpapers\n", result.Updated)
			for _, msg := range result.Errors {
				fmt.Fprintln(os.Stderr, msg)
			}
			if len(result.Errors) > 0 {
				return fmt.Errorf("%d wallpapers could not be updated", len(result.Errors))
			}
			return nil
		},
	}

	c.Flags().StringVar(&databaseURL, "database-url", "", "Postgres connection string (defaults to DATABASE_URL)")
	return c
}

func suggestCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "suggest <title>",
		Short: "Print slug suggestions for a title",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			title := strings.Join(args, " ")
			for _, s := range slug.Suggestions(title) {
				fmt.Println(s)
			}
			return nil
		},
	}
}

func validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <slug>",
		Short: "Lint a slug and print findings",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			validation := slug.Validate(args[0])
			if validation.Valid {
				fmt.Printf("%s is valid\n", validation.Slug)
			} else {
				fmt.Printf("%s is invalid\n", args[0])
			}
			for _, e := range validation.Errors {
				fmt.Printf("  error: %s\n", e)
			}
			for _, s := range validation.Suggestions {
				fmt.Printf("  hint: %s\n", s)
			}
			if !validation.Valid {
				return fmt.Errorf("slug failed validation")
			}
			return nil
		},
	}
}

// wireService builds a Postgres-backed wallpapers service for CLI use.
func wireService(ctx context.Context, databaseURL string) (*service.Service, func(), error) {
	_ = godotenv.Load()

	if databaseURL == "" {
		databaseURL = os.Getenv("DATABASE_URL")
	}
	if strings.TrimSpace(databaseURL) == "" {
		return nil, nil, fmt.Errorf("database url is required (flag --database-url or DATABASE_URL)")
	}

	pool, err := persistence.NewPool(ctx, persistence.PoolConfig{ConnString: databaseURL})
	if err != nil {
		return nil, nil, fmt.Errorf("init pool: %w", err)
	}

	store, err := persistence.NewWallpaperStore(ctx, pool)
	if err != nil {
		persistence.ClosePool(pool)
		return nil, nil, fmt.Errorf("init wallpaper store: %w", err)
	}

	svc := service.New(repo.NewPostgresRepository(store))
	return svc, func() { persistence.ClosePool(pool) }, nil
}
