package cmd

import (
	"fmt"
	"io/fs"
	"os"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/cloudly/miniapp"
	"github.com/cloudly/miniapp/internal/db"
	"github.com/cloudly/miniapp/internal/markdown"
	"github.com/cloudly/miniapp/internal/repository"
	"github.com/cloudly/miniapp/internal/service"
)

type dbFlags struct {
	driver     string
	connection string
}

func (f *dbFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.driver, "driver", envOr("DB_DRIVER", "sqlite"), "database driver (sqlite or pgx)")
	cmd.Flags().StringVar(&f.connection, "db", envOr("DB_CONNECTION", "./data/miniapp.db?_pragma=foreign_keys(1)"), "database connection string")
}

func (f *dbFlags) open() (*sqlx.DB, error) {
	return db.Init(f.driver, f.connection)
}

func MigrateCmd() *cobra.Command {
	var flags dbFlags
	var down bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations (or roll back the latest with --down)",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := flags.open()
			if err != nil {
				return err
			}
			defer database.Close()

			if down {
				return db.MigrateDown(database.DB, flags.driver)
			}
			return db.RunMigrations(database.DB, flags.driver)
		},
	}

	flags.register(cmd)
	cmd.Flags().BoolVar(&down, "down", false, "roll back the most recent migration")
	return cmd
}

func SeedCmd() *cobra.Command {
	var flags dbFlags
	var contentPath string

	cmd := &cobra.Command{
		Use:   "seed",
		Short: "Import courses from markdown files, skipping existing titles",
		RunE: func(cmd *cobra.Command, args []string) error {
			database, err := flags.open()
			if err != nil {
				return err
			}
			defer database.Close()

			err = db.RunMigrations(database.DB, flags.driver)
			if err != nil {
				return err
			}

			fsys, err := contentFS(contentPath)
			if err != nil {
				return err
			}

			catalog := service.NewCatalogService(repository.NewCourseRepository(database), markdown.NewParser())
			created, err := catalog.Seed(cmd.Context(), fsys)
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "created %d course(s)\n", created)
			return nil
		},
	}

	flags.register(cmd)
	cmd.Flags().StringVar(&contentPath, "content", envOr("CONTENT_PATH", ""), "content directory (defaults to the bundled courses)")
	return cmd
}

func contentFS(path string) (fs.FS, error) {
	if path == "" {
		return fs.Sub(miniapp.ContentFS, "content")
	}
	info, err := os.Stat(path)
	if err != nil {
		return nil, err
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%s is not a directory", path)
	}
	return os.DirFS(path), nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}
