package main

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"
	"github.com/urfave/cli/v2"

	"github.com/yigit/allotment/internal/app/migrations"
	"github.com/yigit/allotment/internal/bootstrap"
	"github.com/yigit/allotment/internal/config"
	"github.com/yigit/allotment/internal/db"
	"github.com/yigit/allotment/internal/pkg/apperrors"
	"github.com/yigit/allotment/internal/pkg/auth"
	"github.com/yigit/allotment/internal/pkg/csvimport"
)

func newApp() *cli.App {
	return &cli.App{
		Name:  "allotctl",
		Usage: "maintain student subject-allotment records",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "path to the YAML config file",
				Value:   config.DefaultConfigPath,
				EnvVars: []string{"ALLOTMENT_CONFIG"},
			},
		},
		Commands: []*cli.Command{
			migrateCommand(),
			importCommand(),
			purgeCommand(),
			hashPasswordCommand(),
		},
	}
}

func migrateCommand() *cli.Command {
	return &cli.Command{
		Name:  "migrate",
		Usage: "apply pending schema migrations",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "status", Usage: "list migrations without applying them"},
		},
		Action: func(c *cli.Context) error {
			return withDatabase(c, func(ctx context.Context, _ *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error {
				if c.Bool("status") {
					migrator, err := migrations.NewMigrator(pool, lgr)
					if err != nil {
						return err
					}
					statuses, err := migrator.Status(ctx)
					if err != nil {
						return err
					}
					for _, st := range statuses {
						state := "pending"
						if st.Applied {
							state = "applied"
						}
						fmt.Fprintf(c.App.Writer, "%s\t%s\t%s\n", st.Version, st.Name, state)
					}
					return nil
				}

				applied, err := bootstrap.RunMigrations(ctx, pool, lgr)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Applied %d migration(s)\n", applied)
				return nil
			})
		},
	}
}

func importCommand() *cli.Command {
	return &cli.Command{
		Name:      "import",
		Usage:     "import a student allotment CSV",
		ArgsUsage: " ",
		Flags: []cli.Flag{
			&cli.PathFlag{Name: "file", Aliases: []string{"f"}, Usage: "CSV file to import", Required: true},
		},
		Action: func(c *cli.Context) error {
			path := c.Path("file")
			if !csvimport.AllowedFile(path) {
				return fmt.Errorf("%s: %w", path, apperrors.ErrUnsupportedFileType)
			}

			f, err := os.Open(path)
			if err != nil {
				return fmt.Errorf("failed to open %s: %w", path, err)
			}
			defer f.Close()

			return withDatabase(c, func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error {
				deps, err := bootstrap.BuildDependencies(cfg, pool, lgr)
				if err != nil {
					return err
				}

				imported, err := deps.RecordService.ImportCSV(ctx, filepath.Base(path), f)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "Students uploaded successfully! Total records: %d\n", imported)
				return nil
			})
		},
	}
}

func purgeCommand() *cli.Command {
	return &cli.Command{
		Name:  "purge",
		Usage: "delete every student record",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "yes", Usage: "confirm deletion of all records"},
		},
		Action: func(c *cli.Context) error {
			if !c.Bool("yes") {
				return errors.New("refusing to delete all records without --yes")
			}

			return withDatabase(c, func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error {
				deps, err := bootstrap.BuildDependencies(cfg, pool, lgr)
				if err != nil {
					return err
				}

				deleted, err := deps.RecordService.DeleteAll(ctx)
				if err != nil {
					return err
				}
				fmt.Fprintf(c.App.Writer, "All student data deleted successfully! (%d records)\n", deleted)
				return nil
			})
		},
	}
}

func hashPasswordCommand() *cli.Command {
	return &cli.Command{
		Name:  "hash-password",
		Usage: "print a bcrypt hash for admin.password_hash; reads the password from stdin when --password is not set",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "password", Usage: "password to hash"},
			&cli.IntFlag{Name: "cost", Usage: "bcrypt work factor", Value: auth.DefaultBcryptCost},
		},
		Action: func(c *cli.Context) error {
			password := c.String("password")
			if password == "" {
				line, err := bufio.NewReader(c.App.Reader).ReadString('\n')
				if err != nil && line == "" {
					return errors.New("no password given")
				}
				password = strings.TrimRight(line, "\r\n")
			}
			hasher, err := auth.NewPasswordHasher(c.Int("cost"))
			if err != nil {
				return err
			}

			hash, err := hasher.Hash(password)
			if err != nil {
				return err
			}
			fmt.Fprintln(c.App.Writer, hash)
			return nil
		},
	}
}

type dbAction func(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, lgr zerolog.Logger) error

// withDatabase loads config, connects and runs fn, closing the pool afterwards
func withDatabase(c *cli.Context, fn dbAction) error {
	cfg, lgr, err := bootstrap.LoadConfigFromPath(c.String("config"))
	if err != nil {
		return err
	}

	ctx := c.Context
	database, err := db.NewPostgresDB(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close()

	return fn(ctx, cfg, database.Pool, lgr)
}
