package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/spf13/cobra"

	"savehaven/internal/app"
	"savehaven/internal/config"
	"savehaven/internal/database/sqlc"
	"savehaven/internal/encryption"
	"savehaven/internal/haven"
	"savehaven/internal/menu"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

var verbose bool

// loadConfig reads the config, creating it with defaults on first run.
func loadConfig() (*config.Config, error) {
	cfg, path, created, err := app.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("reading config: %w", err)
	}
	if created {
		fmt.Fprintf(os.Stderr, "Created configuration at %s\n", path)
	}
	return cfg, nil
}

// withApp builds an App for the duration of fn. An error from Close (for
// example a failed catalogue upload) is returned when fn itself succeeded.
func withApp(fn func(a *app.App) error) (err error) {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	a, err := app.New(context.Background(), cfg, app.Options{
		Verbose:    verbose,
		Stderr:     os.Stderr,
		Passphrase: app.TerminalPassphrase("Passphrase: ", os.Stdin, os.Stderr),
	})
	if err != nil {
		return fmt.Errorf("initializing app: %w", err)
	}
	defer func() {
		if cerr := a.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return fn(a)
}

var rootCmd = &cobra.Command{
	Use:          "savehaven",
	Short:        "Catalogue, back up and restore game saves",
	Args:         cobra.NoArgs,
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			return menu.New(a, os.Stdin, os.Stdout, a.Logger()).Run()
		})
	},
}

// config command
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Initialize configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, path, created, err := app.LoadConfig()
		if err != nil {
			return fmt.Errorf("failed to initialize config: %w", err)
		}
		if !created {
			return fmt.Errorf("config file already exists at %s", path)
		}

		fmt.Printf("Configuration initialized at %s\n", path)
		fmt.Printf("Host ID: %s\n", cfg.HostID)
		fmt.Printf("Base Dir: %s\n", cfg.BaseDir)
		return nil
	},
}

var configListCmd = &cobra.Command{
	Use:   "list",
	Short: "View configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		fmt.Printf("Host ID:    %s\n", cfg.HostID)
		fmt.Printf("Base Dir:   %s\n", cfg.BaseDir)
		fmt.Printf("Log Dir:    %s\n", cfg.LogDir)
		fmt.Printf("Database:   %s %s\n", cfg.Database.Type, cfg.Database.DataDir)
		switch cfg.Store.Type {
		case "s3":
			fmt.Printf("Store:      s3://%s/%s\n", cfg.Store.S3Bucket, cfg.Store.S3Prefix)
		default:
			fmt.Printf("Store:      %s %s\n", cfg.Store.Type, cfg.Store.FSRoot)
		}
		fmt.Printf("Encryption: %s\n", cfg.Encryption.Type)
		return nil
	},
}

var configKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "Generate the encryption key pair",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}

		enc, err := encryption.NewEncryptorFromConfig(cfg.Encryption)
		if err != nil {
			return err
		}
		if enc.IsConfigured() {
			return fmt.Errorf("%w at %s", encryption.ErrKeysExist, cfg.Encryption.PublicKeyPath)
		}

		passphrase, err := app.TerminalPassphrase("New passphrase: ", os.Stdin, os.Stderr)()
		if err != nil {
			return err
		}
		confirm, err := app.TerminalPassphrase("Repeat passphrase: ", os.Stdin, os.Stderr)()
		if err != nil {
			return err
		}
		if passphrase != confirm {
			return fmt.Errorf("passphrases do not match")
		}

		if err := enc.Setup(passphrase); err != nil {
			return fmt.Errorf("generating keys: %w", err)
		}

		fmt.Printf("Public key:  %s\n", cfg.Encryption.PublicKeyPath)
		fmt.Printf("Private key: %s\n", cfg.Encryption.PrivateKeyPath)
		if cfg.Encryption.Type != "age" {
			fmt.Println(`Set type = "age" in the [encryption] section to encrypt new backups.`)
		}
		return nil
	},
}

var configRestoreCatalogCmd = &cobra.Command{
	Use:   "restore-catalog",
	Short: "Replace the local catalogue with the snapshot held in the store",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		host, _ := cmd.Flags().GetString("host")
		force, _ := cmd.Flags().GetBool("force")

		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		path, err := app.RestoreCatalog(context.Background(), cfg, host, force)
		if err != nil {
			return err
		}
		fmt.Printf("Catalogue restored to %s\n", path)
		return nil
	},
}

// add command
var addCmd = &cobra.Command{
	Use:   "add PATH",
	Short: "Back up a save file or directory",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		title, _ := cmd.Flags().GetString("title")
		publisher, _ := cmd.Flags().GetString("publisher")
		released, _ := cmd.Flags().GetString("released")
		platform, _ := cmd.Flags().GetString("platform")
		notes, _ := cmd.Flags().GetString("notes")

		releaseDate, err := haven.ParseReleaseDate(released)
		if err != nil {
			return err
		}

		return withApp(func(a *app.App) error {
			record, err := a.AddSave(haven.AddSaveRequest{
				Title:       title,
				Publisher:   publisher,
				ReleaseDate: releaseDate,
				Platform:    platform,
				SavePath:    args[0],
				Notes:       notes,
			})
			if err != nil {
				return err
			}
			fmt.Printf("Save #%d added for %s\n", record.Save.ID, record.Game.Title)
			fmt.Printf("Stored at %s\n", record.Location.LocationPath)
			return nil
		})
	},
}

// games command
var gamesCmd = &cobra.Command{
	Use:   "games",
	Short: "List catalogued games",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			games, err := a.ListGames()
			if err != nil {
				return err
			}
			if len(games) == 0 {
				fmt.Println("No games catalogued.")
				return nil
			}
			for _, g := range games {
				fmt.Printf("%-40s  %-20s  %s\n", g.Title, g.Publisher, haven.FormatReleaseDate(g.ReleaseDate))
			}
			return nil
		})
	},
}

// saves command
var savesCmd = &cobra.Command{
	Use:   "saves TITLE",
	Short: "List the saves of a game",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return withApp(func(a *app.App) error {
			saves, err := a.ListSaves(args[0])
			if err != nil {
				return err
			}
			if len(saves) == 0 {
				fmt.Println("No saves recorded.")
				return nil
			}
			for _, s := range saves {
				platform := "-"
				if s.Platform != nil {
					platform = s.Platform.PlatformName
				}
				fmt.Printf("#%d  %s  %-10s  %s  %s\n",
					s.Save.ID,
					s.Save.CreatedAt.Local().Format("2006-01-02 15:04:05"),
					platform,
					s.Location.Description,
					s.Save.Metadata,
				)
			}
			return nil
		})
	},
}

// restore command
var restoreCmd = &cobra.Command{
	Use:   "restore SAVE_ID",
	Short: "Copy a backed up save back to its location",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		to, _ := cmd.Flags().GetString("to")
		id, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return fmt.Errorf("%w: save id %q is not a number", haven.ErrParse, args[0])
		}

		return withApp(func(a *app.App) error {
			restored, err := a.Restore(id, to)
			if err != nil {
				return err
			}
			fmt.Printf("Restored to %s\n", restored)
			return nil
		})
	},
}

// history command
var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "View operation history",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		limit, _ := cmd.Flags().GetInt("limit")

		return withApp(func(a *app.App) error {
			ops, err := a.GetHistory(limit)
			if err != nil {
				return err
			}
			if len(ops) == 0 {
				fmt.Println("No operations recorded.")
				return nil
			}
			for _, op := range ops {
				printOperation(op)
			}
			return nil
		})
	},
}

func printOperation(op *sqlc.Operation) {
	duration := ""
	if op.FinishedAt.Valid {
		d := op.FinishedAt.Time.Sub(op.StartedAt)
		duration = d.Truncate(time.Millisecond).String()
	}
	fmt.Printf("#%d  %-8s  %s  %-8s  %-8s  %s\n",
		op.ID,
		op.Operation,
		op.StartedAt.Local().Format("2006-01-02 15:04:05"),
		op.Status,
		duration,
		op.Parameters,
	)
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Copy log output to stderr")

	// config subcommands
	configCmd.AddCommand(configInitCmd)
	configCmd.AddCommand(configListCmd)
	configCmd.AddCommand(configKeysCmd)
	configCmd.AddCommand(configRestoreCatalogCmd)

	configRestoreCatalogCmd.Flags().String("host", "", "Host whose snapshot to restore (default: this host)")
	configRestoreCatalogCmd.Flags().Bool("force", false, "Replace an existing catalogue")

	addCmd.Flags().StringP("title", "t", "", "Game title (required)")
	addCmd.Flags().String("publisher", "", "Publisher")
	addCmd.Flags().String("released", "", "Release date, YYYY-MM-DD")
	addCmd.Flags().StringP("platform", "p", "", "Platform")
	addCmd.Flags().String("notes", "", "Free-form notes")
	addCmd.MarkFlagRequired("title")

	restoreCmd.Flags().String("to", "", "Destination (default: the path the save was copied from)")
	historyCmd.Flags().IntP("limit", "n", 50, "Maximum number of operations to show")

	// root commands
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(addCmd)
	rootCmd.AddCommand(gamesCmd)
	rootCmd.AddCommand(savesCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(historyCmd)
}
