// noteloftctl is an operator tool that works directly against the configured
// database: seeding users, minting notebook API keys and generating vault
// encryption keys. It reads the same NOTELOFT_ environment as the service.
package main

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/crypto/bcrypt"

	"github.com/noteloft/noteloft-server/internal/auth"
	"github.com/noteloft/noteloft-server/internal/config"
	"github.com/noteloft/noteloft-server/internal/model"
	"github.com/noteloft/noteloft-server/internal/secrets"
	"github.com/noteloft/noteloft-server/internal/store"
	"github.com/noteloft/noteloft-server/internal/store/postgres"
	"github.com/noteloft/noteloft-server/internal/store/sqlite"
)

var rootCmd = &cobra.Command{
	Use:   "noteloftctl",
	Short: "Operator tool for the noteloft service database",
}

func openStore() (store.Store, *sql.DB, error) {
	cfg, err := config.New()
	if err != nil {
		return nil, nil, err
	}
	switch cfg.DBDriver {
	case "postgres":
		db, err := postgres.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, nil, err
		}
		if err := postgres.Migrate(db); err != nil {
			return nil, nil, err
		}
		return postgres.New(db), db, nil
	case "sqlite":
		db, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		if err := sqlite.Migrate(db); err != nil {
			return nil, nil, err
		}
		return sqlite.New(db), db, nil
	default:
		return nil, nil, fmt.Errorf("unsupported DB driver: %s", cfg.DBDriver)
	}
}

func main() {
	createUserCmd := &cobra.Command{
		Use:   "create-user",
		Short: "Create a user account",
		RunE: func(cmd *cobra.Command, args []string) error {
			email, _ := cmd.Flags().GetString("email")
			password, _ := cmd.Flags().GetString("password")
			name, _ := cmd.Flags().GetString("name")
			if len(password) < 8 {
				return fmt.Errorf("password must be at least 8 characters")
			}
			st, db, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
			if err != nil {
				return err
			}
			u := &model.User{Email: email, PasswordHash: string(hash)}
			if name != "" {
				u.DisplayName = &name
			}
			out, err := st.Users().Create(context.Background(), u)
			if err != nil {
				return err
			}
			fmt.Printf("created user %s (%s)\n", out.UserID, out.Email)
			return nil
		},
	}
	createUserCmd.Flags().String("email", "", "email address (required)")
	createUserCmd.Flags().String("password", "", "password (required)")
	createUserCmd.Flags().String("name", "", "display name")
	_ = createUserCmd.MarkFlagRequired("email")
	_ = createUserCmd.MarkFlagRequired("password")
	rootCmd.AddCommand(createUserCmd)

	mintKeyCmd := &cobra.Command{
		Use:   "mint-key",
		Short: "Mint a machine API key for a notebook",
		RunE: func(cmd *cobra.Command, args []string) error {
			notebookID, _ := cmd.Flags().GetString("notebook")
			perm, _ := cmd.Flags().GetString("permission")
			p := model.APIKeyPermission(perm)
			if p != model.KeyReadOnly && p != model.KeyFullAccess {
				return fmt.Errorf("permission must be read_only or full_access")
			}
			st, db, err := openStore()
			if err != nil {
				return err
			}
			defer func() { _ = db.Close() }()
			ctx := context.Background()
			if _, err := st.Notebooks().GetByID(ctx, notebookID); err != nil {
				return fmt.Errorf("notebook %s: %w", notebookID, err)
			}
			secret, err := auth.GenerateKey()
			if err != nil {
				return err
			}
			k, err := st.APIKeys().Create(ctx, &model.NotebookAPIKey{
				NotebookID: notebookID,
				Secret:     secret,
				Permission: p,
			})
			if err != nil {
				return err
			}
			// The secret is printed once and not retrievable later.
			fmt.Printf("key %s for notebook %s (%s)\n%s\n", k.KeyID, k.NotebookID, k.Permission, secret)
			return nil
		},
	}
	mintKeyCmd.Flags().String("notebook", "", "notebook id (required)")
	mintKeyCmd.Flags().String("permission", "read_only", "read_only or full_access")
	_ = mintKeyCmd.MarkFlagRequired("notebook")
	rootCmd.AddCommand(mintKeyCmd)

	genKeyCmd := &cobra.Command{
		Use:   "gen-enc-key",
		Short: "Generate a vault encryption key for NOTELOFT_ENCRYPTION_KEY",
		RunE: func(cmd *cobra.Command, args []string) error {
			key, err := secrets.GenerateKey()
			if err != nil {
				return err
			}
			fmt.Println(key)
			return nil
		},
	}
	rootCmd.AddCommand(genKeyCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
