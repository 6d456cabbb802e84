package main

import (
	"bufio"
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/seedclassifier/internal/common"
	"github.com/dmitrijs2005/seedclassifier/internal/cryptox"
	"github.com/dmitrijs2005/seedclassifier/internal/logging"
	"github.com/dmitrijs2005/seedclassifier/internal/server/config"
	"github.com/dmitrijs2005/seedclassifier/internal/server/repositories/repomanager"
	"github.com/dmitrijs2005/seedclassifier/internal/server/services"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

// Replaced in tests.
var (
	openDB       = repomanager.Open
	newManager   = repomanager.NewPostgresRepositoryManager
	isTerminal   = term.IsTerminal
	readPassword = term.ReadPassword
)

const dsnEnv = "DATABASE_DSN"

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "admin",
		Short:        "Seed classifier backend administration",
		SilenceUsage: true,
	}

	def := &config.Config{}
	def.LoadDefaults()
	dsn := def.DatabaseDSN
	if v, ok := os.LookupEnv(dsnEnv); ok && v != "" {
		dsn = v
	}
	root.PersistentFlags().StringVarP(&dsn, "dsn", "d", dsn, "database DSN (env "+dsnEnv+")")

	withDB := func(cmd *cobra.Command, fn func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error) error {
		ctx := cmd.Context()
		if ctx == nil {
			ctx = context.Background()
		}
		db, err := openDB(ctx, dsn)
		if err != nil {
			return fmt.Errorf("db init error: %w", err)
		}
		defer db.Close()
		return fn(ctx, db, newManager())
	}

	root.AddCommand(
		newMigrateCmd(withDB),
		newUserAddCmd(withDB),
		newPasswdCmd(withDB),
		newUsersCmd(withDB),
		newHashPasswordCmd(),
	)
	return root
}

type dbRunner func(cmd *cobra.Command, fn func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error) error

func newMigrateCmd(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
				if err := rm.RunMigrations(ctx, db); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), "Migrations applied")
				return nil
			})
		},
	}
}

func newUserAddCmd(withDB dbRunner) *cobra.Command {
	var (
		role, name string
		generate   bool
	)
	cmd := &cobra.Command{
		Use:   "useradd <login>",
		Short: "Create a user account",
		Long: `Create a user account. The password is read from the terminal
without echo, or from the first line of stdin when it is not a terminal.
With --generate a random password is created and printed once.

Roles: admin, shiftLead, dataScientist.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := obtainPassword(cmd, generate)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			return withDB(cmd, func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
				us := services.NewUserService(db, rm, &config.Config{}, logging.NewNopLogger())
				u, err := us.CreateUser(ctx, args[0], pw, name, role, nil)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "User %s created (id %d, role %s)\n", u.Login, u.ID, u.Role)
				if generate {
					fmt.Fprintf(cmd.OutOrStdout(), "Password: %s\n", pw)
				}
				return nil
			})
		},
	}
	cmd.Flags().StringVarP(&role, "role", "r", "shiftLead", "user role")
	cmd.Flags().StringVarP(&name, "name", "n", "", "display name")
	cmd.Flags().BoolVarP(&generate, "generate", "g", false, "generate a random password")
	return cmd
}

func newPasswdCmd(withDB dbRunner) *cobra.Command {
	var generate bool
	cmd := &cobra.Command{
		Use:   "passwd <login>",
		Short: "Set the password of an existing user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			pw, err := obtainPassword(cmd, generate)
			if err != nil {
				return err
			}
			defer common.WipeByteArray(pw)
			return withDB(cmd, func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
				us := services.NewUserService(db, rm, &config.Config{}, logging.NewNopLogger())
				if err := us.SetPassword(ctx, args[0], pw); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Password of %s updated\n", args[0])
				if generate {
					fmt.Fprintf(cmd.OutOrStdout(), "Password: %s\n", pw)
				}
				return nil
			})
		},
	}
	cmd.Flags().BoolVarP(&generate, "generate", "g", false, "generate a random password")
	return cmd
}

func newUsersCmd(withDB dbRunner) *cobra.Command {
	return &cobra.Command{
		Use:   "users",
		Short: "List user accounts",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withDB(cmd, func(ctx context.Context, db *sql.DB, rm repomanager.RepositoryManager) error {
				us := services.NewUserService(db, rm, &config.Config{}, logging.NewNopLogger())
				list, err := us.ListUsers(ctx)
				if err != nil {
					return err
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
				fmt.Fprintln(tw, "ID\tLOGIN\tROLE\tNAME")
				for _, u := range list {
					fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", u.ID, u.Login, u.Role, u.Name)
				}
				return tw.Flush()
			})
		},
	}
}

func newHashPasswordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "hash-password",
		Short: "Print a bcrypt hash for seeding the users table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			pw, err := promptPassword(cmd)
			if err != nil {
				return err
			}
			hash, err := cryptox.HashPassword(pw)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}
}

// generatedPasswordBytes yields a 24 character hex password.
const generatedPasswordBytes = 12

func obtainPassword(cmd *cobra.Command, generate bool) ([]byte, error) {
	if !generate {
		return promptPassword(cmd)
	}
	s, err := common.MakeRandHexString(generatedPasswordBytes)
	if err != nil {
		return nil, err
	}
	return []byte(s), nil
}

func promptPassword(cmd *cobra.Command) ([]byte, error) {
	fd := int(os.Stdin.Fd())
	if isTerminal(fd) {
		fmt.Fprint(cmd.ErrOrStderr(), "Enter password: ")
		pw, err := readPassword(fd)
		fmt.Fprintln(cmd.ErrOrStderr())
		if err != nil {
			return nil, err
		}
		return pw, nil
	}

	line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return nil, errors.New("empty password")
	}
	return []byte(line), nil
}
