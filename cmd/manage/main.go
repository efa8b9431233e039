// Command manage administers blog users from the shell.
//
//	manage createuser -username alice [-staff] [-password ...]
//	manage deleteuser -username alice
//
// Without -password, createuser reads the password from the first line of stdin.
// The database and password policy come from the same environment as cmd/api.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"blog/internal/config"
	"blog/internal/infra/adapter/persistence/postgres"
	"blog/internal/infra/adapter/persistence/sqlite"
	"blog/internal/infra/db"
	"blog/internal/observability/logging"
	"blog/internal/repository"
	authservice "blog/internal/service/auth"
)

const usage = `usage: manage <command> [flags]

commands:
  createuser  create a user (-username, -password, -staff)
  deleteuser  delete a user with their articles and comments (-username)
`

// errUsage is returned for a missing or unknown command and bad flags.
var errUsage = errors.New("invalid usage")

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, "manage:", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	slog.SetDefault(logging.NewLogger(os.Stderr, cfg.LogLevel))

	svc, closeDB, err := openAuth(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeDB()

	return execute(ctx, svc, args, stdin, stdout)
}

// openAuth connects to the configured database and builds the auth service on it.
func openAuth(ctx context.Context, cfg *config.Config) (*authservice.AuthService, func(), error) {
	dsn := cfg.DB.URL
	if cfg.DB.Driver == db.DriverSQLite {
		dsn = cfg.DB.SQLitePath
	}
	database, err := db.Open(ctx, db.Options{Driver: cfg.DB.Driver, DSN: dsn})
	if err != nil {
		return nil, nil, fmt.Errorf("open database: %w", err)
	}
	closeDB := func() { _ = database.Close() }

	if err := db.Migrate(database, cfg.DB.Driver); err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("migrate database: %w", err)
	}

	users, err := userRepo(cfg.DB.Driver, database)
	if err != nil {
		closeDB()
		return nil, nil, err
	}

	policy, err := config.PasswordPolicyFrom(cfg.SecurityConfigPath)
	if err != nil {
		closeDB()
		return nil, nil, fmt.Errorf("load password policy: %w", err)
	}

	svc := authservice.NewAuthService(users, cfg.Session.Secret, cfg.Session.TTL,
		authservice.WithRequirements(authservice.CredentialRequirements{
			MinPasswordLength: policy.MinLength,
			WeakPasswords:     policy.WeakPasswords,
		}),
	)
	return svc, closeDB, nil
}

func userRepo(driver string, q db.Querier) (repository.UserRepository, error) {
	switch driver {
	case db.DriverPostgres:
		return postgres.NewUserRepo(q), nil
	case db.DriverSQLite:
		return sqlite.NewUserRepo(q), nil
	default:
		return nil, fmt.Errorf("%w: %q", db.ErrUnsupportedDriver, driver)
	}
}

// execute dispatches a subcommand against svc.
func execute(ctx context.Context, svc *authservice.AuthService, args []string, stdin io.Reader, stdout io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	switch args[0] {
	case "createuser":
		return createUser(ctx, svc, args[1:], stdin, stdout)
	case "deleteuser":
		return deleteUser(ctx, svc, args[1:], stdout)
	default:
		return fmt.Errorf("%w: unknown command %q", errUsage, args[0])
	}
}

func createUser(ctx context.Context, svc *authservice.AuthService, args []string, stdin io.Reader, stdout io.Writer) error {
	fs := flag.NewFlagSet("createuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "login name")
	password := fs.String("password", "", "password (read from stdin when empty)")
	staff := fs.Bool("staff", false, "grant access to the admin API")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *username == "" {
		return fmt.Errorf("%w: -username is required", errUsage)
	}

	pw := *password
	if pw == "" {
		line, err := readLine(stdin)
		if err != nil {
			return fmt.Errorf("read password: %w", err)
		}
		pw = line
	}

	user, err := svc.CreateUser(ctx, *username, pw, *staff)
	if err != nil {
		return err
	}
	fmt.Fprintf(stdout, "created user %q (id %d, staff %t)\n", user.Username, user.ID, user.IsStaff)
	return nil
}

func deleteUser(ctx context.Context, svc *authservice.AuthService, args []string, stdout io.Writer) error {
	fs := flag.NewFlagSet("deleteuser", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	username := fs.String("username", "", "login name")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}
	if *username == "" {
		return fmt.Errorf("%w: -username is required", errUsage)
	}

	if err := svc.DeleteUser(ctx, *username); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "deleted user %q\n", *username)
	return nil
}

func readLine(r io.Reader) (string, error) {
	line, err := bufio.NewReader(r).ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", err
	}
	line = strings.TrimRight(line, "\r\n")
	if line == "" {
		return "", errors.New("empty password")
	}
	return line, nil
}
