package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/ardiland/ardilandcom/internal/auth"
	"github.com/ardiland/ardilandcom/internal/config"
	"github.com/ardiland/ardilandcom/internal/db"
	"github.com/ardiland/ardilandcom/internal/logging"
	"github.com/ardiland/ardilandcom/pkg"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
	"golang.org/x/term"
)

func main() {
	env := flag.String("env", "development", "environment [prod | production | dev | development]")
	configPath := flag.String("config", "./config.toml", "path for the TOML config file")
	username := flag.String("username", "admin", "admin username to create")
	cost := flag.Int("cost", pkg.DefaultPasswordHashCost, "bcrypt cost for the admin password")
	demo := flag.Bool("demo", false, "insert demo products and essays")
	flag.Parse()

	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		log.Warnf("load .env file: %s", err)
	}

	cfg, err := config.Load(*env, *configPath)
	if err != nil {
		log.Fatalf("load config: %s", err)
	}

	logging.Setup(logging.LoggerSetupParams{
		LogToStdout: true,
		LogLevel:    cfg.LogLevel,
		Environment: cfg.Environment,
	})

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	dbPool, err := db.NewDBPool(ctx, db.NewDBPoolParams{
		DBHost:     cfg.PostgresHost,
		DBPort:     cfg.PostgresPort,
		DBName:     cfg.PostgresDBName,
		DBUser:     cfg.PostgresUser,
		DBPassword: os.Getenv("ARDILAND_POSTGRES_PASS"),
	})
	if err != nil {
		log.Fatalf("new db pool: %s", err)
	}
	defer dbPool.Close()

	if err := db.EnsureSchema(ctx, dbPool); err != nil {
		log.Fatalf("ensure schema: %s", err)
	}
	log.Infoln("schema ready")

	password, err := adminPassword()
	if err != nil {
		log.Fatalf("admin password: %s", err)
	}

	if err := createAdmin(ctx, auth.NewAdminRepo(dbPool), *username, password, *cost); err != nil {
		log.Fatalf("create admin: %s", err)
	}

	if *demo {
		if err := insertDemoContent(ctx, dbPool); err != nil {
			log.Fatalf("insert demo content: %s", err)
		}
	}

	log.Infoln("seeding done")
}

// adminPassword reads ARDILAND_ADMIN_PASSWORD, or prompts for it on a terminal.
func adminPassword() (string, error) {
	if password := os.Getenv("ARDILAND_ADMIN_PASSWORD"); password != "" {
		return password, nil
	}

	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("ARDILAND_ADMIN_PASSWORD not set and stdin is not a terminal")
	}

	fmt.Print("admin password: ")
	first, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}
	fmt.Print("repeat password: ")
	second, err := term.ReadPassword(fd)
	fmt.Println()
	if err != nil {
		return "", err
	}

	if string(first) != string(second) {
		return "", errors.New("passwords do not match")
	}
	if strings.TrimSpace(string(first)) == "" {
		return "", errors.New("empty password")
	}
	return string(first), nil
}

type adminCreator interface {
	Create(ctx context.Context, username, passwordHash string) (*auth.AdminUser, error)
}

func createAdmin(ctx context.Context, admins adminCreator, username, password string, cost int) error {
	if username == "" {
		return errors.New("empty username")
	}

	hash, err := pkg.HashPassword(password, cost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	admin, err := admins.Create(ctx, username, hash)
	if err != nil {
		if errors.Is(err, auth.ErrAdminExists) {
			log.Warnf("admin [%s] already exists, left as is", username)
			return nil
		}
		return err
	}

	log.Infof("admin [%s] created: %s", admin.Username, admin.ID)
	return nil
}

func insertDemoContent(ctx context.Context, dbPool *pgxpool.Pool) error {
	content, err := loadDemoContent()
	if err != nil {
		return err
	}
	return content.insert(ctx, newDemoStores(dbPool))
}
