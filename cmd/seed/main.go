package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/ultraauth/auth-api/internal/auth"
	"github.com/ultraauth/auth-api/internal/config"
	"github.com/ultraauth/auth-api/internal/infra"
	"github.com/ultraauth/auth-api/internal/logging"
)

type seedFile struct {
	Users []seedUser `yaml:"users"`
}

type seedUser struct {
	FullName    string `yaml:"full_name"`
	Email       string `yaml:"email"`
	PhoneNumber string `yaml:"phone_number"`
	Password    string `yaml:"password"`
}

func main() {
	path := flag.String("file", "seed/users.yaml", "YAML file listing users to register")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger := logging.New(cfg.LogLevel, cfg.AppName+"-seed", cfg.AppVersion)

	raw, err := os.ReadFile(*path)
	if err != nil {
		logger.Error("read seed file", "path", *path, "error", err)
		os.Exit(1)
	}
	var doc seedFile
	if err := yaml.Unmarshal(raw, &doc); err != nil {
		logger.Error("parse seed file", "path", *path, "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, closeStore, err := infra.OpenStore(ctx, cfg, logger)
	if err != nil {
		logger.Error("open user store", "error", err)
		os.Exit(1)
	}
	defer closeStore()

	issuer, err := auth.NewIssuer(auth.TokenConfig{
		AccessSecret:  []byte(cfg.JWTSecret),
		AccessTTL:     cfg.AccessTokenTTL,
		RefreshSecret: []byte(cfg.RefreshSecret),
		RefreshTTL:    cfg.RefreshTokenTTL,
	})
	if err != nil {
		logger.Error("token issuer", "error", err)
		os.Exit(1)
	}
	svc := auth.NewService(store, auth.NewHasher(cfg.BcryptCost), issuer, nil, logger)

	var created, skipped int
	for _, u := range doc.Users {
		_, err := svc.Register(ctx, auth.RegisterInput{
			FullName:    u.FullName,
			PhoneNumber: u.PhoneNumber,
			Email:       u.Email,
			Password:    u.Password,
		})
		switch {
		case errors.Is(err, auth.ErrDuplicateUser):
			skipped++
		case err != nil:
			logger.Error("seed user", "email", u.Email, "error", err)
			os.Exit(1)
		default:
			created++
		}
	}
	logger.Info("seed complete", "created", created, "skipped", skipped)
}
