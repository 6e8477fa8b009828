// Command seed creates the demo admin and regular accounts if they are missing.
package main

import (
	"context"
	"errors"

	"github.com/sirupsen/logrus"

	"taskhub/internal/auth"
	"taskhub/internal/authz"
	"taskhub/internal/config"
	"taskhub/internal/domain"
	"taskhub/internal/logging"
	"taskhub/internal/repository/sqlite"
	"taskhub/internal/service"
)

var demoUsers = []struct {
	email string
	role  domain.Role
}{
	{"admin@gmail.com", domain.RoleAdmin},
	{"user@gmail.com", domain.RoleRegular},
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatalf("load config: %v", err)
	}
	logger, err := logging.New(logging.Options{Level: cfg.Log.Level, Format: cfg.Log.Format})
	if err != nil {
		logrus.Fatalf("setup logging: %v", err)
	}

	ctx := context.Background()
	db, err := sqlite.Open(cfg.Database.Path)
	if err != nil {
		logger.Fatalf("open database: %v", err)
	}
	defer db.Close()

	userRepo := sqlite.NewUserRepository(db)
	taskRepo := sqlite.NewTaskRepository(db)
	if err := sqlite.InitAll(ctx, userRepo, taskRepo); err != nil {
		logger.Fatalf("init repositories: %v", err)
	}

	users := service.NewUserService(userRepo, auth.NewPasswordHasher(cfg.Auth.BcryptCost), authz.New(), logger)
	// the seeder acts with admin authority so it may create admin accounts
	seeder := domain.Principal{Role: domain.RoleAdmin}

	for _, u := range demoUsers {
		created, err := users.Register(ctx, seeder, u.email, cfg.Seed.Password, u.role)
		switch {
		case errors.Is(err, domain.ErrConflict):
			logger.Infof("user %s already exists", u.email)
		case err != nil:
			logger.Fatalf("create user %s: %v", u.email, err)
		default:
			logger.WithFields(logrus.Fields{"id": created.ID, "role": created.Role}).Infof("created user %s", u.email)
		}
	}
}
