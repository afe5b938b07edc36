package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"log/slog"
	"math/rand"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/sertifikasi-nasional/lsp-backend/internal/config"
	"github.com/sertifikasi-nasional/lsp-backend/internal/domain"
	"github.com/sertifikasi-nasional/lsp-backend/internal/repository"
	"github.com/sertifikasi-nasional/lsp-backend/internal/seed"
	"github.com/sertifikasi-nasional/lsp-backend/internal/utils"

	_ "github.com/jackc/pgx/v5/stdlib"
)

func main() {
	var op int
	var n int

	flag.IntVar(&op, "op", 0, "operation to run (1: seed certification schemes, 2: insert random asesi)")
	flag.IntVar(&n, "n", 5, "number of records to insert")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("unable to load configuration", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbpool, err := sql.Open("pgx", cfg.Database.DSN)
	if err != nil {
		logger.Error("unable to create database connection pool", "error", err)
		return
	}
	defer dbpool.Close()

	dbpool.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	dbpool.SetMaxIdleConns(cfg.Database.MaxIdleConns)
	dbpool.SetConnMaxIdleTime(time.Duration(cfg.Database.MaxIdleTime) * time.Second)

	ctx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.Database.ConnectTimeout)*time.Second)
	defer cancel()

	// sql.Open only builds the pool object, it does not connect, so ping explicitly
	if err := dbpool.PingContext(ctx); err != nil {
		logger.Error("unable to connect to database", "error", err)
		return
	}

	repo := repository.NewRepository(cfg, dbpool)

	switch op {
	case 0:
		slog.Error("no operation specified")
	case 1:
		seed.SeedSchemes(repo)
	case 2:
		if n <= 0 {
			slog.Error("number of asesi must be positive")
			return
		}

		role, err := repo.GetRoleByName(domain.RoleAsesi)
		if err != nil {
			switch {
			case errors.Is(err, sql.ErrNoRows):
				slog.Error("role 'Asesi' does not exist, run the api server once to create the base roles")
			default:
				slog.Error("unable to look up role", slog.String("error", err.Error()))
			}
			return
		}

		schemes, err := repo.GetAllSchemes()
		if err != nil {
			slog.Error("unable to list certification schemes", slog.String("error", err.Error()))
			return
		}

		cnt := 0
		for i := 0; i < n; i++ {
			var schemeID *int64
			if len(schemes) > 0 {
				schemeID = &schemes[rand.Intn(len(schemes))].ID
			}

			user, profile, err := utils.GenerateRandomAsesi(cfg.Seed.Asesi.Password, schemeID)
			if err != nil {
				slog.Error("unable to generate random asesi", slog.String("error", err.Error()))
				continue
			}
			user.RoleID = role.ID

			if err := repo.RegisterAsesi(user, profile); err != nil {
				slog.Error("unable to insert asesi", slog.String("error", err.Error()))
				continue
			}

			cnt++
		}

		slog.Info("random asesi inserted", slog.Int("count", cnt))
	default:
		slog.Error("unknown operation")
	}
}
