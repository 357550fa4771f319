package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/alexanderramin/csrdash/internal/cli"
	"github.com/alexanderramin/csrdash/internal/config"
	"github.com/alexanderramin/csrdash/internal/db"
	"github.com/alexanderramin/csrdash/internal/filter"
	"github.com/alexanderramin/csrdash/internal/repository"
	"github.com/alexanderramin/csrdash/internal/service"
	"github.com/alexanderramin/csrdash/internal/undo"
	"github.com/mattn/go-isatty"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	role, err := cfg.UserRole()
	if err != nil {
		return err
	}

	logLevel := slog.LevelWarn
	if cfg.LogUseCases {
		logLevel = slog.LevelInfo
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: logLevel}))

	// Open database
	database, err := db.OpenDB(cfg.DBPath)
	if err != nil {
		return fmt.Errorf("opening database: %w", err)
	}
	defer database.Close()

	// Wire repositories
	partnerRepo := repository.NewSQLitePartnerRepo(database)
	tollRepo := repository.NewSQLiteTollRepo(database)
	projectRepo := repository.NewSQLiteProjectRepo(database)
	teamRepo := repository.NewSQLiteTeamMemberRepo(database)
	budgetRepo := repository.NewSQLiteBudgetCategoryRepo(database)
	activityRepo := repository.NewSQLiteActivityRepo(database)
	mediaRepo := repository.NewSQLiteMediaRepo(database)

	// Wire unit of work for transactional operations
	uow := db.NewSQLiteUnitOfWork(database)

	var observers []service.UseCaseObserver
	if cfg.LogUseCases {
		observers = append(observers, service.NewSlogUseCaseObserver(logger))
	}

	// Wire services
	partners := service.NewPartnerService(partnerRepo, uow, observers...)
	tolls := service.NewTollService(tollRepo, partnerRepo, uow, observers...)
	projects := service.NewProjectService(projectRepo, partnerRepo, tollRepo, uow, observers...)
	team := service.NewTeamService(teamRepo, projectRepo, uow, observers...)

	persist := filter.NewFilePersistence(cfg.StatePath)
	store := filter.NewStore(service.FilterGateway{
		Partners: partners,
		Tolls:    tolls,
		Projects: projects,
		Team:     team,
	}, persist, filter.WithLogger(logger))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	app := &cli.App{
		Partners:   partners,
		Tolls:      tolls,
		Projects:   projects,
		Team:       team,
		Budget:     service.NewBudgetService(budgetRepo, projectRepo, uow, observers...),
		Activities: service.NewActivityService(activityRepo, projectRepo, uow, observers...),
		Media:      service.NewMediaService(mediaRepo, projectRepo, observers...),

		Filters:  store,
		Persist:  persist,
		Undo:     undo.NewScheduler(ctx, undo.WithDelay(cfg.DeleteDelay()), undo.WithLogger(logger)),
		Identity: filter.Identity{UserID: cfg.UserID, Role: role},
		Logger:   logger,
	}

	// Wizards and the dashboard need a terminal.
	app.IsInteractive = func() bool {
		return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
	}

	return cli.NewRootCmd(app).ExecuteContext(ctx)
}
