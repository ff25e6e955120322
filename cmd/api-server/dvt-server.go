package main

import (
	"net/http"
	"os"

	"dvtboard/db"
	"dvtboard/db/migrations"
	"dvtboard/internal/handlers"
	"dvtboard/internal/settings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	logger, err := zap.NewProduction()
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	connString := os.Getenv("POSTGRES_CONN")
	if connString == "" {
		logger.Fatal("POSTGRES_CONN env variable is not set")
	}

	dbConn, err := sqlx.Connect("postgres", connString)
	if err != nil {
		logger.Fatal("cannot connect to DB", zap.Error(err))
	}
	defer dbConn.Close()

	if err := migrations.Run(connString); err != nil {
		logger.Fatal("migrations failed", zap.Error(err))
	}

	store := db.NewStorage(dbConn)
	svc := settings.NewService(store)
	h := handlers.NewHandler(store, svc, logger)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.Route("/api", func(r chi.Router) {
		r.Get("/ping", h.PingHandler)
		// предложения
		r.Post("/proposals/new", h.CreateProposalHandler)
		r.Get("/proposals", h.GetProposalsHandler)
		r.Get("/proposals/{proposalId}", h.GetProposalHandler)
		r.Patch("/proposals/{proposalId}/edit", h.EditProposalHandler)
		r.Put("/proposals/{proposalId}/status", h.UpdateProposalStatusHandler)
		r.Delete("/proposals/{proposalId}", h.DeleteProposalHandler)
		// ревизии и журнал
		r.Post("/proposals/{proposalId}/revisions/new", h.CreateRevisionHandler)
		r.Get("/proposals/{proposalId}/revisions", h.GetRevisionsHandler)
		r.Get("/proposals/{proposalId}/logs", h.GetLogsHandler)
		// канбан
		r.Get("/kanban", h.KanbanHandler)
		// отчёты
		r.Get("/reports/summary", h.ReportSummaryHandler)
		r.Get("/reports/export", h.ExportReportHandler)
		// настройки и команда
		r.Get("/settings", h.GetSettingsHandler)
		r.Put("/settings", h.UpdateSettingsHandler)
		r.Post("/settings/alert-emails/new", h.AddAlertEmailHandler)
		r.Delete("/settings/alert-emails", h.RemoveAlertEmailHandler)
		r.Get("/team", h.GetTeamHandler)
		r.Post("/team/new", h.AddTeamMemberHandler)
		r.Delete("/team/{email}", h.DeleteTeamMemberHandler)
	})

	serverAddr := os.Getenv("SERVER_ADDRESS")
	if serverAddr == "" {
		serverAddr = "0.0.0.0:8080"
	}

	logger.Info("starting server", zap.String("addr", serverAddr))
	if err := http.ListenAndServe(serverAddr, r); err != nil {
		logger.Fatal("server stopped", zap.Error(err))
	}
}
