package main

import (
	"context"
	"os"

	"github.com/yigit/allotment/internal/pkg/logger" // Still needed for initial error logging
	"github.com/yigit/allotment/internal/server"
)

// @title Subject Allotment API
// @version 1.0
// @description Student subject-allotment records: CSV import, admin maintenance and public lookup

// @host localhost:8080
// @BasePath /api/v1
// @schemes http https

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT token for authorization

func main() {
	ctx := context.Background()

	srv, err := server.NewServer(ctx)
	if err != nil {
		// Error details are logged within NewServer's setup functions
		logger.Error().Err(err).Msg("Failed to initialize server")
		os.Exit(1)
	}

	// Run the server (this blocks until shutdown signal)
	if err := srv.Run(ctx); err != nil {
		logger.Error().Err(err).Msg("Server execution failed or shutdown encountered errors")
		os.Exit(1)
	}

	logger.Info().Msg("Application finished gracefully.")
}
