package main

import (
	"os"

	"classtime/core/logger"
	"classtime/core/server"
)

// @title ClassTime API
// @version 1.0
// @description Tutoring appointment booking: tutor search, timeslot calendar, recurring bookings and a chat assistant.

// @BasePath /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description JWT Bearer token. Example: "Bearer {token}"

func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
