package main

import (
	"os"

	"go-outlook-starter/core/logger"
	"go-outlook-starter/core/server"
)

// Sample backend integrating Microsoft Outlook via the Graph API: connect an
// account with OAuth, create calendar events and send mail on its behalf.
func main() {
	if err := server.Run(); err != nil {
		logger.Error("run server error", err)
		os.Exit(1)
	}
}
