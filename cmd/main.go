package main

import (
	"os"

	"nbprates/internal/app"

	"github.com/sirupsen/logrus"
)

// @title NBP Rates API
// @version 1.0
// @description Polish National Bank currency rates: storage, conversion and history.
// @BasePath /api/v1
func main() {
	if err := app.Run(); err != nil {
		logrus.WithError(err).Error("Application stopped with error")
		os.Exit(1)
	}
}
