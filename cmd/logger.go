package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
)

// InitLogger (re)creates the shared logger from LOG_LEVEL. It is called again
// after main loads a custom env file.
func InitLogger() {
	Logger = logrus.New()

	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info" // Default to info
	}

	level, err := logrus.ParseLevel(logLevel)
	if err != nil {
		// Can't use Logger here since it might not be set up yet
		fmt.Fprintf(os.Stderr, "Invalid LOG_LEVEL '%s', defaulting to 'info'\n", logLevel)
		level = logrus.InfoLevel
	}
	Logger.SetLevel(level)
}
