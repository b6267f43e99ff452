// Package cli provides the command-line interface for scout.
package cli

import (
	"github.com/newswatch/scout/internal/app"
)

// Global reference shared between commands; set by the root command's
// PersistentPreRunE before any subcommand runs.
var globalApp *app.Application

// SetApp stores the Application for commands to access.
func SetApp(a *app.Application) {
	globalApp = a
}

// GetApp retrieves the current Application, or nil before initialization.
func GetApp() *app.Application {
	return globalApp
}
