// internal/app/bootstrap/hooks.go
package bootstrap

import (
	"github.com/dalemusser/waffle/app"
)

// Hooks is the CollabHub lifecycle passed to app.Run. WAFFLE calls them in
// order: LoadConfig, ValidateConfig, ConnectDB, EnsureSchema, Startup,
// BuildHandler, then Shutdown on exit.
var Hooks = app.Hooks[AppConfig, DBDeps]{
	Name:           "collabhub",
	LoadConfig:     LoadConfig,
	ValidateConfig: ValidateConfig,
	ConnectDB:      ConnectDB,
	EnsureSchema:   EnsureSchema,
	Startup:        Startup,
	BuildHandler:   BuildHandler,
	Shutdown:       Shutdown,
}
