package main

import (
	app "upsell-widget-engine/internal/app/server"
	"upsell-widget-engine/internal/config"
)

func main() {
	cfg := config.Load()
	config.SetupLogging(cfg.Server.LogLevel)
	app.Run(cfg)
}
