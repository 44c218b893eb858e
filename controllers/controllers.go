package controllers

import (
	"github.com/addisbingo/bingo-backend/game"
	"github.com/addisbingo/bingo-backend/ledger"
	"github.com/addisbingo/bingo-backend/services"
)

// Shared handler dependencies, set once at startup.
var (
	Sessions *game.Registry
	Ledger   *ledger.Service
	Stream   *services.Hub
)

// Init wires the handlers to their services. Must run before SetupRoutes.
func Init(registry *game.Registry, ldg *ledger.Service, hub *services.Hub) {
	Sessions = registry
	Ledger = ldg
	Stream = hub
}
