package server

import (
	"fmt"
	"net/http"
	"time"

	"motorfleet2mqtt/internal/config"
	"motorfleet2mqtt/internal/core/port"
	"motorfleet2mqtt/internal/core/service"

	"github.com/asynkron/protoactor-go/actor"
	_ "github.com/joho/godotenv/autoload"
)

type Server struct {
	port        uint
	httpLog     bool
	rootContext *actor.RootContext
	masterActor *actor.PID
	fleet       *service.Fleet
	tree        port.AttributeTree
	handles     map[string]port.InstanceHandle
}

func NewServer(cfg config.Config, rootContext *actor.RootContext, masterActor *actor.PID,
	fleet *service.Fleet, tree port.AttributeTree, handles map[string]port.InstanceHandle) *http.Server {
	NewServer := &Server{
		port:        cfg.Port,
		rootContext: rootContext,
		masterActor: masterActor,
		fleet:       fleet,
		tree:        tree,
		handles:     handles,
		httpLog:     cfg.HttpLog,
	}

	// Declare Server config
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return server
}
