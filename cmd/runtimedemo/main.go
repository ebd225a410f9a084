// Command runtimedemo wires a runtime.Runtime around Ctx and MetaDetails and
// exposes it over HTTP: the one concrete UI binding this repo ships, since
// §6 treats the UI surface as contract-only. Grounded on the teacher's
// addon.go Run(): flag-configured bind address, a zap logger built the same
// way, a gorilla/mux debug/pprof subrouter behind handlers.ProxyHeaders, and
// the same signal.Notify/context.WithTimeout graceful shutdown.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	netpprof "net/http/pprof"
	"os"
	"os/signal"
	"runtime/pprof"
	"syscall"
	"time"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
	"go.uber.org/zap"

	"github.com/stremio-core-go/runtime/internal/api"
	"github.com/stremio-core-go/runtime/internal/app"
	"github.com/stremio-core-go/runtime/internal/ctx"
	"github.com/stremio-core-go/runtime/internal/env"
	"github.com/stremio-core-go/runtime/internal/logx"
	"github.com/stremio-core-go/runtime/internal/metadetails"
	"github.com/stremio-core-go/runtime/internal/runtime"
)

func init() {
	// Configure logging (except for level, which we only know once flags are
	// parsed): matches the teacher's init.go.
	log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
}

func main() {
	bindAddr := flag.String("bind-addr", "localhost", "interface to bind to; \"0.0.0.0\" to accept requests from other machines")
	port := flag.Int("port", 8080, "port to listen on")
	logLevel := flag.String("log-level", "info", `log level: "debug", "info", "warn" or "error"`)
	apiBaseURL := flag.String("api-base-url", api.DefaultClientOptions.BaseURL, "base URL of the main API/datastore")
	profiling := flag.Bool("profiling", false, "expose net/http/pprof handlers under /debug/pprof")
	flag.Parse()

	logger, err := logx.New(*logLevel, "console")
	if err != nil {
		// zap isn't constructed yet, so the bootstrap failure path logs
		// through logrus instead, formatted by the init() above — matching
		// the teacher's own log.Fatalf bootstrap-error pattern
		// (examples/catalog/main.go).
		log.Fatalf("couldn't create logger: %v", err)
	}
	defer logger.Sync()

	environment := env.NewProduction(env.Options{Logger: logger})
	apiClient := api.NewClient(api.ClientOptions{BaseURL: *apiBaseURL}, logger)

	ctxModel := ctx.New(environment, apiClient, logger)
	metaDetailsModel := metadetails.New(ctxModel, environment, logger)
	root := app.New(ctxModel, metaDetailsModel, logger)

	rt := runtime.New(root, logger)
	go rt.Run()
	defer rt.Stop()

	fiberApp := fiber.New(fiber.Config{DisableStartupMessage: true})
	fiberApp.Get("/health", func(c *fiber.Ctx) error {
		return c.SendString("OK")
	})
	fiberApp.Get("/snapshot", func(c *fiber.Ctx) error {
		return c.JSON(snapshot{Ctx: ctxModel.State, MetaDetails: metaDetailsModel.State})
	})
	if *profiling {
		fiberApp.All("/debug/pprof/*", adaptor.HTTPHandler(debugHandler()))
	}

	addr := fmt.Sprintf("%s:%d", *bindAddr, *port)
	logger.Info("starting server", zap.String("address", addr))
	go func() {
		if err := fiberApp.Listen(addr); err != nil {
			logger.Fatal("couldn't start server", zap.Error(err))
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := fiberApp.ShutdownWithContext(shutdownCtx); err != nil {
		logger.Error("error during shutdown", zap.Error(err))
	}
}

// snapshot is the JSON shape served by /snapshot.
type snapshot struct {
	Ctx         ctx.State         `json:"ctx"`
	MetaDetails metadetails.State `json:"metaDetails"`
}

// debugHandler mirrors the teacher's addon.go pprof wiring, behind
// gorilla/handlers.ProxyHeaders so X-Forwarded-For is honored the same way.
func debugHandler() http.Handler {
	r := mux.NewRouter()
	for _, p := range pprof.Profiles() {
		r.HandleFunc("/debug/pprof/"+p.Name(), netpprof.Handler(p.Name()).ServeHTTP)
	}
	r.HandleFunc("/debug/pprof/cmdline", netpprof.Cmdline)
	r.HandleFunc("/debug/pprof/profile", netpprof.Profile)
	r.HandleFunc("/debug/pprof/trace", netpprof.Trace)
	r.HandleFunc("/debug/pprof/", netpprof.Index)
	return handlers.ProxyHeaders(r)
}
