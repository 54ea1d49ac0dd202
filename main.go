package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/sirsapient/slang-bang-react-sub000/internal/config"
	"github.com/sirsapient/slang-bang-react-sub000/internal/engine"
	"github.com/sirsapient/slang-bang-react-sub000/internal/game"
	"github.com/sirsapient/slang-bang-react-sub000/internal/save"
	"github.com/sirsapient/slang-bang-react-sub000/internal/server"
)

func main() {
	addr := flag.String("addr", ":8080", "listen address")
	dataDir := flag.String("data", "data", "data directory for save files")
	gameDataPath := flag.String("gamedata", "", "optional YAML file overriding the built-in game tables")
	slot := flag.String("slot", "autosave", "save slot to resume from and autosave into")
	seed := flag.Int64("seed", 0, "RNG seed, 0 means time-based")
	flag.Parse()

	logger := log.Default()

	balance := config.FromEnv()
	data := config.DefaultGameData()
	if *gameDataPath != "" {
		loaded, err := config.LoadGameData(*gameDataPath)
		if err != nil {
			logger.Fatalf("load game data: %v", err)
		}
		data = loaded
	}

	store, err := save.Open(filepath.Join(*dataDir, "saves", "game.db"))
	if err != nil {
		logger.Fatalf("open save store: %v", err)
	}
	defer store.Close()

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	state := game.NewState(balance, data, game.RealClock{})
	eng := engine.New(state, store, game.NewRand(*seed))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := eng.LoadGame(ctx, *slot); err != nil {
		if !errors.Is(err, save.ErrNoSave) {
			logger.Fatalf("load save: %v", err)
		}
		eng.NewGame()
		logger.Printf("no save in slot %q, starting fresh", *slot)
	} else {
		logger.Printf("resumed slot %q", *slot)
	}

	hub := server.NewHub()
	go hub.Run(ctx)
	defer hub.BindState(state)()

	stats := server.NewSessionStats()
	defer stats.Bind(state)()

	go eng.Run(ctx)

	handler := server.NewHandler(&server.App{Engine: eng, Hub: hub, Stats: stats}, logger)
	srv := &http.Server{Addr: *addr, Handler: handler}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	logger.Printf("listening on %s", *addr)
	if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatalf("serve: %v", err)
	}

	// Autosave on the way out.
	saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := eng.SaveGame(saveCtx, *slot); err != nil {
		logger.Printf("autosave failed: %v", err)
	} else {
		logger.Printf("autosaved slot %q", *slot)
	}
}
