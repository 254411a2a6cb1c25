package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"runtime"
	"sync"
	"syscall"
	"time"

	_ "github.com/ebitengine/hideconsole"
	"github.com/hajimehoshi/ebiten/v2"
	"golang.design/x/clipboard"

	"oilmap/api"
	"oilmap/app"
	"oilmap/eruntime"
	"oilmap/javascript"
	"oilmap/storage"
)

const autosaveName = "autosave.oilmap"

func main() {
	var headless bool
	var backendURL string
	var wsAddr string
	var scriptPath string
	flag.BoolVar(&headless, "headless", false, "Run without GUI, serving only the observer hub")
	flag.StringVar(&backendURL, "backend", "http://localhost:8000", "Map backend base URL")
	flag.StringVar(&wsAddr, "ws", ":42069", "Observer hub listen address")
	flag.StringVar(&scriptPath, "script", "", "JavaScript file to run against the session on startup")
	flag.Parse()

	lockPath := storage.DataFile(".oilmap.lock")
	_, lockOwned, cleanupLock, err := prepareLock(lockPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to prepare lock file: %v\n", err)
		os.Exit(1)
	}
	defer cleanupLock()
	if !lockOwned {
		fmt.Println("Another instance appears to be running; continuing anyway.")
	}

	client := api.NewClient(backendURL)
	hub := api.NewHub()
	go func() {
		if err := hub.Serve(wsAddr); err != nil {
			fmt.Printf("observer hub stopped: %v\n", err)
		}
	}()

	game := app.New(client, hub)
	session := game.Session()

	// Reopen where the last run left off.
	if snap, err := eruntime.LoadSnapshot(storage.DataFile(autosaveName)); err == nil {
		session.RestoreSnapshot(snap)
		fmt.Println("Restored previous session from autosave.")
	}

	if scriptPath != "" {
		runStartupScript(session, scriptPath)
	}

	autosave := func() {
		if err := eruntime.SaveSnapshot(storage.DataFile(autosaveName), session.Snapshot()); err != nil {
			fmt.Printf("autosave failed: %v\n", err)
		}
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	if headless {
		fmt.Printf("Running headless; observer hub at ws://localhost%s/ws\n", wsAddr)
		<-sigChan
		autosave()
		session.Close()
		return
	}

	go func() {
		<-sigChan
		fmt.Println("Received shutdown signal. Cleaning up...")
		autosave()
		session.Close()
		cleanupLock()
		os.Exit(0)
	}()

	if runtime.GOARCH != "wasm" && runtime.GOOS != "js" {
		app.SetClipboardReady(clipboard.Init() == nil)
	}

	app.InitToastManager()

	ebiten.SetWindowTitle("Oil Map Editor")
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(1600, 900)

	if err := ebiten.RunGame(game); err != nil {
		panic(err)
	}
	autosave()
	session.Close()
}

func runStartupScript(session *app.MapSession, path string) {
	src, err := os.ReadFile(path)
	if err != nil {
		fmt.Printf("cannot read script %s: %v\n", path, err)
		return
	}
	engine, err := javascript.New(session)
	if err != nil {
		fmt.Printf("script engine failed: %v\n", err)
		return
	}
	if _, err := engine.Run(string(src), 10*time.Second); err != nil {
		fmt.Printf("startup script: %v\n", err)
	}
}

func prepareLock(lockPath string) (*os.File, bool, func(), error) {
	lockFile, err := os.OpenFile(lockPath, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	owned := true
	if err != nil {
		if errors.Is(err, os.ErrExist) {
			owned = false
			lockFile, err = os.OpenFile(lockPath, os.O_WRONLY, 0o644)
			if err != nil {
				return nil, false, nil, err
			}
		} else {
			return nil, false, nil, err
		}
	}

	var cleanupOnce sync.Once
	cleanup := func() {
		cleanupOnce.Do(func() {
			if lockFile != nil {
				_ = lockFile.Close()
			}
			if owned {
				os.Remove(lockPath)
			}
		})
	}
	return lockFile, owned, cleanup, nil
}
