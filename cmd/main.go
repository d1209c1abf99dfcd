package main

import (
	"log"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	"github.com/schooldesk/schooldesk/blob"
	"github.com/schooldesk/schooldesk/config"
	"github.com/schooldesk/schooldesk/database"
	"github.com/schooldesk/schooldesk/routes"
	"github.com/schooldesk/schooldesk/session"
)

func main() {
	cfg := config.Load()

	// fail early if the database is not up
	database.Connect(cfg)

	store, err := session.NewStore(cfg)
	if err != nil {
		log.Fatalf("session store: %v", err)
	}
	sessions := session.NewManager(store, cfg)

	blobs, err := blob.NewFSStore(cfg.UploadDir)
	if err != nil {
		log.Fatalf("blob store: %v", err)
	}

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.Use(middleware.Logger())
	e.Use(middleware.CORS())

	routes.Register(e, sessions, blobs, cfg)

	addr := ":" + cfg.AppPort
	log.Printf("server listening at %s", addr)
	if err := e.Start(addr); err != nil {
		log.Fatal(err)
	}
}
