package main

import (
	"database/sql"
	"log"
	"net/http"

	"pamojaBack/internal/handlers"
	"pamojaBack/internal/mapengine"
	mapws "pamojaBack/internal/mapengine/ws"
	"pamojaBack/utils"
)

type application struct {
	errorLog   *log.Logger
	infoLog    *log.Logger
	jwtKey     string
	mapHandler *handlers.MapHandler
	mapEngine  *mapengine.Engine
	mapHub     *mapws.Hub
	locations  *hubLocationSource
	tokens     *utils.Manager
	db         *sql.DB
}

func initializeApp(db *sql.DB, deps *mapengine.MapDeps, locations *hubLocationSource, errorLog, infoLog *log.Logger, signingKey string) *application {
	engine, err := mapengine.Bootstrap(deps)
	if err != nil {
		errorLog.Fatal(err)
	}
	service, err := mapengine.Service(deps)
	if err != nil {
		errorLog.Fatal(err)
	}
	locator, err := mapengine.Locator(deps)
	if err != nil {
		errorLog.Fatal(err)
	}
	hub, err := mapengine.Hub(deps)
	if err != nil {
		errorLog.Fatal(err)
	}
	tokens, err := utils.NewManager(signingKey)
	if err != nil {
		errorLog.Fatal(err)
	}

	mapHandler := &handlers.MapHandler{Service: service, Locator: locator}

	return &application{
		errorLog:   errorLog,
		infoLog:    infoLog,
		jwtKey:     signingKey,
		mapHandler: mapHandler,
		mapEngine:  engine,
		mapHub:     hub,
		locations:  locations,
		tokens:     tokens,
		db:         db,
	}
}

func openDB(driver, dsn string) (*sql.DB, error) {
	if driver == "postgres" {
		driver = "pgx"
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		log.Printf("Failed to open DB: %v", err)
		return nil, err
	}
	if err = db.Ping(); err != nil {
		log.Printf("Failed to ping DB: %v", err)
		return nil, err
	}
	db.SetMaxIdleConns(35)
	log.Println("Successfully connected to database")
	return db, nil
}

func addSecurityHeaders(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Cross-Origin-Opener-Policy", "same-origin")
		w.Header().Set("Cross-Origin-Resource-Policy", "same-origin")
		next.ServeHTTP(w, r)
	})
}
