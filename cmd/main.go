package main

import (
	"context"
	"flag"
	"log"
	"net/http"
	"os"
	"time"

	_ "github.com/go-sql-driver/mysql"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/olivere/elastic/v7"
	"github.com/redis/go-redis/v9"
	"github.com/rs/cors"

	"pamojaBack/internal/config"
	"pamojaBack/internal/mapengine"
)

func main() {
	err := godotenv.Load()
	if err != nil {
		log.Printf("Warning: Error loading .env file: %v", err)
	}
	cfg := config.LoadConfig()

	port := cfg.Server.Address
	if port == "" {
		port = ":4001"
	}
	if v := os.Getenv("PORT"); v != "" {
		port = ":" + v
	}

	addr := flag.String("addr", port, "HTTP network address")
	flag.Parse()

	infoLog := log.New(os.Stdout, "INFO\t", log.Ldate|log.Ltime)
	errorLog := log.New(os.Stderr, "ERROR\t", log.Ldate|log.Ltime|log.Lshortfile)

	db, err := openDB(cfg.Database.Driver, cfg.Database.URL)
	if err != nil {
		errorLog.Fatal(err)
	}
	defer db.Close()

	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Redis.Addr,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	defer rdb.Close()

	var es *elastic.Client
	if cfg.Elastic.URL != "" {
		es, err = elastic.NewClient(elastic.SetURL(cfg.Elastic.URL), elastic.SetSniff(false))
		if err != nil {
			errorLog.Printf("Elasticsearch unavailable, falling back to SQL search: %v", err)
			es = nil
		}
	}

	mapCfg, err := mapengine.LoadMapConfig()
	if err != nil {
		errorLog.Fatal(err)
	}
	if cfg.Elastic.Index != "" {
		mapCfg.ElasticIndex = cfg.Elastic.Index
	}

	locations := newHubLocationSource()
	deps := &mapengine.MapDeps{
		DB:        db,
		RDB:       rdb,
		ES:        es,
		Locations: locations,
		Logger:    &appLogger{info: infoLog, err: errorLog},
		Config:    mapCfg,
	}

	app := initializeApp(db, deps, locations, errorLog, infoLog, cfg.JWT.SigningKey)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	if err := mapengine.StartMapWorkers(ctx, deps); err != nil {
		errorLog.Fatal(err)
	}

	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowCredentials: true,
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
	})

	srv := &http.Server{
		Addr:         *addr,
		ErrorLog:     errorLog,
		Handler:      addSecurityHeaders(c.Handler(app.routes())),
		IdleTimeout:  time.Minute,
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 10 * time.Second,
	}

	infoLog.Printf("Starting server on %s", *addr)
	if err := srv.ListenAndServe(); err != nil {
		errorLog.Fatal(err)
	}
}

// appLogger adapts the stdlib logger pair to the map module's interface.
type appLogger struct {
	info *log.Logger
	err  *log.Logger
}

func (l *appLogger) Infof(format string, args ...interface{}) {
	l.info.Printf(format, args...)
}

func (l *appLogger) Errorf(format string, args ...interface{}) {
	l.err.Printf(format, args...)
}
