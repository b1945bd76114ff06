package main

import (
	"crypto/rand"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const version = "1.0.0"

type config struct {
	port int
	env  string
	db   struct {
		dsn                string
		maxOpenConnections int
		maxIdleConnections int
		maxIdleTime        time.Duration
	}
	smtp struct {
		host     string
		port     int
		username string
		password string
		sender   string
	}
	cors struct {
		trustedOrigins []string
	}
	limiter struct {
		enabled             bool
		maxRequestPerSecond float64
		burst               int
	}
	jwtSecret string
}

type application struct {
	config    config
	lifecycle lifecycle
	store     storage
	mailer    *mailer
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	// a missing .env file is fine, flags fall back to the real environment
	godotenv.Load()

	var cfg config
	flag.IntVar(&cfg.port, "port", envInt("PORT", 3000), "Server Port")
	flag.StringVar(&cfg.env, "env", "development", "Environment [development|production]")

	flag.StringVar(&cfg.db.dsn, "db-dsn", os.Getenv("DB_DSN"), "PostgreSQL DSN")
	flag.IntVar(&cfg.db.maxOpenConnections, "db-max-open-conns", 25, "PostgreSQL max open connections")
	flag.IntVar(&cfg.db.maxIdleConnections, "db-max-idle-conns", 25, "PostgreSQL max idle connections")
	var maxIdleTime string
	flag.StringVar(&maxIdleTime, "db-max-idle-time", "15m", "PostgreSQL max connection idle time")

	flag.StringVar(&cfg.smtp.host, "smtp-host", os.Getenv("SMTP_HOST"), "SMTP host")
	flag.IntVar(&cfg.smtp.port, "smtp-port", envInt("SMTP_PORT", 25), "SMTP port")
	flag.StringVar(&cfg.smtp.username, "smtp-username", os.Getenv("SMTP_USERNAME"), "SMTP username")
	flag.StringVar(&cfg.smtp.password, "smtp-password", os.Getenv("SMTP_PASSWORD"), "SMTP password")
	flag.StringVar(&cfg.smtp.sender, "smtp-sender", os.Getenv("SMTP_SENDER"), "SMTP sender")

	var trustedOrigins string
	flag.StringVar(&trustedOrigins, "cors-trusted-origins", os.Getenv("CORS_TRUSTED_ORIGINS"), "Trusted CORS origins (space separated)")

	flag.BoolVar(&cfg.limiter.enabled, "limiter-enabled", false, "Enable rate limiter")
	flag.Float64Var(&cfg.limiter.maxRequestPerSecond, "limiter-rps", 10, "Rate limiter max requests per second per client")
	flag.IntVar(&cfg.limiter.burst, "limiter-burst", 20, "Rate limiter burst per client")

	flag.StringVar(&cfg.jwtSecret, "jwt-secret", os.Getenv("JWT_SECRET"), "JWT secret")
	flag.Parse()

	cfg.cors.trustedOrigins = strings.Fields(trustedOrigins)

	d, err := time.ParseDuration(maxIdleTime)
	if err != nil {
		cfg.db.maxIdleTime = 15 * time.Minute
		log.Printf(`invalid value %s for flag "db-max-idle-time" defaulting to %s`, maxIdleTime, cfg.db.maxIdleTime)
	} else {
		cfg.db.maxIdleTime = d
	}

	if cfg.jwtSecret == "" {
		secret := make([]byte, 32)
		_, err = rand.Read(secret)
		if err != nil {
			log.Fatal(err)
		}
		cfg.jwtSecret = string(secret)
	}

	app := &application{
		config: cfg,
	}
	if cfg.smtp.host != "" {
		app.mailer = newMailer(cfg.smtp.host, cfg.smtp.port, cfg.smtp.username, cfg.smtp.password, cfg.smtp.sender)
	}

	// The server starts serving right away; API requests are answered with 503
	// until the database connection is up.
	go func() {
		db, err := openDB(cfg)
		if err != nil {
			log.Printf("database connection failed: %v", err)
			app.lifecycle.transition(phaseFailed)
			return
		}
		app.store = newStorage(db)
		app.lifecycle.transition(phaseReady)
		log.Println("established a connection with database")
	}()

	srv := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.port),
		Handler:      composeRoutes(app),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}
	log.Printf("Starting %s server on port %d\n", cfg.env, cfg.port)
	err = srv.ListenAndServe()
	log.Fatal(err)
}

func envInt(key string, fallback int) int {
	s := os.Getenv(key)
	if s == "" {
		return fallback
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		log.Printf("invalid value %s for %s defaulting to %d", s, key, fallback)
		return fallback
	}
	return n
}
