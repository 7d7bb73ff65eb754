package main

import (
	"context"
	"database/sql"
	"io/fs"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/caarlos0/env/v11"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-logger/glog"
	"github.com/goliatone/go-router"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
	"github.com/uptrace/bun/migrate"

	"github.com/pitwall/pitwall"
)

// Config is loaded from the environment. Secrets stay out of source and
// out of logs.
type Config struct {
	Addr            string   `env:"SERVER_ADDR" envDefault:":8080"`
	DSN             string   `env:"DATABASE_DSN" envDefault:"file:pitwall.db?cache=shared"`
	PublicURL       string   `env:"PUBLIC_URL" envDefault:"http://localhost:8080"`
	SigningKey      string   `env:"AUTH_SIGNING_KEY,required"`
	TokenExpiration int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"1"`
	Issuer          string   `env:"AUTH_ISSUER" envDefault:"pitwall"`
	Audience        []string `env:"AUTH_AUDIENCE" envSeparator:"," envDefault:"pitwall"`
	MailgunAPIKey   string   `env:"MAILGUN_API_KEY"`
	MailgunDomain   string   `env:"MAILGUN_DOMAIN"`
	MailgunFrom     string   `env:"MAILGUN_FROM" envDefault:"Pitwall <noreply@pitwall.dev>"`
	MailgunTo       string   `env:"MAILGUN_TO"`
	SeedTeams       bool     `env:"SEED_TEAMS" envDefault:"true"`
}

func (c Config) GetSigningKey() string   { return c.SigningKey }
func (c Config) GetTokenExpiration() int { return c.TokenExpiration }
func (c Config) GetIssuer() string       { return c.Issuer }
func (c Config) GetAudience() []string   { return c.Audience }

func main() {
	lgr := glog.NewLogger(
		glog.WithLoggerTypePretty(),
		glog.WithLevel(glog.Trace),
		glog.WithName("pitwall"),
		glog.WithAddSource(false),
		glog.WithRichErrorHandler(errors.ToSlogAttributes),
	)

	cfg := Config{}
	if err := env.Parse(&cfg); err != nil {
		log.Fatal(err)
	}

	ctx := context.Background()

	db, err := openDatabase(ctx, cfg.DSN)
	if err != nil {
		log.Fatal(err)
	}
	defer db.Close()

	repo := pitwall.NewRepositoryManager(db)
	repo.MustValidate()

	if cfg.SeedTeams {
		if err := seedTeams(ctx, repo); err != nil {
			log.Fatal(err)
		}
	}

	store := pitwall.NewStoreAdapter(repo).
		WithLogger(lgr.GetLogger("store"))

	notifier := pitwall.NewMailgunNotifier(cfg.MailgunAPIKey, cfg.MailgunDomain, cfg.MailgunFrom).
		WithLogger(lgr.GetLogger("mailgun"))

	if cfg.MailgunTo != "" {
		notifier = notifier.WithRecipient(cfg.MailgunTo)
	}

	auther := pitwall.NewAuthenticator(store, notifier, cfg).
		WithLogger(lgr.GetLogger("auth")).
		WithConfirmationBaseURL(cfg.PublicURL)

	srv := router.NewFiberAdapter(func(a *fiber.App) *fiber.App {
		return router.DefaultFiberOptions(fiber.New(fiber.Config{
			AppName:       "pitwall",
			StrictRouting: false,
		}))
	})

	srv.Router().WithLogger(lgr.GetLogger("router"))

	pitwall.RegisterAuthRoutes(
		srv.Router(),
		pitwall.WithAuther(auther),
		pitwall.WithControllerLogger(lgr.GetLogger("auth:ctrl")),
	)

	guard := pitwall.ProtectedRoute(cfg, auther.TokenService(), nil)

	pitwall.RegisterTeamRoutes(
		srv.Router(),
		pitwall.WithTeamsRepository(repo.Teams()),
		pitwall.WithTeamGuard(guard),
		pitwall.WithTeamControllerLogger(lgr.GetLogger("teams:ctrl")),
	)

	srv.Serve(cfg.Addr)

	WaitExitSignal()
}

func openDatabase(ctx context.Context, dsn string) (*bun.DB, error) {
	sqldb, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, err
	}

	db := bun.NewDB(sqldb, sqlitedialect.New())

	migrationsFS, err := fs.Sub(pitwall.GetMigrationsFS(), "data/sql/migrations")
	if err != nil {
		return nil, err
	}

	migrations := migrate.NewMigrations()
	if err := migrations.Discover(migrationsFS); err != nil {
		return nil, err
	}

	migrator := migrate.NewMigrator(db, migrations)
	if err := migrator.Init(ctx); err != nil {
		return nil, err
	}

	if _, err := migrator.Migrate(ctx); err != nil {
		return nil, err
	}

	return db, nil
}

func seedTeams(ctx context.Context, repo pitwall.RepositoryManager) error {
	seeds := []*pitwall.Team{
		{Name: "Mercedes", Country: "Germany", TeamPrincipal: "Toto Wolff"},
		{Name: "Ferrari", Country: "Italy", TeamPrincipal: "Fred Vasseur"},
		{Name: "Red Bull Racing", Country: "Austria", TeamPrincipal: "Christian Horner"},
	}

	for _, team := range seeds {
		if _, err := repo.Teams().GetOrCreate(ctx, team); err != nil {
			return err
		}
	}

	return nil
}

func WaitExitSignal() os.Signal {
	ch := make(chan os.Signal, 3)
	signal.Notify(ch,
		syscall.SIGINT,
		syscall.SIGQUIT,
		syscall.SIGTERM,
	)
	return <-ch
}
