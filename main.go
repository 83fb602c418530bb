package main

import (
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/httpserver"
	"github.com/harshal-mamo-technolabs/bazzingo-games/internal/store"
)

const releaseVersion = "0.1.0"

type config struct {
	bind            string
	port            int
	dbPath          string
	dailySalt       string
	jwtSecret       string
	clientOrigin    string
	suggestionCount int
	logLevel        string
	production      bool
}

func (c *config) validate() error {
	if c.port < 1 || c.port > 65535 {
		return fmt.Errorf("invalid port (must be between 1-65535 inclusive): %d", c.port)
	}
	return nil
}

func newCmd(cfg *config) *cobra.Command {
	v := viper.New()
	v.SetEnvPrefix("BAZZINGO")
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	cmd := &cobra.Command{
		Use:           "bazzingo-games",
		Short:         "Daily-suggestions service for the bazzingo mini-games.",
		Args:          cobra.ExactArgs(0),
		Version:       releaseVersion,
		SilenceErrors: true,
		SilenceUsage:  true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := cfg.validate(); err != nil {
				return err
			}
			return run(cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})

	fs.StringVarP(&cfg.bind, "bind", "b", "0.0.0.0", "address to bind to (env: BAZZINGO_BIND)")
	fs.IntVarP(&cfg.port, "port", "p", 5175, "port to listen on (env: BAZZINGO_PORT)")
	fs.StringVar(&cfg.dbPath, "db", "./data/bazzingo.db", "path to the sqlite database (env: BAZZINGO_DB)")
	fs.StringVar(&cfg.dailySalt, "daily-salt", "local_dev_salt", "salt for the daily rotation (env: BAZZINGO_DAILY_SALT)")
	fs.StringVar(&cfg.jwtSecret, "jwt-secret", "", "secret for signing auth tokens (env: BAZZINGO_JWT_SECRET)")
	fs.StringVar(&cfg.clientOrigin, "client-origin", "http://localhost:5173", "allowed CORS origin (env: BAZZINGO_CLIENT_ORIGIN)")
	fs.IntVar(&cfg.suggestionCount, "suggestion-count", 0, "games per daily rotation, 0 for the full catalog (env: BAZZINGO_SUGGESTION_COUNT)")
	fs.StringVar(&cfg.logLevel, "log-level", "info", "zerolog level (env: BAZZINGO_LOG_LEVEL)")
	fs.BoolVar(&cfg.production, "production", false, "enable secure cookies (env: BAZZINGO_PRODUCTION)")

	fs.VisitAll(func(f *pflag.Flag) {
		_ = v.BindPFlag(f.Name, f)
		_ = v.BindEnv(f.Name)
		if !f.Changed && v.IsSet(f.Name) {
			_ = fs.Set(f.Name, fmt.Sprintf("%v", v.Get(f.Name)))
		}
	})

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("bazzingo-games v{{.Version}}\n")

	return cmd
}

func run(cfg *config) error {
	if lvl, err := zerolog.ParseLevel(cfg.logLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}

	db, err := openDB(cfg.dbPath)
	if err != nil {
		return fmt.Errorf("open db: %w", err)
	}
	defer db.Close()
	if err := ensureSchema(db); err != nil {
		return err
	}

	srv := httpserver.New(httpserver.Config{
		JWTSecret:       cfg.jwtSecret,
		ClientOrigin:    cfg.clientOrigin,
		DailySalt:       cfg.dailySalt,
		SuggestionCount: cfg.suggestionCount,
		Secure:          cfg.production,
	}, store.NewSQLiteStore(db))

	addr := net.JoinHostPort(cfg.bind, strconv.Itoa(cfg.port))
	log.Info().Str("addr", addr).Str("version", releaseVersion).Msg("starting bazzingo-games")
	return srv.Start(addr)
}

func main() {
	_ = godotenv.Load()
	cfg := &config{}
	if err := newCmd(cfg).Execute(); err != nil {
		log.Fatal().Err(err).Msg("server exited")
	}
}
