package main

import (
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
	"github.com/project/librarydesk/config"
	"github.com/project/librarydesk/db"
	"github.com/project/librarydesk/internal/app"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

func main() {
	// environment provided by the runtime wins over the file
	_ = godotenv.Load(".env.local")

	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("library: %s", err)
	}
}

func newRootCmd() *cobra.Command {
	var (
		cfg    *config.Config
		logger *zap.Logger
	)

	root := &cobra.Command{
		Use:           "library",
		Short:         "Library catalog and lending service",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			var err error
			if cfg, err = config.NewConfig(); err != nil {
				log.Fatalf("can not get application config: %s", err)
			}
			if logger, err = NewFileLogger(cfg.Log.File); err != nil {
				log.Fatalf("can not initialize logger: %s", err)
			}
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if logger != nil {
				_ = logger.Sync()
			}
		},
	}

	serve := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		Args:  cobra.NoArgs,
		Run: func(*cobra.Command, []string) {
			app.Run(logger, cfg)
		},
	}

	migrate := &cobra.Command{
		Use:       "migrate [up|down|status]",
		Short:     "Apply or inspect database migrations",
		Args:      cobra.ExactArgs(1),
		ValidArgs: []string{string(db.Up), string(db.Down), string(db.Status)},
		RunE: func(cmd *cobra.Command, args []string) error {
			return db.Migrate(cmd.Context(), logger, cfg.PG.DSN, db.Command(args[0]))
		},
	}

	// bare invocation serves
	root.Run = serve.Run
	root.AddCommand(serve, migrate)
	return root
}

// NewFileLogger writes JSON logs to path, or to stdout when path is empty.
func NewFileLogger(path string) (*zap.Logger, error) {
	writeSyncer := zapcore.AddSync(os.Stdout)

	if path != "" {
		_ = os.MkdirAll(filepath.Dir(path), 0755)

		file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, err
		}
		writeSyncer = zapcore.AddSync(file)
	}

	encoderCfg := zap.NewProductionEncoderConfig()
	encoderCfg.EncodeTime = zapcore.ISO8601TimeEncoder
	encoder := zapcore.NewJSONEncoder(encoderCfg)

	core := zapcore.NewCore(encoder, writeSyncer, zap.InfoLevel)

	return zap.New(core), nil
}
