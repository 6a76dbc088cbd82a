package cmd

import (
	"github.com/spf13/cobra"

	"albumbot/bot"
	"albumbot/config"
	"albumbot/conversation"
	"albumbot/logger"
	"albumbot/resolver"
	"albumbot/server"
	"albumbot/store"
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Run the Telegram bot",
	Long:  `Starts the long-polling Telegram bot and, when configured, the status HTTP listener.`,
	Run: func(cmd *cobra.Command, args []string) {
		runBot()
	},
}

func init() {
	rootCmd.AddCommand(botCmd)
}

// runBot wires the whole service together and blocks on the polling loop.
func runBot() {
	cfg := config.Load()

	logger.Init(logger.Config{
		Level:      cfg.LogLevel,
		OutputPath: cfg.LogPath,
		MaxSize:    cfg.LogMaxSize,
		MaxBackups: cfg.LogMaxBackups,
		MaxAge:     cfg.LogMaxAge,
		Compress:   true,
	})

	if cfg.BotToken == "" {
		logger.Fatal("ALBUMBOT_TOKEN is not set")
	}

	st, err := store.Open(cfg.LedgerPath)
	if err != nil {
		logger.Fatal("failed to open ledger", logger.String("path", cfg.LedgerPath), logger.ErrorField(err))
	}
	logger.Info("ledger loaded",
		logger.String("path", cfg.LedgerPath),
		logger.Int("users", len(st.Snapshot())))

	var res resolver.Resolver = resolver.NewClient(cfg.ResolverAPIURL, cfg.ResolverCountry, cfg.ResolverPlatform)
	if cfg.RedisHost != "" {
		rdb, err := resolver.NewRedisClient(cfg)
		if err != nil {
			logger.Warn("Redis unavailable, resolver cache disabled", logger.ErrorField(err))
		} else {
			defer rdb.Close()
			res = resolver.NewCachedResolver(res, rdb, cfg.ResolverCacheTTL)
			logger.Info("resolver cache enabled",
				logger.String("addr", cfg.RedisHost+":"+cfg.RedisPort),
				logger.Duration("ttl", cfg.ResolverCacheTTL))
		}
	}

	engine := conversation.New(st, res, cfg.ResolverFallback)

	b, err := bot.New(cfg.BotToken, engine, st)
	if err != nil {
		logger.Fatal("failed to start bot", logger.ErrorField(err))
	}

	if cfg.StatusAddr != "" {
		go func() {
			if err := server.New(cfg.StatusAddr, st).Start(); err != nil {
				logger.Error("status server stopped", logger.ErrorField(err))
			}
		}()
	}

	b.Start()
}
