package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/RickyLoader/RileyBot-sub001/internal/cards"
	"github.com/RickyLoader/RileyBot-sub001/internal/command"
	"github.com/RickyLoader/RileyBot-sub001/internal/commands"
	"github.com/RickyLoader/RileyBot-sub001/internal/config"
	"github.com/RickyLoader/RileyBot-sub001/internal/discord"
	"github.com/RickyLoader/RileyBot-sub001/internal/logger"
	"github.com/RickyLoader/RileyBot-sub001/internal/lookup"
	"github.com/RickyLoader/RileyBot-sub001/internal/pager"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/cod"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/osrs"
	"github.com/RickyLoader/RileyBot-sub001/internal/stats/valorant"
	"github.com/RickyLoader/RileyBot-sub001/internal/storage"
)

func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := config.New()
	if err != nil {
		log.Fatal(err)
	}

	zlog := logger.New(cfg.LogLevel, cfg.LogFile)
	zlog.Info().Msg("starting stats bot")

	store, err := storage.New(cfg.StoragePath)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to open storage")
	}
	defer store.Close()

	fetcher := stats.NewClient(cfg.LookupTimeout, zlog)
	renderer := cards.NewRenderer(fetcher, zlog)

	registry := command.NewRegistry()
	history := command.WithHistory()
	err = registry.Register(
		command.Apply(commands.NewHelp(registry, cfg.TablePageSize), history),
		command.Apply(commands.NewPing(), history),
		command.Apply(commands.NewOSRS(osrs.New(fetcher, cfg.OSRSHiscoresURL), renderer, cfg.TablePageSize), history),
		command.Apply(commands.NewCOD(cod.New(fetcher, cfg.CODApiURL), renderer, cfg.TablePageSize), history),
		command.Apply(commands.NewValorant(valorant.New(fetcher, cfg.ValorantApiURL, cfg.ValorantApiKey)), history),
	)
	if err != nil {
		zlog.Fatal().Err(err).Msg("failed to register commands")
	}

	bot := discord.NewBot(cfg, store, registry, pager.NewRegistry(), lookup.New(zlog), zlog)

	errCh := make(chan error, 1)
	go func() {
		if err := bot.Run(ctx); err != nil {
			errCh <- err
		}
		close(errCh)
	}()

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)

	select {
	case s := <-sig:
		zlog.Info().Str("signal", s.String()).Msg("shutting down")
		cancel()
	case err := <-errCh:
		if err != nil {
			zlog.Error().Err(err).Msg("discord bot error")
		}
		cancel()
	case <-ctx.Done():
	}

	// Wait for the session to close before the deferred store flush.
	<-errCh
	zlog.Info().Msg("discord bot exited cleanly")
}
