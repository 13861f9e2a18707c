package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/mitchelldurbincs/QuoridorEngine/internal/config"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/bot"
	"github.com/mitchelldurbincs/QuoridorEngine/internal/game/core"
)

func main() {
	configPath := flag.String("config", "", "Path to config file")
	mode := flag.String("mode", "", "two_player or four_player (empty to use config default)")
	difficulty := flag.String("difficulty", "", "Bot level: easy, medium, hard, expert (empty to use config default)")
	maxTurns := flag.Int("max-turns", -1, "Stop after this many bot turns (-1 to use config default)")
	seed := flag.Int64("seed", -1, "Random seed, 0 for time based (-1 to use config default)")
	think := flag.Bool("think", false, "Let bots wait out their thinking time")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error) (empty to use config default)")
	load := flag.String("load", "", "Resume the match saved in this file")
	save := flag.String("save", "", "Write the final match state to this file")
	flag.Parse()

	if err := config.Init(*configPath); err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize config")
	}
	demo := config.Get().Server.Demo

	if *mode == "" {
		*mode = demo.Mode
	}
	if *difficulty == "" {
		*difficulty = demo.Difficulty
	}
	if *maxTurns == -1 {
		*maxTurns = demo.MaxTurns
	}
	if *seed == -1 {
		*seed = demo.Seed
	}
	if !*think {
		*think = demo.Think
	}
	if *logLevel == "" {
		*logLevel = demo.LogLevel
	}
	setupLogging(*logLevel, demo.LogFormat)

	if *seed == 0 {
		*seed = time.Now().UnixNano()
	}
	matchCfg := game.MatchConfig{
		Logger: log.Logger,
		Rng:    rand.New(rand.NewSource(*seed)),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var (
		engine *game.Engine
		err    error
	)
	if *load != "" {
		engine, err = loadMatch(*load, matchCfg)
	} else {
		engine, err = newBotMatch(ctx, *mode, *difficulty, matchCfg)
	}
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to set up match")
	}

	log.Info().
		Str("match_id", engine.ID()).
		Int64("seed", *seed).
		Int("max_turns", *maxTurns).
		Bool("think", *think).
		Msg("Starting bot match")
	fmt.Println(engine.Board())

	turns, err := game.PlayBots(ctx, engine, *maxTurns, *think)
	if err != nil {
		log.Error().Err(err).Int("turns", turns).Msg("Bot match interrupted")
	}

	fmt.Println(engine.Board())
	printStats(engine)

	if engine.IsFinished() {
		log.Info().Str("winner", engine.Winner().String()).Int("turns", turns).Msg("Match finished")
	} else {
		log.Info().Str("to_move", engine.CurrentPlayer().String()).Int("turns", turns).Msg("Match stopped")
	}

	if *save != "" {
		if err := saveMatch(*save, engine); err != nil {
			log.Fatal().Err(err).Msg("Failed to save match")
		}
		log.Info().Str("file", *save).Msg("Match saved")
	}
}

// newBotMatch seats a bot of the given level in every seat and starts play
func newBotMatch(ctx context.Context, modeName, level string, cfg game.MatchConfig) (*game.Engine, error) {
	m, err := core.ParseMode(modeName)
	if err != nil {
		return nil, err
	}
	d, err := bot.DifficultyFor(level)
	if err != nil {
		return nil, err
	}
	// seated bots take the configured default level
	if err := config.Set("game.bots.default_level", d.Level); err != nil {
		return nil, err
	}

	cfg.Mode = m
	e, err := game.NewEngine(ctx, cfg)
	if err != nil {
		return nil, err
	}
	for _, slot := range m.Seats() {
		if err := e.AddPlayer(slot, true); err != nil {
			return nil, err
		}
	}
	if err := e.Start(); err != nil {
		return nil, err
	}
	return e, nil
}

func loadMatch(path string, cfg game.MatchConfig) (*game.Engine, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	state, err := game.UnmarshalState(data)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", path, err)
	}
	e, err := game.RestoreEngine(cfg, state)
	if err != nil {
		return nil, fmt.Errorf("restore %s: %w", path, err)
	}
	if e.Status().CanAddPlayers() {
		if err := e.Start(); err != nil {
			return nil, err
		}
	}
	return e, nil
}

func saveMatch(path string, e *game.Engine) error {
	data, err := game.MarshalState(e.State())
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func printStats(e *game.Engine) {
	for _, st := range e.Stats() {
		state := "active"
		if !st.Active {
			state = "out"
		}
		fmt.Printf("%-8s %-6s at %s  moves:%-3d walls placed:%-2d left:%-2d path:%d\n",
			st.Slot, state, st.Position, st.Moves, st.WallsPlaced, st.WallsRemaining, st.PathLength)
	}
}

func setupLogging(level, format string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)

	if format == "json" || os.Getenv("APP_ENV") == "production" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	} else {
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stderr,
			TimeFormat: time.RFC3339,
		})
	}
}
