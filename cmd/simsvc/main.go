package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"

	"squadsim/internal/archive"
	"squadsim/internal/combat"
	"squadsim/internal/config"
	"squadsim/internal/roster"
	"squadsim/internal/util"
)

func main() {
	var cfgDir, out, attacking, defending, dbPath, level string
	var seed int64
	var n, rounds int
	var saveLog bool
	flag.StringVar(&cfgDir, "config", "assets", "config dir")
	flag.StringVar(&out, "out", "out.json", "output file (single) or summary file (batch)")
	flag.StringVar(&attacking, "attacking", "iron_wolves", "attacking squad id")
	flag.StringVar(&defending, "defending", "ember_court", "defending squad id")
	flag.Int64Var(&seed, "seed", 0, "seed (0 uses battle.yaml, then the clock)")
	flag.IntVar(&n, "n", 1, "number of simulations")
	flag.IntVar(&rounds, "rounds", 0, "max rounds (0 uses battle.yaml)")
	flag.BoolVar(&saveLog, "log", true, "save full battle log when n==1")
	flag.StringVar(&dbPath, "db", "", "sqlite file to archive single battles into")
	flag.StringVar(&level, "level", "", "log level (overrides battle.yaml)")
	flag.Parse()

	bundle, err := config.LoadAll(cfgDir)
	if err != nil {
		fail(err)
	}
	if level == "" {
		level = bundle.Battle.LogLevel
	}
	logger, err := util.NewLogger(level)
	if err != nil {
		fail(err)
	}
	defer logger.Sync()

	cat, err := roster.NewCatalog(bundle)
	if err != nil {
		logger.Fatal("build catalog", zap.Error(err))
	}
	if seed == 0 {
		seed = bundle.Battle.Seed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	r := runner{
		catalog:   cat,
		attacking: attacking,
		defending: defending,
		cfg:       combat.Config{MaxRounds: bundle.Battle.MaxRounds, AllowRetreat: bundle.Battle.Retreat()},
		log:       logger,
	}
	if rounds > 0 {
		r.cfg.MaxRounds = rounds
	}

	if n <= 1 {
		e, res, err := r.run(seed)
		if err != nil {
			logger.Fatal("battle failed", zap.Int64("seed", seed), zap.Error(err))
		}
		payload := map[string]any{"seed": seed, "result": res}
		if saveLog {
			payload["log"] = e.Log()
		}
		if err := os.WriteFile(out, combat.MarshalPretty(payload), 0644); err != nil {
			logger.Fatal("write output", zap.Error(err))
		}
		if dbPath != "" {
			if err := archiveBattle(dbPath, r, e); err != nil {
				logger.Error("archive battle", zap.Error(err))
			}
		}
		fmt.Printf("Single simsvc finished. Winner=%s by %s in %d rounds -> %s\n",
			res.Winner.ID, res.VictoryCondition, res.Rounds, out)
		return
	}

	sum := batch(r, seed, n, 8)
	if err := os.WriteFile(out, combat.MarshalPretty(sum), 0644); err != nil {
		logger.Fatal("write summary", zap.Error(err))
	}
	fmt.Printf("Batch %d done (%d failed) -> %s\n", n, sum.Failed, filepath.Base(out))
}

func archiveBattle(path string, r runner, e *combat.Engine) error {
	ctx := context.Background()
	store, err := archive.Open(ctx, path)
	if err != nil {
		return err
	}
	defer store.Close()
	rep, err := archive.NewReport(r.attacking, r.defending, e.Result(), e.Log(), time.Now())
	if err != nil {
		return err
	}
	return store.Create(ctx, rep)
}

func fail(err error) {
	fmt.Fprintln(os.Stderr, "simsvc:", err)
	os.Exit(1)
}
