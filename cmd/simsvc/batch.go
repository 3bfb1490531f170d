package main

import (
	"sync"

	"go.uber.org/zap"

	"squadsim/internal/combat"
	"squadsim/internal/roster"
	"squadsim/internal/util"
)

type runner struct {
	catalog              *roster.Catalog
	attacking, defending string
	cfg                  combat.Config
	log                  *zap.Logger
}

// run fights one battle between fresh copies of the two squads.
func (r runner) run(seed int64) (*combat.Engine, *combat.BattleResult, error) {
	att, err := r.catalog.BuildSquad(r.attacking)
	if err != nil {
		return nil, nil, err
	}
	def, err := r.catalog.BuildSquad(r.defending)
	if err != nil {
		return nil, nil, err
	}
	e, err := combat.NewEngine(att, def, r.catalog.Races, util.NewSource(seed), r.cfg, combat.WithLogger(r.log))
	if err != nil {
		return nil, nil, err
	}
	res, err := e.ExecuteBattle()
	return e, res, err
}

type damageShare struct {
	Total int     `json:"total"`
	Ratio float64 `json:"ratio"`
}

type summary struct {
	Runs        int                    `json:"runs"`
	Failed      int                    `json:"failed"`
	Wins        map[string]int         `json:"wins"`
	WinRate     map[string]float64     `json:"win_rate"`
	AvgRounds   float64                `json:"avg_rounds"`
	TimeoutRate float64                `json:"timeout_rate"`
	CritRate    float64                `json:"crit_rate"`
	TotalDamage int                    `json:"total_damage"`
	ByUnit      map[string]damageShare `json:"by_unit"`
}

// batch runs n battles on a worker pool. Job i on worker w uses seed+w*7919+i.
func batch(r runner, seed int64, n, workers int) summary {
	var (
		mu                       sync.Mutex
		wins                     = map[string]int{}
		byUnit                   = map[string]int{}
		done, failed             int
		rounds, timeouts         int
		attacks, crits, totalDmg int
	)
	quiet := r
	quiet.log = zap.NewNop()

	wg := sync.WaitGroup{}
	jobs := make(chan int, n)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func(workerID int) {
			defer wg.Done()
			for i := range jobs {
				s := seed + int64(workerID)*7919 + int64(i)
				_, res, err := quiet.run(s)

				mu.Lock()
				if err != nil {
					failed++
					r.log.Warn("battle failed", zap.Int64("seed", s), zap.Error(err))
					mu.Unlock()
					continue
				}
				done++
				wins[res.Winner.ID]++
				rounds += res.Rounds
				if res.VictoryCondition == combat.VictoryTimeout {
					timeouts++
				}
				for id, v := range res.Statistics.DamageDealt {
					byUnit[id] += v
					totalDmg += v
				}
				for _, v := range res.Statistics.Attacks {
					attacks += v
				}
				for _, v := range res.Statistics.CriticalHits {
					crits += v
				}
				mu.Unlock()
			}
		}(w)
	}
	for i := 0; i < n; i++ {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	sum := summary{
		Runs: n, Failed: failed, Wins: wins, WinRate: map[string]float64{},
		TotalDamage: totalDmg, ByUnit: map[string]damageShare{},
	}
	if done > 0 {
		for id, w := range wins {
			sum.WinRate[id] = float64(w) / float64(done)
		}
		sum.AvgRounds = float64(rounds) / float64(done)
		sum.TimeoutRate = float64(timeouts) / float64(done)
	}
	if attacks > 0 {
		sum.CritRate = float64(crits) / float64(attacks)
	}
	for id, v := range byUnit {
		share := 0.0
		if totalDmg > 0 {
			share = float64(v) / float64(totalDmg)
		}
		sum.ByUnit[id] = damageShare{Total: v, Ratio: share}
	}
	return sum
}
