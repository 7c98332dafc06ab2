// Package bench drives the order book with a pseudorandom operation
// stream, periodically asserting the no-cross invariant, and exports
// the resulting trade log as CSV.
package bench

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Params parameterizes one benchmark run, named exactly as spec.md §6
// describes: {ops, p_limit, p_buy, start_mid, tick, max_spread,
// min_qty, max_qty, warmup, check_every, seed}.
type Params struct {
	Ops        int     `mapstructure:"ops"`
	PLimit     float64 `mapstructure:"p_limit"`
	PBuy       float64 `mapstructure:"p_buy"`
	StartMid   int64   `mapstructure:"start_mid"`
	Tick       int64   `mapstructure:"tick"`
	MaxSpread  int64   `mapstructure:"max_spread"`
	MinQty     int32   `mapstructure:"min_qty"`
	MaxQty     int32   `mapstructure:"max_qty"`
	Warmup     int     `mapstructure:"warmup"`
	CheckEvery int     `mapstructure:"check_every"`
	Seed       uint64  `mapstructure:"seed"`
}

// DefaultParams mirrors original_source/apps/benchmark.cpp's baked-in
// constants, given names rather than left as magic numbers.
func DefaultParams() Params {
	return Params{
		Ops:        1_000_000,
		PLimit:     0.8,
		PBuy:       0.5,
		StartMid:   10_000,
		Tick:       1,
		MaxSpread:  50,
		MinQty:     1,
		MaxQty:     100,
		Warmup:     1_000,
		CheckEvery: 10_000,
		Seed:       1,
	}
}

// LoadParams loads Params from an optional YAML file, falling back to
// DefaultParams for anything unset. Individual fields may be
// overridden via BENCH_* environment variables, mirroring the
// env-override convention used elsewhere in the pack's viper configs.
func LoadParams(path string) (Params, error) {
	v := viper.New()
	params := DefaultParams()
	v.SetDefault("ops", params.Ops)
	v.SetDefault("p_limit", params.PLimit)
	v.SetDefault("p_buy", params.PBuy)
	v.SetDefault("start_mid", params.StartMid)
	v.SetDefault("tick", params.Tick)
	v.SetDefault("max_spread", params.MaxSpread)
	v.SetDefault("min_qty", params.MinQty)
	v.SetDefault("max_qty", params.MaxQty)
	v.SetDefault("warmup", params.Warmup)
	v.SetDefault("check_every", params.CheckEvery)
	v.SetDefault("seed", params.Seed)

	v.SetEnvPrefix("BENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return Params{}, fmt.Errorf("read benchmark config: %w", err)
		}
	}

	var loaded Params
	if err := v.Unmarshal(&loaded); err != nil {
		return Params{}, fmt.Errorf("unmarshal benchmark config: %w", err)
	}
	return loaded, nil
}

// Validate checks the parameter ranges a malformed config file or
// BENCH_* environment override could otherwise smuggle into a run.
func (p Params) Validate() error {
	if p.Ops <= 0 {
		return fmt.Errorf("ops must be > 0")
	}
	if p.PLimit < 0 || p.PLimit > 1 {
		return fmt.Errorf("p_limit must be in [0, 1]")
	}
	if p.PBuy < 0 || p.PBuy > 1 {
		return fmt.Errorf("p_buy must be in [0, 1]")
	}
	if p.Tick <= 0 {
		return fmt.Errorf("tick must be > 0")
	}
	if p.MinQty <= 0 || p.MaxQty < p.MinQty {
		return fmt.Errorf("min_qty/max_qty must satisfy 0 < min_qty <= max_qty")
	}
	if p.CheckEvery <= 0 {
		return fmt.Errorf("check_every must be > 0")
	}
	return nil
}
