package config

import (
	"os"

	"github.com/pkg/errors"
	"gopkg.in/ini.v1"

	util "github.com/xixiaodanpaul/bustub-database/internal/utils"
)

// Load reads engine options from an ini file. An empty path returns the
// defaults. Keys live in the [engine] section; absent keys keep their
// default values.
//
//	[engine]
//	path        = bustub.db
//	pool_size   = 1000
//	policy      = lru          ; lru | clock
//	sync_writes = false
//	log_level   = info
func Load(path string) (util.Options, error) {
	opts := util.DefaultOptions()
	if path == "" {
		return opts, nil
	}

	if _, err := os.Stat(path); err != nil {
		return opts, errors.Wrapf(err, "config file %s", path)
	}

	cfg, err := ini.Load(path)
	if err != nil {
		return opts, errors.Wrapf(err, "parse config file %s", path)
	}

	sec := cfg.Section("engine")
	opts.Path = sec.Key("path").MustString(opts.Path)
	opts.PoolSize = sec.Key("pool_size").MustInt(opts.PoolSize)
	opts.SyncWrites = sec.Key("sync_writes").MustBool(opts.SyncWrites)
	opts.LogLevel = sec.Key("log_level").MustString(opts.LogLevel)

	if sec.HasKey("policy") {
		switch util.ReplacementPolicy(sec.Key("policy").String()) {
		case util.PolicyLRU:
			opts.Policy = util.PolicyLRU
		case util.PolicyClock:
			opts.Policy = util.PolicyClock
		default:
			return opts, errors.Wrapf(util.ErrUnknownPolicy, "policy %q", sec.Key("policy").String())
		}
	}

	if opts.PoolSize <= 0 {
		return opts, errors.Wrapf(util.ErrInvalidPoolSize, "pool_size %d", opts.PoolSize)
	}
	return opts, nil
}
