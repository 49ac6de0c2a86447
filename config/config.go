package config

import (
	"bytes"
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v11"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/pkg/errors"
)

// EnvPrefix prefixes every environment override, e.g. LUCKY7_SEED
const EnvPrefix = "LUCKY7_"

const (
	defaultMaxParallelReads = 16
	defaultPollInterval     = time.Second * 6
	defaultTxTimeout        = time.Minute * 2
	defaultPendingTimeout   = time.Minute * 5
	defaultDedupCacheSize   = 4096
	defaultRecordsBuffer    = 64
	defaultResubscribeMax   = time.Second * 30
	defaultPaidPerMinute    = 2
	defaultPaidBurst        = 3
	defaultLogLevel         = "*:INFO"
)

var (
	cfgPath string
	// fileCfg is the configuration as the file holds it, before any
	// environment override
	fileCfg data.AppConfig
)

// NewConfig - reads the application configuration from the provided path,
// applies the environment overrides and returns an AppConfig struct or an
// error if something goes wrong
func NewConfig(configPath string) (*data.AppConfig, error) {
	decoded := data.AppConfig{}
	_, err := toml.DecodeFile(configPath, &decoded)
	if err != nil {
		return nil, errors.Wrapf(err, "decoding %s", configPath)
	}

	cfg := &data.AppConfig{}
	*cfg = decoded
	err = env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix})
	if err != nil {
		return nil, errors.Wrap(err, "reading environment overrides")
	}

	ApplyDefaults(cfg)
	cfgPath = configPath
	fileCfg = decoded

	return cfg, nil
}

// ApplyDefaults fills every unset tunable
func ApplyDefaults(cfg *data.AppConfig) {
	if cfg.Network.MaxParallelReads == 0 {
		cfg.Network.MaxParallelReads = defaultMaxParallelReads
	}
	if cfg.Network.PollInterval <= 0 {
		cfg.Network.PollInterval = defaultPollInterval
	}
	if cfg.Network.TxTimeout <= 0 {
		cfg.Network.TxTimeout = defaultTxTimeout
	}
	if cfg.Projector.PendingTimeout <= 0 {
		cfg.Projector.PendingTimeout = defaultPendingTimeout
	}
	if cfg.Projector.DedupCacheSize <= 0 {
		cfg.Projector.DedupCacheSize = defaultDedupCacheSize
	}
	if cfg.Projector.RecordsBuffer <= 0 {
		cfg.Projector.RecordsBuffer = defaultRecordsBuffer
	}
	if cfg.Projector.ResubscribeMax <= 0 {
		cfg.Projector.ResubscribeMax = defaultResubscribeMax
	}
	if cfg.Bot.PaidPerMinute <= 0 {
		cfg.Bot.PaidPerMinute = defaultPaidPerMinute
	}
	if cfg.Bot.PaidBurst <= 0 {
		cfg.Bot.PaidBurst = defaultPaidBurst
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = defaultLogLevel
	}
}

// Save writes the group id discovered at runtime back to the file the
// configuration was read from. The rest of the file is kept as read, so
// values coming from the environment never reach the disk.
func Save(cfg *data.AppConfig) error {
	saved := fileCfg
	saved.Bot.GroupID = cfg.Bot.GroupID

	buf := &bytes.Buffer{}
	err := toml.NewEncoder(buf).Encode(saved)
	if err != nil {
		return err
	}

	err = os.WriteFile(cfgPath, buf.Bytes(), 0600)
	if err != nil {
		return errors.Wrapf(err, "writing %s", cfgPath)
	}
	fileCfg = saved

	return nil
}
