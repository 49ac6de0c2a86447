package data

import "time"

// AppConfig holds the application configuration read from config.toml
type AppConfig struct {
	Bot             BotConfig       `toml:"bot" envPrefix:"BOT_"`
	Seedphrase      string          `toml:"seed" env:"SEED"`
	ContractAddress string          `toml:"contractAddress" env:"CONTRACT_ADDRESS"`
	Network         NetworkConfig   `toml:"network" envPrefix:"NETWORK_"`
	Projector       ProjectorConfig `toml:"projector" envPrefix:"PROJECTOR_"`
	Log             LogConfig       `toml:"log" envPrefix:"LOG_"`
}

// BotConfig is the telegram side of the configuration
type BotConfig struct {
	Token         string  `toml:"token" env:"TOKEN"`
	Owner         int64   `toml:"owner" env:"OWNER"`
	Group         string  `toml:"group" env:"GROUP"`
	GroupID       int64   `toml:"groupID" env:"GROUP_ID"`
	PaidPerMinute float64 `toml:"paidPerMinute" env:"PAID_PER_MINUTE"`
	PaidBurst     int64   `toml:"paidBurst" env:"PAID_BURST"`
}

type NetworkConfig struct {
	Endpoint            string        `toml:"endpoint" env:"ENDPOINT"`
	ExplorerTransaction string        `toml:"explorerTransaction" env:"EXPLORER_TRANSACTION"`
	ExplorerAccount     string        `toml:"explorerAccount" env:"EXPLORER_ACCOUNT"`
	MaxParallelReads    int           `toml:"maxParallelReads" env:"MAX_PARALLEL_READS"`
	PollInterval        time.Duration `toml:"pollInterval" env:"POLL_INTERVAL"`
	TxTimeout           time.Duration `toml:"txTimeout" env:"TX_TIMEOUT"`
	GasLimit            uint64        `toml:"gasLimit" env:"GAS_LIMIT"`
}

type ProjectorConfig struct {
	PendingTimeout time.Duration `toml:"pendingTimeout" env:"PENDING_TIMEOUT"`
	DedupCacheSize int           `toml:"dedupCacheSize" env:"DEDUP_CACHE_SIZE"`
	RecordsBuffer  int           `toml:"recordsBuffer" env:"RECORDS_BUFFER"`
	ResubscribeMax time.Duration `toml:"resubscribeMax" env:"RESUBSCRIBE_MAX"`
}

type LogConfig struct {
	Level      string `toml:"level" env:"LEVEL"`
	File       string `toml:"file" env:"FILE"`
	MaxSize    int    `toml:"maxSize" env:"MAX_SIZE"`
	MaxBackups int    `toml:"maxBackups" env:"MAX_BACKUPS"`
	MaxAge     int    `toml:"maxAge" env:"MAX_AGE"`
	Compress   bool   `toml:"compress" env:"COMPRESS"`
}
