package store

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"
)

// Config locates the persistence directory.
type Config interface {
	BasePath() string
}

// WalletSeed configures the simulated wallet provider.
type WalletSeed struct {
	Installed bool
	Accounts  []string
	ChainID   string
	Balance   string
}

// Settings is the loaded configuration.
type Settings struct {
	Path           string
	LogLevel       string
	Latency        time.Duration
	ChainID        string
	Wallet         WalletSeed
	AuthSecret     string
	LedgerContract string
}

// BasePath implements Config.
func (s *Settings) BasePath() string {
	return s.Path
}

// LoadConfig reads .taskverse.yaml from $TASKVERSE_CONFIG_PATH or the
// working directory, overlaid with TASKVERSE_* variables. A .env file in the
// working directory is loaded first.
func LoadConfig() (*Settings, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetDefault("path", "~/.taskverse.db")
	v.SetDefault("log_level", "INFO")
	v.SetDefault("latency", "0s")
	v.SetDefault("chain_id", "0x13881")
	v.SetDefault("wallet.installed", true)
	v.SetDefault("wallet.accounts", []string{"0x52908400098527886E0F7030069857D2E4169EE7"})
	v.SetDefault("wallet.chain_id", "0x1")
	v.SetDefault("wallet.balance", "1.5")
	v.SetDefault("auth.secret", "taskverse-dev-secret")
	v.SetDefault("ledger.contract", "0x1234567890123456789012345678901234567890")
	v.SetConfigName(".taskverse") // .yaml is implicit
	v.SetEnvPrefix("TASKVERSE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if override := os.Getenv("TASKVERSE_CONFIG_PATH"); override != "" {
		v.AddConfigPath(override)
	}
	v.AddConfigPath("./")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("store: read config: %w", err)
		}
	}

	path, err := homedir.Expand(v.GetString("path"))
	if err != nil {
		return nil, fmt.Errorf("store: expand path: %w", err)
	}

	return &Settings{
		Path:     path,
		LogLevel: v.GetString("log_level"),
		Latency:  v.GetDuration("latency"),
		ChainID:  v.GetString("chain_id"),
		Wallet: WalletSeed{
			Installed: v.GetBool("wallet.installed"),
			Accounts:  v.GetStringSlice("wallet.accounts"),
			ChainID:   v.GetString("wallet.chain_id"),
			Balance:   v.GetString("wallet.balance"),
		},
		AuthSecret:     v.GetString("auth.secret"),
		LedgerContract: v.GetString("ledger.contract"),
	}, nil
}
