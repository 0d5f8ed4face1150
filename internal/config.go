package internal

import (
	"fmt"

	"github.com/spf13/viper"
)

type BTreeIndexConfig struct {
	AppName string `mapstructure:"app_name"`

	Storage struct {
		Workdir string `mapstructure:"workdir"`
	} `mapstructure:"storage"`

	Bufferpool struct {
		Capacity int `mapstructure:"capacity"`
	} `mapstructure:"bufferpool"`

	Debug bool `mapstructure:"debug"`
}

func LoadConfig(path string) (*BTreeIndexConfig, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	v.SetDefault("app_name", "btreeindex")
	v.SetDefault("storage.workdir", "data")
	v.SetDefault("bufferpool.capacity", 128)
	v.SetDefault("debug", false)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg BTreeIndexConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	return &cfg, nil
}
