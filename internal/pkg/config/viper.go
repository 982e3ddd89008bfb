package config

import (
	"bytes"
	"errors"
	"os"
	"path"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/spf13/viper"
)

// Viper is a Config implementation backed by github.com/spf13/viper.
type Viper struct {
	v *viper.Viper
}

// NewViper builds a Viper-backed Config.
//
// Values resolve from the environment first, then from the optional file at
// pathFile, then from defaults. An empty pathFile means environment and
// defaults only. The file type is inferred from its extension, so a ".env"
// file works as well as yaml or json. The configuration is read once; it is
// not watched for changes.
func NewViper(pathFile string, defaults map[string]any) (*Viper, error) {
	v := newViper(defaults)

	pathFile = strings.TrimSpace(pathFile)
	if pathFile == "" {
		return &Viper{v: v}, nil
	}

	if isDotEnv(pathFile) {
		if err := loadDotEnv(pathFile); err != nil {
			return nil, err
		}
		return &Viper{v: v}, nil
	}

	v.SetConfigFile(pathFile)
	if err := v.ReadInConfig(); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func isDotEnv(pathFile string) bool {
	base := path.Base(pathFile)
	return base == ".env" || path.Ext(base) == ".env"
}

// loadDotEnv exports every KEY=VALUE of a dotenv file into the process
// environment, leaving variables that are already set untouched. Dotted keys
// are then resolved through AutomaticEnv like any other variable.
func loadDotEnv(pathFile string) error {
	dv := viper.New()
	dv.SetConfigFile(pathFile)
	dv.SetConfigType("env")
	if err := dv.ReadInConfig(); err != nil {
		return err
	}

	for _, key := range dv.AllKeys() {
		name := strings.ToUpper(key)
		if _, exists := os.LookupEnv(name); exists {
			continue
		}
		if err := os.Setenv(name, dv.GetString(key)); err != nil {
			return err
		}
	}

	return nil
}

// NewViperFromBytes loads configuration from memory and returns a Viper-backed Config.
// configType should be a format supported by Viper (e.g. "yaml", "json", "env").
func NewViperFromBytes(configType string, data []byte, defaults map[string]any) (*Viper, error) {
	if strings.TrimSpace(configType) == "" {
		return nil, errors.New("config type is required")
	}

	v := newViper(defaults)
	v.SetConfigType(configType)

	if err := v.ReadConfig(bytes.NewReader(data)); err != nil {
		return nil, err
	}

	return &Viper{v: v}, nil
}

func newViper(defaults map[string]any) *viper.Viper {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	return v
}

// GetString returns the value for key as string.
func (vc *Viper) GetString(key string) string {
	return vc.v.GetString(key)
}

// GetInt returns the value for key as int.
func (vc *Viper) GetInt(key string) int {
	return vc.v.GetInt(key)
}

// GetBool returns the value for key as bool.
func (vc *Viper) GetBool(key string) bool {
	return vc.v.GetBool(key)
}

// GetFloat64 returns the value for key as float64.
func (vc *Viper) GetFloat64(key string) float64 {
	return vc.v.GetFloat64(key)
}

// GetSecond returns the value for key as seconds.
func (vc *Viper) GetSecond(key string) time.Duration {
	return time.Duration(vc.v.GetInt64(key)) * time.Second
}

// GetArray returns the value for key split by commas.
func (vc *Viper) GetArray(key string) []string {
	parts := lo.Map(strings.Split(vc.v.GetString(key), ","), func(s string, _ int) string {
		return strings.TrimSpace(s)
	})
	return lo.Compact(parts)
}

// IsSet reports whether key has a value.
func (vc *Viper) IsSet(key string) bool {
	return vc.v.IsSet(key)
}

// Close implements io.Closer for interface compatibility.
func (vc *Viper) Close() error {
	return nil
}
