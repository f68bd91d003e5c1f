package util

import (
	"fmt"
	"strings"

	"github.com/ValentinKolb/pDict/lib/cache"
	"github.com/ValentinKolb/pDict/lib/dict"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

const (
	// Wrap is the number of characters to Wrap the help text at
	Wrap int = 50
)

// WrapString wraps a string at Wrap characters
func WrapString(text string) string {
	var wrappedLines []string
	var currentLine strings.Builder
	lineWidth := 0

	for _, word := range strings.Fields(text) {
		wordWidth := len(word)

		// Check if we need to wrap
		if lineWidth > 0 && lineWidth+1+wordWidth > Wrap {
			wrappedLines = append(wrappedLines, currentLine.String())
			currentLine.Reset()
			lineWidth = 0
		}

		// Add space before word (if not first word on line)
		if lineWidth > 0 {
			currentLine.WriteString(" ")
			lineWidth++
		}

		// Add the word
		currentLine.WriteString(word)
		lineWidth += wordWidth
	}

	// Add any remaining text
	if currentLine.Len() > 0 {
		wrappedLines = append(wrappedLines, currentLine.String())
	}

	return strings.Join(wrappedLines, "\n")
}

// SetupStoreFlags adds the common store flags to a command
func SetupStoreFlags(cmd *cobra.Command) {
	key := "path"
	cmd.PersistentFlags().String(key, "./pdict-data", WrapString("Directory of the on-disk dictionary"))

	key = "engine"
	cmd.PersistentFlags().String(key, "badger", WrapString("Storage engine to use (badger, memory). The memory engine does not persist anything and is only useful together with perf"))

	key = "key-type"
	cmd.PersistentFlags().String(key, "string", WrapString("Type keys are parsed and ordered as (string, int64, uint64, float64)"))

	key = "compress"
	cmd.PersistentFlags().Bool(key, false, WrapString("Compress stored values with zstd"))

	key = "log-level"
	cmd.PersistentFlags().String(key, "error", WrapString("Log level of the storage engine (error, warn, info, debug)"))

	key = "cache-entries"
	cmd.PersistentFlags().Int(key, 0, WrapString("Max number of cached values (0 = default, negative = unbounded)"))

	key = "cache-bytes"
	cmd.PersistentFlags().Int64(key, 0, WrapString("Max total size of cached values in bytes (0 = default, negative = unbounded)"))

	key = "cache-disabled"
	cmd.PersistentFlags().Bool(key, false, WrapString("Disable the read cache"))

	key = "read-buffer"
	cmd.PersistentFlags().Int(key, 0, WrapString("Scratch buffer size in bytes for the first read attempt of a value (0 = default)"))
}

// InitConfig initializes configuration from environment variables
func InitConfig() {
	// load env files
	_ = godotenv.Load(".env")
	_ = godotenv.Load(".env.local")

	// initialize viper
	viper.SetEnvPrefix("pdict")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv() // read in environment variables that match
}

// StoreConfig holds everything needed to open a dictionary from the CLI.
type StoreConfig struct {
	Path     string
	Engine   string
	KeyType  string
	Compress bool
	LogLevel string
	Dict     *dict.Options
}

// GetStoreConfig reads the store configuration from viper
func GetStoreConfig() (*StoreConfig, error) {
	conf := &StoreConfig{
		Path:     viper.GetString("path"),
		Engine:   viper.GetString("engine"),
		KeyType:  viper.GetString("key-type"),
		Compress: viper.GetBool("compress"),
		LogLevel: viper.GetString("log-level"),
		Dict: &dict.Options{
			Cache: &cache.Options{
				Name:       "cli",
				MaxEntries: viper.GetInt("cache-entries"),
				MaxBytes:   viper.GetInt64("cache-bytes"),
				Disabled:   viper.GetBool("cache-disabled"),
			},
			ReadBufferSize: viper.GetInt("read-buffer"),
		},
	}

	switch conf.Engine {
	case "badger", "memory":
	default:
		return nil, fmt.Errorf("invalid engine %s", conf.Engine)
	}
	switch conf.KeyType {
	case "string", "int64", "uint64", "float64":
	default:
		return nil, fmt.Errorf("invalid key type %s", conf.KeyType)
	}

	return conf, nil
}

// BindCommandFlags binds a command's flags to viper
func BindCommandFlags(cmd *cobra.Command) error {
	return viper.BindPFlags(cmd.Flags())
}
