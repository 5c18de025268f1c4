package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/fbxtools/fbxfile/fbxio"
	"github.com/spf13/viper"
)

// Configuration keys.
const (
	keyVersion           = "export.version"
	keyCompress          = "export.compress"
	keyCompressThreshold = "export.compress_threshold"
)

// loadConfig reads export settings into s. If path is empty, an optional
// fbxconv.yaml is looked up in the working directory and in
// ~/.config/fbxconv. Settings can also be given through FBXCONV_ environment
// variables, such as FBXCONV_EXPORT_VERSION.
func loadConfig(path string, s *fbxio.IOSettings, stderr io.Writer) error {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("fbxconv")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", "fbxconv"))
		}
	}

	v.SetEnvPrefix("FBXCONV")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault(keyVersion, s.Version)
	v.SetDefault(keyCompress, s.Compress)
	v.SetDefault(keyCompressThreshold, s.CompressThreshold)

	if err := v.ReadInConfig(); err == nil {
		fmt.Fprintln(stderr, "Using config file:", v.ConfigFileUsed())
	} else {
		var notFound viper.ConfigFileNotFoundError
		if path != "" || !errors.As(err, &notFound) {
			return err
		}
	}

	s.Version = v.GetUint32(keyVersion)
	s.Compress = v.GetBool(keyCompress)
	s.CompressThreshold = v.GetInt(keyCompressThreshold)
	return nil
}
