package configutils

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"prtrack/internal/pkg/fs"
	"prtrack/internal/pkg/github"
	"prtrack/internal/schedule"

	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DEFAULT_CONFIG_DIR = "~/.config/prtrack"
	LOCAL_CONFIG_FILE  = ".prtrackcfg"
	ENV_PREFIX         = "PRTRACK"
)

var filetypes = []string{"yaml", "json", "toml"}

type FlagSet interface {
	GetString(string) (string, error)
	GetBool(string) (bool, error)
}

type configMerger interface {
	SetConfigType(string)
	MergeConfig(io.Reader) error
}

var (
	ErrHomeDirNotFound = errors.New("unable to determine the home directory")
	ErrConfigFileIsDir = errors.New("configuration file is a directory")
)

var filesystem fs.Filesystem = fs.OS{}

var mergeConfig = func(in io.Reader, cm configMerger) error {
	err := cm.MergeConfig(in)
	if err != nil {
		return err
	}

	return nil
}

var fileExists = func(filename string, fs fs.Filesystem) error {
	info, err := fs.Stat(filename)
	if err != nil {
		return err
	}

	if info.IsDir() {
		return ErrConfigFileIsDir
	}

	return nil
}

var loadFile = func(filename string, fs fs.Filesystem) (io.ReadCloser, error) {
	err := fileExists(filename, fs)
	if err != nil {
		return nil, err
	}

	f, err := fs.Open(filename)
	if err != nil {
		return nil, err
	}

	return f, nil
}

var loadConfig = func(filename, filetype string, cm configMerger) error {
	f, err := loadFile(filename, filesystem)
	if err != nil {
		return err
	}
	defer f.Close()

	cm.SetConfigType(filetype)
	return mergeConfig(f, cm)
}

// loadAnyType merges filename, trying every supported file type unless
// the extension names one.
func loadAnyType(filename string, cm configMerger) error {
	types := filetypes
	if ext := strings.TrimPrefix(filepath.Ext(filename), "."); ext != "" {
		if ext == "yml" {
			ext = "yaml"
		}
		for _, ft := range filetypes {
			if ft == ext {
				types = []string{ext}
			}
		}
	}

	var err error
	for _, ft := range types {
		err = loadConfig(filename, ft, cm)
		if err == nil {
			return nil
		}
		log.Debug().Err(err).
			Msgf("config loading failed for type %s, skipping to next filetype", ft)
	}

	return err
}

var getGlobalConfigDir = func() (string, error) {
	return homedir.Expand(DEFAULT_CONFIG_DIR)
}

// SetDefaults registers default values and the PRTRACK_ environment
// overrides, e.g. PRTRACK_GITHUB_TOKEN for github.token.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("schedule", schedule.DefaultExpression)
	v.SetDefault("strategy", "fanout")
	v.SetDefault("github.endpoint", github.DefaultEndpoint)
	v.SetDefault("github.max_concurrent_requests", 0)
	v.SetDefault("github.requests_per_second", 0)
	v.SetDefault("notify.stdout", true)

	v.SetEnvPrefix(ENV_PREFIX)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
}

// LoadGlobalInto merges the global configuration into v. An explicit path
// must exist; the default location is optional.
func LoadGlobalInto(v *viper.Viper, path string) error {
	SetDefaults(v)

	if path != "" {
		p, err := homedir.Expand(path)
		if err != nil {
			return ErrHomeDirNotFound
		}

		return errors.Wrapf(loadAnyType(p, v), "could not load config %s", p)
	}

	cfgDir, err := getGlobalConfigDir()
	if err != nil {
		return ErrHomeDirNotFound
	}

	for _, ft := range filetypes {
		f := filepath.Join(cfgDir, fmt.Sprintf("config.%s", ft))
		if fileExists(f, filesystem) != nil {
			continue
		}

		return errors.Wrapf(loadConfig(f, ft, v), "could not load config %s", f)
	}

	log.Debug().Str("dir", cfgDir).Msg("no global config file found")
	return nil
}

// LoadGlobal loads the global configuration into the process-wide viper
// instance.
func LoadGlobal(path string) error {
	return LoadGlobalInto(viper.GetViper(), path)
}

// MergeLocalConfig merges a .prtrackcfg file found in dir, if any.
func MergeLocalConfig(v *viper.Viper, dir string) error {
	f := filepath.Join(dir, LOCAL_CONFIG_FILE)
	if fileExists(f, filesystem) != nil {
		return nil
	}

	return errors.Wrapf(loadAnyType(f, v), "could not load config %s", f)
}

// Load reads the global configuration and the working directory's local
// configuration on top of it.
func Load(path string) error {
	err := LoadGlobal(path)
	if err != nil {
		return err
	}

	wd, err := filesystem.Getwd()
	if err != nil {
		return nil
	}

	return MergeLocalConfig(viper.GetViper(), wd)
}

func GetBoolFlagOrDefault(fs FlagSet, flag string, d bool) bool {
	v, err := fs.GetBool(flag)
	if err != nil {
		return d
	}

	return v
}

func GetStringFlagOrDefault(fs FlagSet, flag, d string) string {
	s, err := fs.GetString(flag)
	if err != nil || s == "" {
		return d
	}

	return s
}
