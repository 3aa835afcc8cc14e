// Package config loads the broker's typed configuration document using the
// same koanf provider chain github.com/nasa-jpl/golaborate's andor-http
// server uses: a struct of defaults, overlaid by a YAML file. Keys are not
// case-sensitive: the file's keys are lower-cased before they are merged
// over the defaults, whose keys are the lower-case koanf tags.
package config

import (
	"strings"

	"github.com/knadh/koanf"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/pkg/errors"

	"github.com/irnas/koruza-control/internal/serialport"
)

// Config is the broker's configuration document. Hooks is a
// nested struct, not a flat "hooks.reset" field, because koanf unflattens
// dotted keys into nested maps before decoding: a field tagged "hooks"
// holding a struct tagged "reset" is what actually lines up with the
// "hooks.reset" key path, not a single field with a dotted tag.
type Config struct {
	Device   string `koanf:"device"`
	BaudRate int    `koanf:"baudrate"`
	Socket   string `koanf:"socket"`
	Hooks    struct {
		Reset string `koanf:"reset"`
	} `koanf:"hooks"`
}

// Defaults holds the values used to seed the koanf tree before the file is
// loaded; an absent file still produces an invalid Config (Device/Socket
// empty), so the defaults exist mostly to document the shape of the
// document rather than to make it runnable out of the box.
var Defaults = Config{
	BaudRate: 9600,
}

// Load reads and validates the configuration document at path.
func Load(path string) (Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(Defaults, "koanf"), nil); err != nil {
		return Config{}, errors.Wrap(err, "seeding configuration defaults")
	}
	// Lower-case the file's keys so that "Device" or "DEVICE" replaces the
	// seeded "device" instead of sitting beside it under a second key.
	fk := koanf.New(".")
	if err := fk.Load(file.Provider(path), yaml.Parser()); err != nil {
		return Config{}, errors.Wrapf(err, "loading %s", path)
	}
	lowered := make(map[string]interface{})
	for key, v := range fk.All() {
		lowered[strings.ToLower(key)] = v
	}
	if err := k.Load(confmap.Provider(lowered, "."), nil); err != nil {
		return Config{}, errors.Wrapf(err, "loading %s", path)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return Config{}, errors.Wrap(err, "unmarshalling configuration")
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate enforces the document's required fields: device and socket are
// required, and baudrate must be one of the allowed rates.
func (c Config) Validate() error {
	if c.Device == "" {
		return errors.New("configuration is missing required key \"device\"")
	}
	if c.Socket == "" {
		return errors.New("configuration is missing required key \"socket\"")
	}
	ok := false
	for _, b := range serialport.AllowedBauds {
		if b == c.BaudRate {
			ok = true
			break
		}
	}
	if !ok {
		return errors.Errorf("baudrate %d is not one of the allowed rates %v", c.BaudRate, serialport.AllowedBauds)
	}
	return nil
}
