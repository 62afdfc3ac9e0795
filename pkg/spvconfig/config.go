// Package spvconfig loads an optional commentable-JSON config file
// describing which network and store path a wallet process should use. It
// is a convenience wrapper only; pkg/spvstore and pkg/checkpoint never
// require it and always take explicit Options/Params.
package spvconfig

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/tailscale/hujson"
)

// ErrConfigInvalid wraps a syntactically invalid (or schema-invalid) config
// file.
var ErrConfigInvalid = errors.New("spvconfig: invalid config file")

// Config is the on-disk shape of an spvstore-backed wallet's config file.
type Config struct {
	// Network selects the chain parameters to use, e.g. "mainnet".
	Network string `json:"network"`

	// StorePath is the Mapped Ring Store file path.
	StorePath string `json:"store_path"` //nolint:tagliatelle

	// CheckpointPath is an optional checkpoint archive to seed from when
	// StorePath does not yet exist.
	CheckpointPath string `json:"checkpoint_path,omitempty"` //nolint:tagliatelle

	// Capacity is the ring's slot capacity.
	Capacity uint64 `json:"capacity"`

	// WalletBirthday, if set, is the cutoff checkpoint seeding uses.
	WalletBirthday *time.Time `json:"wallet_birthday,omitempty"` //nolint:tagliatelle
}

// Default returns the baseline configuration, overridden field-by-field by
// whatever a loaded file specifies.
func Default() Config {
	return Config{
		Network:  "mainnet",
		Capacity: 1 << 20,
	}
}

// Load reads and parses the hujson (JSON-with-comments) config file at
// path. A missing file is not an error; Default() is returned instead.
func Load(path string) (Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path) //nolint:gosec
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}

		return Config{}, fmt.Errorf("reading config file %s: %w", path, err)
	}

	standardized, err := hujson.Standardize(data)
	if err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
	}

	if err := json.Unmarshal(standardized, &cfg); err != nil {
		return Config{}, fmt.Errorf("%w: %s: %w", ErrConfigInvalid, path, err)
	}

	if cfg.StorePath == "" {
		return Config{}, fmt.Errorf("%w: %s: store_path is required", ErrConfigInvalid, path)
	}

	if cfg.Capacity == 0 {
		return Config{}, fmt.Errorf("%w: %s: capacity must be > 0", ErrConfigInvalid, path)
	}

	return cfg, nil
}
