package config

import (
	"bytes"
	"context"
	"encoding/json"
	"io"

	"github.com/a8m/envsubst"
	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"

	"go.viam.com/framecalc/logging"
)

// Read reads a config from the given file. ${VAR} references are substituted from the environment
// before the JSON is decoded.
func Read(
	ctx context.Context,
	filePath string,
	logger logging.Logger,
) (*Config, error) {
	buf, err := envsubst.ReadFile(filePath)
	if err != nil {
		return nil, errors.Wrapf(err, "cannot read config %s", filePath)
	}

	return FromReader(ctx, filePath, bytes.NewReader(buf), logger)
}

// FromReader reads a config from the given reader and specifies
// where, if applicable, the file the reader originated from.
func FromReader(
	ctx context.Context,
	originalPath string,
	r io.Reader,
	logger logging.Logger,
) (*Config, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	cfg := &Config{
		ConfigFilePath: originalPath,
	}
	decoder := json.NewDecoder(r)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to decode Config from json")
	}
	if err := cfg.Validate(); err != nil {
		return nil, errors.Wrapf(err, "invalid config %s", originalPath)
	}
	logger.Debugw("read config", "path", originalPath, "entries", len(cfg.Chain), "extraction", cfg.Extraction)
	return cfg, nil
}

// Schema returns the JSON schema of the config file, indented for display.
func Schema() ([]byte, error) {
	return json.MarshalIndent(jsonschema.Reflect(&Config{}), "", "  ")
}
