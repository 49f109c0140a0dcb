// Copyright 2025 walteh LLC
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package config

import (
	"context"
	"io/fs"
	"os"

	"github.com/rs/zerolog"
	"gitlab.com/tozd/go/errors"
)

// 🎯 LoadConfig loads a rule set file. The format is picked by extension:
// .json, .yaml/.yml or .hcl.
func LoadConfig(ctx context.Context, path string) (*Config, error) {
	logger := zerolog.Ctx(ctx)
	logger.Debug().Str("path", path).Msg("loading configuration")

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Errorf("reading config file: %w", err)
	}

	p := GetParser(path)
	if p == nil {
		return nil, errors.Errorf("no parser found for file: %s", path)
	}

	cfg, err := p.Parse(ctx, path, data)
	if err != nil {
		return nil, errors.Errorf("parsing config: %w", err)
	}
	cfg.location = path

	if err := cfg.Validate(); err != nil {
		return nil, errors.Errorf("validating config: %w", err)
	}

	return cfg, nil
}

// 🎯 Resolve returns the built-in rule sets merged with the ones in path.
// A missing file is only an error when the caller asked for it explicitly.
func Resolve(ctx context.Context, path string, explicit bool) (*Config, error) {
	builtin := Builtin()
	if path == "" {
		return builtin, nil
	}

	if _, err := os.Stat(path); err != nil && errors.Is(err, fs.ErrNotExist) && !explicit {
		zerolog.Ctx(ctx).Debug().Str("path", path).Msg("no config file, using built-in rule sets")
		return builtin, nil
	}

	loaded, err := LoadConfig(ctx, path)
	if err != nil {
		return nil, err
	}
	return builtin.Merge(loaded), nil
}
