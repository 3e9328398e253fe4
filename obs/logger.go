// Copyright 2024 The Erigon Authors
// This file is part of Erigon.
//
// Erigon is free software: you can redistribute it and/or modify
// it under the terms of the GNU Lesser General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// Erigon is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Lesser General Public License for more details.
//
// You should have received a copy of the GNU Lesser General Public License
// along with Erigon. If not, see <http://www.gnu.org/licenses/>.

// Package obs holds the one process-wide logger the framework's
// components share. Apart from it and the capability registry in
// ir/iface, nothing in the module keeps global state.
package obs

import (
	"os"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	once   sync.Once
	logger *zap.SugaredLogger
)

// Logger returns the shared structured logger. Its level is controlled
// by the IR_LOG_LEVEL environment variable ("debug", "info", "warn",
// "error"; defaults to "info").
func Logger() *zap.SugaredLogger {
	once.Do(func() {
		lvl := zapcore.InfoLevel
		if v, ok := os.LookupEnv("IR_LOG_LEVEL"); ok {
			_ = lvl.UnmarshalText([]byte(v))
		}
		cfg := zap.NewProductionConfig()
		cfg.Level = zap.NewAtomicLevelAt(lvl)
		l, err := cfg.Build()
		if err != nil {
			l = zap.NewNop()
		}
		logger = l.Sugar()
	})
	return logger
}
