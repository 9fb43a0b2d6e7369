// Copyright (C) 2023 Gobalsky Labs Limited
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as
// published by the Free Software Foundation, either version 3 of the
// License, or (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU Affero General Public License for more details.
//
// You should have received a copy of the GNU Affero General Public License
// along with this program.  If not, see <http://www.gnu.org/licenses/>.

package zap

import (
	"errors"
	"fmt"
	"os"
	"syscall"
)

// SupportedLogLevels lists the levels accepted by the --level flag.
var SupportedLogLevels = []string{
	"debug",
	"info",
	"warn",
	"error",
}

type Logger interface {
	Sync() error
}

// Sync returns a function flushing the logger, meant to be deferred.
// Syncing a terminal or a pipe is not supported by every OS, so these
// failures are not reported.
func Sync(logger Logger) func() {
	return func() {
		if err := logger.Sync(); err != nil && !isUnsyncableOutput(err) {
			_, _ = fmt.Fprintf(os.Stderr, "couldn't flush the logger: %v\n", err)
		}
	}
}

func isUnsyncableOutput(err error) bool {
	return errors.Is(err, syscall.EINVAL) || errors.Is(err, syscall.ENOTTY) || errors.Is(err, syscall.EBADF)
}
