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

package close

import (
	"go.uber.org/zap"
)

type closeFn struct {
	name string
	fn   func() error
}

// Closer releases resources in the reverse order they were acquired.
type Closer struct {
	log *zap.Logger
	fns []closeFn
}

func NewCloser(log *zap.Logger) *Closer {
	return &Closer{
		log: log,
	}
}

func (c *Closer) Add(name string, fn func() error) {
	c.fns = append(c.fns, closeFn{name: name, fn: fn})
}

// AddFunc registers a release function that cannot fail.
func (c *Closer) AddFunc(name string, fn func()) {
	c.Add(name, func() error {
		fn()
		return nil
	})
}

// CloseAll calls every function, even when some fail, and forgets them.
// It returns the number of failures, which are logged.
func (c *Closer) CloseAll() int {
	failures := 0
	for i := len(c.fns) - 1; i >= 0; i-- {
		if err := c.fns[i].fn(); err != nil {
			failures++
			c.log.Warn("could not close the resource",
				zap.String("resource", c.fns[i].name),
				zap.Error(err),
			)
		}
	}
	c.fns = nil
	return failures
}
