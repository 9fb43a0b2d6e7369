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

package encoding_test

import (
	"testing"
	"time"

	vgencoding "github.com/abstract-foundation/agw-session-keys/libs/encoding"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zapcore"
)

func TestEncoding(t *testing.T) {
	t.Run("Duration round-trips through text", testDurationRoundTripsThroughText)
	t.Run("Invalid duration fails", testInvalidDurationFails)
	t.Run("Log level round-trips through text", testLogLevelRoundTripsThroughText)
	t.Run("Invalid log level fails", testInvalidLogLevelFails)
}

func testDurationRoundTripsThroughText(t *testing.T) {
	d := vgencoding.Duration{Duration: 90 * time.Minute}

	text, err := d.MarshalText()
	require.NoError(t, err)

	decoded := vgencoding.Duration{}
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, d.Get(), decoded.Get())
}

func testInvalidDurationFails(t *testing.T) {
	decoded := vgencoding.Duration{}
	assert.Error(t, decoded.UnmarshalText([]byte("forever")))
}

func testLogLevelRoundTripsThroughText(t *testing.T) {
	l := vgencoding.LogLevel{Level: zapcore.WarnLevel}

	text, err := l.MarshalText()
	require.NoError(t, err)
	assert.Equal(t, "warn", string(text))

	decoded := vgencoding.LogLevel{}
	require.NoError(t, decoded.UnmarshalText(text))
	assert.Equal(t, zapcore.WarnLevel, decoded.Get())
}

func testInvalidLogLevelFails(t *testing.T) {
	decoded := vgencoding.LogLevel{}
	assert.Error(t, decoded.UnmarshalText([]byte("loud")))
}
