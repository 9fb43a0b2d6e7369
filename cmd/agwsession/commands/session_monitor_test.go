package cmd_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	cmd "github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands"
	"github.com/abstract-foundation/agw-session-keys/cmd/agwsession/commands/flags"
	"github.com/abstract-foundation/agw-session-keys/session"
	"github.com/abstract-foundation/agw-session-keys/session/sessiontest"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMonitorSession(t *testing.T) {
	t.Run("Only the changes of usability are reported", testMonitoringReportsOnlyChanges)
	t.Run("Storage failures stop the monitoring", testMonitoringStopsOnStorageFailure)
	t.Run("Non-positive interval fails", testMonitoringWithNonPositiveIntervalFails)
	t.Run("Non-positive interval flag fails", testMonitoringFlagsWithNonPositiveIntervalFail)
}

func testMonitoringReportsOnlyChanges(t *testing.T) {
	// given
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	account := sessiontest.RandomAddress(t)
	cred := sessiontest.NewCredential(t, account, sessiontest.NewTemplate(), time.Now())
	expectedHash, err := cred.Hash()
	require.NoError(t, err)

	// The session is usable for two checks, then it is gone.
	getter := &sequenceGetter{
		results:   []*session.Credential{&cred, &cred, nil, nil},
		onDrained: cancel,
	}

	var events []*cmd.MonitorSessionEvent

	// when
	err = cmd.MonitorSession(ctx, getter, account, time.Millisecond, func(event *cmd.MonitorSessionEvent) {
		events = append(events, event)
	})

	// then
	require.NoError(t, err)
	require.Len(t, events, 2)
	assert.True(t, events[0].Usable)
	assert.Equal(t, expectedHash.Hex(), events[0].SessionHash)
	assert.Equal(t, account.Hex(), events[0].Account)
	assert.False(t, events[1].Usable)
	assert.Empty(t, events[1].SessionHash)
}

func testMonitoringStopsOnStorageFailure(t *testing.T) {
	// given
	storageErr := errors.New("disk is gone")
	getter := &sequenceGetter{
		err: storageErr,
	}

	// when
	err := cmd.MonitorSession(context.Background(), getter, sessiontest.RandomAddress(t), time.Millisecond, func(*cmd.MonitorSessionEvent) {
		t.Fatal("no event should be reported")
	})

	// then
	require.ErrorIs(t, err, storageErr)
}

func testMonitoringWithNonPositiveIntervalFails(t *testing.T) {
	// when
	err := cmd.MonitorSession(context.Background(), &sequenceGetter{}, sessiontest.RandomAddress(t), 0, func(*cmd.MonitorSessionEvent) {})

	// then
	require.ErrorIs(t, err, cmd.ErrIntervalMustBePositive)
}

func testMonitoringFlagsWithNonPositiveIntervalFail(t *testing.T) {
	// given
	f := &cmd.MonitorSessionFlags{
		AccountFlags: cmd.AccountFlags{Account: sessiontest.RandomAddress(t).Hex()},
		Interval:     -time.Second,
	}

	// when
	_, err := f.Validate()

	// then
	var flagErr flags.FlagError
	assert.ErrorAs(t, err, &flagErr)
}

// sequenceGetter returns the results in order, then calls onDrained and
// keeps returning the last result.
type sequenceGetter struct {
	mu        sync.Mutex
	results   []*session.Credential
	err       error
	calls     int
	onDrained func()
}

func (g *sequenceGetter) GetValidSession(_ context.Context, _ common.Address) (*session.Credential, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.err != nil {
		return nil, g.err
	}

	idx := g.calls
	g.calls++
	if idx >= len(g.results)-1 {
		idx = len(g.results) - 1
		if g.onDrained != nil {
			g.onDrained()
		}
	}
	return g.results[idx], nil
}
