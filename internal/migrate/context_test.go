package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSwitchToVerifiesEachSubscriptionOnce(t *testing.T) {
	f := newFixture()
	sw := NewSubscriptionContext(f.verifier)

	require.NoError(t, sw.SwitchTo(context.Background(), sourceSub))
	require.NoError(t, sw.SwitchTo(context.Background(), targetSub))
	require.NoError(t, sw.SwitchTo(context.Background(), sourceSub))

	assert.Equal(t, sourceSub, sw.Current())
	assert.Equal(t, []string{sourceSub, targetSub}, f.verifier.verifications)
}

func TestSwitchToRejectsInaccessibleSubscription(t *testing.T) {
	f := newFixture()
	f.verifier.failOn[targetSub] = errors.New("subscription disabled")
	sw := NewSubscriptionContext(f.verifier)

	require.NoError(t, sw.SwitchTo(context.Background(), sourceSub))
	err := sw.SwitchTo(context.Background(), targetSub)

	var switchErr *ContextSwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Equal(t, targetSub, switchErr.SubscriptionID)
	assert.Equal(t, sourceSub, sw.Current())
}

func TestSwitchToRejectsEmptySubscriptionID(t *testing.T) {
	f := newFixture()
	sw := NewSubscriptionContext(f.verifier)

	err := sw.SwitchTo(context.Background(), "")

	var switchErr *ContextSwitchError
	require.ErrorAs(t, err, &switchErr)
	assert.Empty(t, f.verifier.verifications)
}
