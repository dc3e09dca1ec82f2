package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInventoryListsKeysAndCertificates(t *testing.T) {
	f := newFixture()
	f.keys.names["kv-source"] = []string{"signing-key"}
	f.certs.names["kv-source"] = []string{"tls-cert", "client-cert"}
	inventory := NewKeyCertInventory(f.keys, f.certs)
	sw := NewSubscriptionContext(f.verifier)

	report, err := inventory.Inventory(context.Background(), sw, sourceEndpoint())

	require.NoError(t, err)
	assert.Equal(t, []string{"signing-key"}, report.Keys)
	assert.Equal(t, []string{"tls-cert", "client-cert"}, report.Certificates)
	assert.False(t, report.Empty())
}

func TestInventoryKeepsPartialResults(t *testing.T) {
	f := newFixture()
	f.keys.err = errors.New("throttled")
	f.certs.names["kv-source"] = []string{"tls-cert"}
	inventory := NewKeyCertInventory(f.keys, f.certs)
	sw := NewSubscriptionContext(f.verifier)

	report, err := inventory.Inventory(context.Background(), sw, sourceEndpoint())

	var invErr *InventoryError
	require.ErrorAs(t, err, &invErr)
	assert.Equal(t, "kv-source", invErr.Vault)
	require.NotNil(t, report)
	assert.Empty(t, report.Keys)
	assert.Equal(t, []string{"tls-cert"}, report.Certificates)
}

func TestInventoryEmptyVault(t *testing.T) {
	f := newFixture()
	inventory := NewKeyCertInventory(f.keys, f.certs)
	sw := NewSubscriptionContext(f.verifier)

	report, err := inventory.Inventory(context.Background(), sw, sourceEndpoint())

	require.NoError(t, err)
	assert.True(t, report.Empty())
}
