package migrate

import (
	"context"
	"errors"
)

type KeyCertInventory struct {
	keys  KeyService
	certs CertificateService
}

func NewKeyCertInventory(keys KeyService, certs CertificateService) *KeyCertInventory {
	return &KeyCertInventory{keys: keys, certs: certs}
}

// InventoryReport lists key and certificate names found in the source vault.
// The material itself is non-exportable by policy and is never transferred;
// every name listed here requires manual migration.
type InventoryReport struct {
	Keys         []string `json:"keys"`
	Certificates []string `json:"certificates"`
}

func (r *InventoryReport) Empty() bool {
	return len(r.Keys) == 0 && len(r.Certificates) == 0
}

// Inventory enumerates keys and certificates in the source vault. A failed
// enumeration does not discard what the other one found: partial results are
// returned alongside the error.
func (i *KeyCertInventory) Inventory(ctx context.Context, sw ContextSwitcher, source VaultEndpoint) (*InventoryReport, error) {
	report := &InventoryReport{}

	if err := sw.SwitchTo(ctx, source.SubscriptionID); err != nil {
		return report, &InventoryError{Vault: source.Name, Cause: err}
	}
	keys, keysErr := i.keys.ListKeyNames(ctx, source)
	report.Keys = keys

	if err := sw.SwitchTo(ctx, source.SubscriptionID); err != nil {
		return report, &InventoryError{Vault: source.Name, Cause: err}
	}
	certs, certsErr := i.certs.ListCertificateNames(ctx, source)
	report.Certificates = certs

	if keysErr != nil || certsErr != nil {
		return report, &InventoryError{Vault: source.Name, Cause: errors.Join(keysErr, certsErr)}
	}
	return report, nil
}
