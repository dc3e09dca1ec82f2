package migrate

import (
	"context"

	"github.com/kvshift/kvshift/internal/message"
)

type SecretReplicator struct {
	secrets SecretService
}

func NewSecretReplicator(secrets SecretService) *SecretReplicator {
	return &SecretReplicator{secrets: secrets}
}

// SecretCopyReport accumulates per-secret outcomes of one replication run.
type SecretCopyReport struct {
	Copied []string          `json:"copied"`
	Failed map[string]string `json:"failed,omitempty"`
}

func (r *SecretCopyReport) AllCopied() bool {
	return len(r.Failed) == 0
}

// ListNames enumerates the secret names held by the source vault.
func (p *SecretReplicator) ListNames(ctx context.Context, sw ContextSwitcher, source VaultEndpoint) ([]string, error) {
	if err := sw.SwitchTo(ctx, source.SubscriptionID); err != nil {
		return nil, &SecretEnumerationError{Vault: source.Name, Cause: err}
	}
	names, err := p.secrets.ListSecretNames(ctx, source)
	if err != nil {
		return nil, &SecretEnumerationError{Vault: source.Name, Cause: err}
	}
	return names, nil
}

// Copy replicates the named secrets from the source vault to the target
// vault, best effort: a single secret's failure is recorded in the report and
// the remaining secrets are still attempted. Reads and writes hit different
// subscriptions, so the active context is re-asserted immediately before each
// read and each write, never once per batch.
func (p *SecretReplicator) Copy(ctx context.Context, sw ContextSwitcher, source, target VaultEndpoint, names []string) *SecretCopyReport {
	report := &SecretCopyReport{
		Copied: make([]string, 0, len(names)),
		Failed: map[string]string{},
	}
	for _, name := range names {
		if ctx.Err() != nil {
			break
		}
		if err := p.copySecret(ctx, sw, source, target, name); err != nil {
			message.Warning("%v", err)
			report.Failed[name] = err.Error()
			continue
		}
		message.Debug("Copied secret '%s' to vault '%s'", name, target.Name)
		report.Copied = append(report.Copied, name)
	}
	return report
}

func (p *SecretReplicator) copySecret(ctx context.Context, sw ContextSwitcher, source, target VaultEndpoint, name string) error {
	if err := sw.SwitchTo(ctx, source.SubscriptionID); err != nil {
		return &SecretItemError{Secret: name, Op: "read", Cause: err}
	}
	value, err := p.secrets.GetSecretValue(ctx, source, name)
	if err != nil {
		return &SecretItemError{Secret: name, Op: "read", Cause: err}
	}
	if err := sw.SwitchTo(ctx, target.SubscriptionID); err != nil {
		return &SecretItemError{Secret: name, Op: "write", Cause: err}
	}
	if err := p.secrets.SetSecretValue(ctx, target, name, value); err != nil {
		return &SecretItemError{Secret: name, Op: "write", Cause: err}
	}
	return nil
}
