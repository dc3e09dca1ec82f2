package migrate

import (
	"context"
	"fmt"
	"time"

	"github.com/kvshift/kvshift/internal/message"
)

// Orchestrator drives the per-environment pipeline:
//
//	Pending -> GroupEnsured -> VaultEnsured -> PoliciesApplied ->
//	SecretsCopied -> Inventoried -> NetworkHandled -> Done
//
// Authentication, resource-group and key-vault provisioning are fatal steps,
// so Aborted is reachable from Pending or GroupEnsured only. Every later step
// failure degrades the result to completed-with-warnings instead of aborting.
type Orchestrator struct {
	services  Services
	groups    *GroupProvisioner
	vaults    *VaultProvisioner
	secrets   *SecretReplicator
	inventory *KeyCertInventory
	networks  *NetworkReplicator
}

func NewOrchestrator(services Services) (*Orchestrator, error) {
	if err := services.validate(); err != nil {
		return nil, err
	}
	return &Orchestrator{
		services:  services,
		groups:    NewGroupProvisioner(services.Groups),
		vaults:    NewVaultProvisioner(services.Vaults, services.Roles),
		secrets:   NewSecretReplicator(services.Secrets),
		inventory: NewKeyCertInventory(services.Keys, services.Certificates),
		networks:  NewNetworkReplicator(services.Networks),
	}, nil
}

// RunAll processes the environment list in order. One environment's abort
// never halts the batch; cancellation stops before the next environment.
func (o *Orchestrator) RunAll(ctx context.Context, specs []EnvironmentSpec) []MigrationResult {
	results := make([]MigrationResult, 0, len(specs))
	for _, spec := range specs {
		if ctx.Err() != nil {
			message.Warning("Migration cancelled, %d environment(s) not processed", len(specs)-len(results))
			break
		}
		results = append(results, o.Run(ctx, spec))
	}
	return results
}

// Run migrates a single environment. Each environment gets its own fresh
// SubscriptionContext handle.
func (o *Orchestrator) Run(ctx context.Context, spec EnvironmentSpec) MigrationResult {
	result := MigrationResult{
		Environment: spec.Name,
		Phase:       PhasePending,
		StartedAt:   time.Now().UTC(),
		Steps:       make([]StepOutcome, 0, 8),
	}
	sw := NewSubscriptionContext(o.services.Verifier)

	message.Info("Migrating environment '%s': vault '%s' (subscription %s) -> vault '%s' (subscription %s)",
		spec.Name, spec.Source.KeyVaultName, spec.Source.SubscriptionID, spec.Target.KeyVaultName, spec.Target.SubscriptionID)

	objectID, err := o.authenticate(ctx, spec)
	if err != nil {
		return o.abort(&result, StepAuthenticate, err)
	}
	result.record(StepAuthenticate, StepSucceeded, "")

	if _, err := o.groups.Ensure(ctx, sw, spec.Target.SubscriptionID, spec.Target.ResourceGroup, spec.Target.Location); err != nil {
		return o.abort(&result, StepResourceGroup, err)
	}
	result.record(StepResourceGroup, StepSucceeded, spec.Target.ResourceGroup)
	result.Phase = PhaseGroupEnsured

	if ctx.Err() != nil {
		return o.cancel(&result, StepKeyVault)
	}
	vault, err := o.vaults.EnsureVault(ctx, sw, spec)
	if err != nil {
		return o.abort(&result, StepKeyVault, err)
	}
	if vault.Existed {
		result.record(StepKeyVault, StepSucceeded, "already existed")
	} else {
		result.record(StepKeyVault, StepSucceeded, "created")
	}
	result.Phase = PhaseVaultEnsured

	if ctx.Err() != nil {
		return o.cancel(&result, StepAccessPolicy)
	}
	if err := o.vaults.ApplyAccessPolicy(ctx, sw, spec.Target, vault, objectID, DefaultPermissions()); err != nil {
		message.Warning("%v", err)
		result.record(StepAccessPolicy, StepFailed, err.Error())
	} else {
		result.record(StepAccessPolicy, StepSucceeded, "")
	}
	result.Phase = PhasePoliciesApplied

	if ctx.Err() != nil {
		return o.cancel(&result, StepTags)
	}
	if len(spec.Tags) == 0 {
		result.record(StepTags, StepSkipped, "no tag overrides declared")
	} else if merged, err := o.vaults.ApplyTags(ctx, sw, spec.Target, vault, spec.Tags); err != nil {
		message.Warning("%v", err)
		result.record(StepTags, StepFailed, err.Error())
	} else {
		result.record(StepTags, StepSucceeded, fmt.Sprintf("%d tags applied", len(merged)))
	}

	source := VaultEndpoint{
		SubscriptionID: spec.Source.SubscriptionID,
		ResourceGroup:  spec.Source.ResourceGroup,
		Name:           spec.Source.KeyVaultName,
	}
	target := VaultEndpoint{
		SubscriptionID: spec.Target.SubscriptionID,
		ResourceGroup:  spec.Target.ResourceGroup,
		Name:           spec.Target.KeyVaultName,
		URI:            vault.URI,
	}

	if ctx.Err() != nil {
		return o.cancel(&result, StepSecrets)
	}
	if names, err := o.secrets.ListNames(ctx, sw, source); err != nil {
		message.Warning("%v", err)
		result.record(StepSecrets, StepFailed, err.Error())
	} else {
		report := o.secrets.Copy(ctx, sw, source, target, names)
		result.Secrets = report
		switch {
		case len(names) == 0:
			result.record(StepSecrets, StepSucceeded, "source vault holds no secrets")
		case !report.AllCopied():
			result.record(StepSecrets, StepWarned, fmt.Sprintf("copied %d of %d secrets", len(report.Copied), len(names)))
		case len(report.Copied) < len(names):
			// Copy only stops short of the full list when the context is
			// cancelled mid-loop.
			result.record(StepSecrets, StepSucceeded, fmt.Sprintf("copied %d of %d secrets before cancellation", len(report.Copied), len(names)))
		default:
			result.record(StepSecrets, StepSucceeded, fmt.Sprintf("copied %d secrets", len(report.Copied)))
		}
	}
	result.Phase = PhaseSecretsCopied

	if ctx.Err() != nil {
		return o.cancel(&result, StepInventory)
	}
	inventory, err := o.inventory.Inventory(ctx, sw, source)
	result.Inventory = inventory
	if err != nil {
		message.Warning("%v", err)
		result.record(StepInventory, StepFailed, err.Error())
	} else if inventory.Empty() {
		result.record(StepInventory, StepSucceeded, "no keys or certificates found")
	} else {
		detail := fmt.Sprintf("%d keys and %d certificates require manual migration", len(inventory.Keys), len(inventory.Certificates))
		message.Warning("Vault '%s': %d keys and %d certificates cannot be copied and require manual migration",
			source.Name, len(inventory.Keys), len(inventory.Certificates))
		result.record(StepInventory, StepWarned, detail)
	}
	result.Phase = PhaseInventoried

	if ctx.Err() != nil {
		return o.cancel(&result, StepNetwork)
	}
	if !spec.ReplicatesNetwork() {
		result.record(StepNetwork, StepSkipped, "no virtual network declared")
	} else if _, err := o.networks.Replicate(ctx, sw, spec); err != nil {
		message.Warning("%v", err)
		result.record(StepNetwork, StepFailed, err.Error())
	} else {
		result.record(StepNetwork, StepSucceeded, spec.VNet)
	}
	result.Phase = PhaseNetworkHandled

	return o.finish(&result)
}

func (o *Orchestrator) authenticate(ctx context.Context, spec EnvironmentSpec) (string, error) {
	var session AuthSession
	var err error
	if spec.Principal != nil {
		session, err = o.services.Auth.Login(ctx, *spec.Principal)
	} else {
		session, err = o.services.Auth.CurrentSession(ctx)
	}
	if err != nil {
		return "", fmt.Errorf("failed to authenticate: %w", err)
	}
	message.Debug("Authenticated as '%s' (tenant %s)", session.Principal, session.TenantID)

	objectID := spec.AccessObjectID
	if objectID == "" && spec.Principal != nil {
		if o.services.Directory == nil {
			return "", fmt.Errorf("no access object id declared and no directory service available to resolve app '%s'", spec.Principal.AppID)
		}
		objectID, err = o.services.Directory.ResolveAppObjectID(ctx, spec.Principal.AppID)
		if err != nil {
			return "", fmt.Errorf("failed to resolve object id for app '%s': %w", spec.Principal.AppID, err)
		}
		message.Debug("Resolved access object id for app '%s': %s", spec.Principal.AppID, objectID)
	}
	return objectID, nil
}

// abort terminates the environment on a fatal step failure. Only called while
// the phase is still Pending or GroupEnsured.
func (o *Orchestrator) abort(result *MigrationResult, step StepName, err error) MigrationResult {
	message.Error("Environment '%s' aborted: %v", result.Environment, err)
	result.record(step, StepFailed, err.Error())
	result.Phase = PhaseAborted
	result.Status = EnvAborted
	result.FinishedAt = time.Now().UTC()
	return *result
}

// cancel terminates the environment on host cancellation. The phase keeps the
// last value it legitimately reached.
func (o *Orchestrator) cancel(result *MigrationResult, step StepName) MigrationResult {
	message.Warning("Environment '%s' cancelled before step '%s'", result.Environment, step)
	result.record(step, StepFailed, "migration cancelled")
	result.Status = EnvAborted
	result.FinishedAt = time.Now().UTC()
	return *result
}

func (o *Orchestrator) finish(result *MigrationResult) MigrationResult {
	result.Phase = PhaseDone
	result.FinishedAt = time.Now().UTC()
	if len(result.Warnings()) > 0 {
		result.Status = EnvCompletedWithWarnings
		message.Warning("Environment '%s' completed with %d warning(s)", result.Environment, len(result.Warnings()))
	} else {
		result.Status = EnvCompleted
		message.Success("Environment '%s' completed", result.Environment)
	}
	return *result
}
