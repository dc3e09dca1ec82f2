package migrate

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stepStatuses(result MigrationResult) map[StepName]StepStatus {
	statuses := make(map[StepName]StepStatus, len(result.Steps))
	for _, outcome := range result.Steps {
		statuses[outcome.Step] = outcome.Status
	}
	return statuses
}

func lastStep(t *testing.T, result MigrationResult) StepOutcome {
	t.Helper()
	require.NotEmpty(t, result.Steps)
	return result.Steps[len(result.Steps)-1]
}

func stepOutcome(t *testing.T, result MigrationResult, name StepName) StepOutcome {
	t.Helper()
	for _, outcome := range result.Steps {
		if outcome.Step == name {
			return outcome
		}
	}
	t.Fatalf("no outcome recorded for step '%s'", name)
	return StepOutcome{}
}

func TestRunCompletesAllSteps(t *testing.T) {
	f := newFixture()
	f.secrets.stores["kv-source"] = map[string]SecretValue{
		"api-key":     {Value: "abc123"},
		"db-password": {Value: "hunter2", ContentType: "text/plain"},
	}
	f.networks.networks[networkKey(sourceSub, "rg-source", "vnet-app")] = sourceNetwork()

	spec := networkSpec()
	spec.Tags = map[string]string{"owner": "platform"}

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	result := orchestrator.Run(context.Background(), spec)

	assert.Equal(t, EnvCompleted, result.Status)
	assert.Equal(t, PhaseDone, result.Phase)
	assert.Empty(t, result.Warnings())

	statuses := stepStatuses(result)
	for _, step := range []StepName{StepAuthenticate, StepResourceGroup, StepKeyVault, StepAccessPolicy, StepTags, StepSecrets, StepInventory, StepNetwork} {
		assert.Equal(t, StepSucceeded, statuses[step], "step %s", step)
	}

	require.NotNil(t, result.Secrets)
	assert.ElementsMatch(t, []string{"api-key", "db-password"}, result.Secrets.Copied)
	assert.Empty(t, result.Secrets.Failed)

	assert.Equal(t, []string{"rg-target"}, f.groups.created)
	assert.Equal(t, []string{"kv-target"}, f.vaults.created)
	assert.Equal(t, SecretValue{Value: "hunter2", ContentType: "text/plain"}, f.secrets.stores["kv-target"]["db-password"])
	assert.Equal(t, map[string]string{"owner": "platform"}, f.vaults.tagsApplied["kv-target"])
	require.Len(t, f.vaults.policies, 1)
	assert.Equal(t, testObjectID, f.vaults.policies[0].ObjectID)
	require.Len(t, f.networks.created, 1)
	assert.Equal(t, "10.0.0.0/16", f.networks.created[0].AddressPrefix)
	assert.False(t, result.FinishedAt.Before(result.StartedAt))
}

func TestRunAbortsOnFatalSteps(t *testing.T) {
	var tests = []struct {
		name  string
		setup func(f *fixture)
		step  StepName
	}{
		{
			name:  "authentication failure",
			setup: func(f *fixture) { f.auth.sessionErr = errors.New("no cached credentials") },
			step:  StepAuthenticate,
		},
		{
			name:  "target subscription not visible",
			setup: func(f *fixture) { f.verifier.failOn[targetSub] = errors.New("subscription is not visible") },
			step:  StepResourceGroup,
		},
		{
			name:  "resource group creation failure",
			setup: func(f *fixture) { f.groups.createErr["rg-target"] = errors.New("quota exceeded") },
			step:  StepResourceGroup,
		},
		{
			name: "vault creation and fetch failure",
			setup: func(f *fixture) {
				f.vaults.createErr = errors.New("name reserved")
				f.vaults.getErr = errors.New("forbidden")
			},
			step: StepKeyVault,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.secrets.stores["kv-source"] = map[string]SecretValue{"db-password": {Value: "hunter2"}}
			tc.setup(f)

			orchestrator, err := NewOrchestrator(f.services())
			require.NoError(t, err)

			result := orchestrator.Run(context.Background(), testSpec())

			assert.Equal(t, EnvAborted, result.Status)
			assert.Equal(t, PhaseAborted, result.Phase)
			last := lastStep(t, result)
			assert.Equal(t, tc.step, last.Step)
			assert.Equal(t, StepFailed, last.Status)

			// Aborting must leave the target vault untouched.
			assert.Empty(t, f.secrets.stores["kv-target"])
		})
	}
}

func TestRunContinuesPastNonFatalFailures(t *testing.T) {
	var tests = []struct {
		name  string
		setup func(f *fixture, spec *EnvironmentSpec)
		step  StepName
	}{
		{
			name:  "access policy replacement failure",
			setup: func(f *fixture, spec *EnvironmentSpec) { f.vaults.replaceErr = errors.New("forbidden") },
			step:  StepAccessPolicy,
		},
		{
			name: "tag update failure",
			setup: func(f *fixture, spec *EnvironmentSpec) {
				spec.Tags = map[string]string{"owner": "platform"}
				f.vaults.tagsErr = errors.New("conflict")
			},
			step: StepTags,
		},
		{
			name:  "secret enumeration failure",
			setup: func(f *fixture, spec *EnvironmentSpec) { f.secrets.listErr = errors.New("throttled") },
			step:  StepSecrets,
		},
		{
			name:  "inventory failure",
			setup: func(f *fixture, spec *EnvironmentSpec) { f.keys.err = errors.New("throttled") },
			step:  StepInventory,
		},
		{
			name: "network replication failure",
			setup: func(f *fixture, spec *EnvironmentSpec) {
				// No source network seeded, the lookup fails.
				spec.VNet = "vnet-app"
				spec.Subnet = "default"
			},
			step: StepNetwork,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixture()
			f.secrets.stores["kv-source"] = map[string]SecretValue{"db-password": {Value: "hunter2"}}
			spec := testSpec()
			tc.setup(f, &spec)

			orchestrator, err := NewOrchestrator(f.services())
			require.NoError(t, err)

			result := orchestrator.Run(context.Background(), spec)

			assert.Equal(t, EnvCompletedWithWarnings, result.Status)
			assert.Equal(t, PhaseDone, result.Phase)
			require.Len(t, result.Warnings(), 1)
			assert.Equal(t, tc.step, result.Warnings()[0].Step)
		})
	}
}

func TestRunWarnsOnPartialOutcomes(t *testing.T) {
	f := newFixture()
	f.secrets.stores["kv-source"] = map[string]SecretValue{
		"first":  {Value: "1"},
		"second": {Value: "2"},
		"third":  {Value: "3"},
	}
	f.secrets.getErr["second"] = errors.New("access denied")
	f.keys.names["kv-source"] = []string{"signing-key"}

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	result := orchestrator.Run(context.Background(), testSpec())

	assert.Equal(t, EnvCompletedWithWarnings, result.Status)
	assert.Equal(t, PhaseDone, result.Phase)

	require.NotNil(t, result.Secrets)
	assert.ElementsMatch(t, []string{"first", "third"}, result.Secrets.Copied)
	assert.Contains(t, result.Secrets.Failed, "second")

	require.NotNil(t, result.Inventory)
	assert.Equal(t, []string{"signing-key"}, result.Inventory.Keys)

	statuses := stepStatuses(result)
	assert.Equal(t, StepWarned, statuses[StepSecrets])
	assert.Equal(t, StepWarned, statuses[StepInventory])
}

func TestRunSkipsUndeclaredSteps(t *testing.T) {
	f := newFixture()
	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	result := orchestrator.Run(context.Background(), testSpec())

	statuses := stepStatuses(result)
	assert.Equal(t, StepSkipped, statuses[StepTags])
	assert.Equal(t, StepSkipped, statuses[StepNetwork])
	assert.Equal(t, EnvCompleted, result.Status)
	assert.Empty(t, f.networks.created)
	assert.Empty(t, f.vaults.tagsApplied)
}

func TestRunResolvesPrincipalObjectID(t *testing.T) {
	f := newFixture()
	f.directory.objectIDs["app-123"] = testObjectID

	spec := testSpec()
	spec.AccessObjectID = ""
	spec.Principal = &Principal{AppID: "app-123", Tenant: testTenant, Secret: "s3cret"}

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	result := orchestrator.Run(context.Background(), spec)

	assert.Equal(t, EnvCompleted, result.Status)
	require.Len(t, f.auth.logins, 1)
	assert.Equal(t, "app-123", f.auth.logins[0].AppID)
	assert.Equal(t, []string{"app-123"}, f.directory.resolved)
	require.Len(t, f.vaults.policies, 1)
	assert.Equal(t, testObjectID, f.vaults.policies[0].ObjectID)
}

func TestRunAbortsWithoutObjectIDSource(t *testing.T) {
	f := newFixture()
	services := f.services()
	services.Directory = nil

	spec := testSpec()
	spec.AccessObjectID = ""
	spec.Principal = &Principal{AppID: "app-123", Tenant: testTenant, Secret: "s3cret"}

	orchestrator, err := NewOrchestrator(services)
	require.NoError(t, err)

	result := orchestrator.Run(context.Background(), spec)

	assert.Equal(t, EnvAborted, result.Status)
	assert.Equal(t, StepAuthenticate, lastStep(t, result).Step)
}

func TestRunAllIsolatesEnvironments(t *testing.T) {
	f := newFixture()
	f.groups.createErr["rg-broken"] = errors.New("quota exceeded")
	f.secrets.stores["kv-source"] = map[string]SecretValue{"db-password": {Value: "hunter2"}}

	broken := testSpec()
	broken.Name = "broken"
	broken.Target.ResourceGroup = "rg-broken"

	healthy := testSpec()
	healthy.Name = "healthy"

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	results := orchestrator.RunAll(context.Background(), []EnvironmentSpec{broken, healthy})

	require.Len(t, results, 2)
	assert.Equal(t, "broken", results[0].Environment)
	assert.Equal(t, EnvAborted, results[0].Status)
	assert.Equal(t, "healthy", results[1].Environment)
	assert.Equal(t, EnvCompleted, results[1].Status)
	assert.Equal(t, []string{"kv-target"}, f.vaults.created)
}

func TestRunAllStopsOnCancelledContext(t *testing.T) {
	f := newFixture()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	results := orchestrator.RunAll(ctx, []EnvironmentSpec{testSpec()})

	assert.Empty(t, results)
	assert.Empty(t, f.groups.created)
}

func TestRunRecordsCancellationMidPipeline(t *testing.T) {
	f := newFixture()
	f.secrets.stores["kv-source"] = map[string]SecretValue{
		"first":  {Value: "1"},
		"second": {Value: "2"},
	}
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	f.secrets.onGet = func(string) { cancel() }

	orchestrator, err := NewOrchestrator(f.services())
	require.NoError(t, err)

	result := orchestrator.Run(ctx, testSpec())

	assert.Equal(t, EnvAborted, result.Status)
	// Cancellation keeps the phase the pipeline reached, Aborted is reserved
	// for fatal step failures.
	assert.Equal(t, PhaseSecretsCopied, result.Phase)
	last := lastStep(t, result)
	assert.Equal(t, StepInventory, last.Step)
	assert.Equal(t, StepFailed, last.Status)
	assert.Equal(t, "migration cancelled", last.Detail)
	require.NotNil(t, result.Secrets)
	assert.Equal(t, []string{"first"}, result.Secrets.Copied)

	// The truncated copy must not read like a complete one.
	secrets := stepOutcome(t, result, StepSecrets)
	assert.Equal(t, StepSucceeded, secrets.Status)
	assert.Equal(t, "copied 1 of 2 secrets before cancellation", secrets.Detail)
}

func TestNewOrchestratorRejectsMissingServices(t *testing.T) {
	f := newFixture()
	services := f.services()
	services.Vaults = nil

	_, err := NewOrchestrator(services)
	assert.Error(t, err)
}
