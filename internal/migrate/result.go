package migrate

import "time"

// Phase is the per-environment pipeline state.
type Phase string

const (
	PhasePending         Phase = "Pending"
	PhaseGroupEnsured    Phase = "GroupEnsured"
	PhaseVaultEnsured    Phase = "VaultEnsured"
	PhasePoliciesApplied Phase = "PoliciesApplied"
	PhaseSecretsCopied   Phase = "SecretsCopied"
	PhaseInventoried     Phase = "Inventoried"
	PhaseNetworkHandled  Phase = "NetworkHandled"
	PhaseDone            Phase = "Done"
	PhaseAborted         Phase = "Aborted"
)

type StepName string

const (
	StepAuthenticate  StepName = "authenticate"
	StepResourceGroup StepName = "resource-group"
	StepKeyVault      StepName = "key-vault"
	StepAccessPolicy  StepName = "access-policy"
	StepTags          StepName = "tags"
	StepSecrets       StepName = "secrets"
	StepInventory     StepName = "inventory"
	StepNetwork       StepName = "network"
)

type StepStatus string

const (
	StepSucceeded StepStatus = "Succeeded"
	StepWarned    StepStatus = "Warned"
	StepFailed    StepStatus = "Failed"

	// StepSkipped marks an optional step whose inputs were not declared
	// (no tag overrides, no virtual network). It is not a warning and never
	// degrades the environment status.
	StepSkipped StepStatus = "Skipped"
)

type StepOutcome struct {
	Step   StepName   `json:"step"`
	Status StepStatus `json:"status"`
	Detail string     `json:"detail,omitempty"`
}

type EnvironmentStatus string

const (
	EnvCompleted             EnvironmentStatus = "Completed"
	EnvCompletedWithWarnings EnvironmentStatus = "CompletedWithWarnings"
	EnvAborted               EnvironmentStatus = "Aborted"
)

// MigrationResult is the full record of one environment's pipeline run.
type MigrationResult struct {
	Environment string            `json:"environment"`
	Status      EnvironmentStatus `json:"status"`
	Phase       Phase             `json:"phase"`
	Steps       []StepOutcome     `json:"steps"`
	Secrets     *SecretCopyReport `json:"secrets,omitempty"`
	Inventory   *InventoryReport  `json:"inventory,omitempty"`
	StartedAt   time.Time         `json:"startedAt"`
	FinishedAt  time.Time         `json:"finishedAt"`
}

func (r *MigrationResult) record(step StepName, status StepStatus, detail string) {
	r.Steps = append(r.Steps, StepOutcome{Step: step, Status: status, Detail: detail})
}

// Warnings lists the steps that did not succeed cleanly.
func (r *MigrationResult) Warnings() []StepOutcome {
	warned := make([]StepOutcome, 0)
	for _, outcome := range r.Steps {
		if outcome.Status == StepWarned || outcome.Status == StepFailed {
			warned = append(warned, outcome)
		}
	}
	return warned
}
