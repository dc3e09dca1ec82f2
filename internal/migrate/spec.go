package migrate

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/kvshift/kvshift/internal/utils"
)

const (
	SKUStandard = "standard"
	SKUPremium  = "premium"
)

type SourceSpec struct {
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup" yaml:"resourceGroup"`
	KeyVaultName   string `json:"keyVaultName" yaml:"keyVaultName"`
}

type TargetSpec struct {
	SubscriptionID string `json:"subscriptionId" yaml:"subscriptionId"`
	ResourceGroup  string `json:"resourceGroup" yaml:"resourceGroup"`
	Location       string `json:"location" yaml:"location"`
	SKUTier        string `json:"skuTier,omitempty" yaml:"skuTier,omitempty"`
	KeyVaultName   string `json:"keyVaultName" yaml:"keyVaultName"`
}

type Principal struct {
	AppID  string `json:"appId" yaml:"appId"`
	Tenant string `json:"tenant" yaml:"tenant"`
	Secret string `json:"secret" yaml:"secret"`
}

// EnvironmentSpec describes one source to target migration unit. It is
// treated as immutable for the duration of a run.
type EnvironmentSpec struct {
	Name           string            `json:"name" yaml:"name"`
	Source         SourceSpec        `json:"source" yaml:"source"`
	Target         TargetSpec        `json:"target" yaml:"target"`
	Tags           map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
	VNet           string            `json:"vnet,omitempty" yaml:"vnet,omitempty"`
	Subnet         string            `json:"subnet,omitempty" yaml:"subnet,omitempty"`
	AccessObjectID string            `json:"accessObjectId,omitempty" yaml:"accessObjectId,omitempty"`
	Principal      *Principal        `json:"principal,omitempty" yaml:"principal,omitempty"`
}

func (s EnvironmentSpec) Validate() error {
	if s.Name == "" {
		return fmt.Errorf("environment name is required")
	}
	if err := uuid.Validate(s.Source.SubscriptionID); err != nil {
		return fmt.Errorf("source subscription id is not a valid subscription id: '%s'", s.Source.SubscriptionID)
	}
	if err := uuid.Validate(s.Target.SubscriptionID); err != nil {
		return fmt.Errorf("target subscription id is not a valid subscription id: '%s'", s.Target.SubscriptionID)
	}
	if !utils.IsValidResourceGroupName(s.Source.ResourceGroup) {
		return fmt.Errorf("source resource group name is not valid: '%s'", s.Source.ResourceGroup)
	}
	if !utils.IsValidResourceGroupName(s.Target.ResourceGroup) {
		return fmt.Errorf("target resource group name is not valid: '%s'", s.Target.ResourceGroup)
	}
	if !utils.IsValidVaultName(s.Source.KeyVaultName) {
		return fmt.Errorf("source key vault name is not valid: '%s'", s.Source.KeyVaultName)
	}
	if !utils.IsValidVaultName(s.Target.KeyVaultName) {
		return fmt.Errorf("target key vault name is not valid: '%s'", s.Target.KeyVaultName)
	}
	if s.Target.Location == "" {
		return fmt.Errorf("target location is required")
	}
	if s.Target.SKUTier != "" && s.Target.SKUTier != SKUStandard && s.Target.SKUTier != SKUPremium {
		return fmt.Errorf("target sku tier must be '%s' or '%s', got '%s'", SKUStandard, SKUPremium, s.Target.SKUTier)
	}
	if (s.VNet == "") != (s.Subnet == "") {
		return fmt.Errorf("vnet and subnet must be provided together")
	}
	if s.AccessObjectID == "" && s.Principal == nil {
		return fmt.Errorf("either accessObjectId or principal is required to grant vault access")
	}
	if s.Principal != nil {
		if s.Principal.AppID == "" || s.Principal.Tenant == "" {
			return fmt.Errorf("principal requires appId and tenant")
		}
	}
	return nil
}

// ReplicatesNetwork reports whether the optional network segment is declared.
func (s EnvironmentSpec) ReplicatesNetwork() bool {
	return s.VNet != "" && s.Subnet != ""
}
