package migrate

import (
	"context"
	"fmt"
)

// Service interfaces the pipeline depends on. Implementations are stateless
// with respect to subscriptions: every call carries an explicit subscription
// id, the ambient active-subscription bookkeeping stays in SubscriptionContext.

type AuthSession struct {
	TenantID  string
	Principal string
}

type Authenticator interface {
	Login(ctx context.Context, principal Principal) (AuthSession, error)
	CurrentSession(ctx context.Context) (AuthSession, error)
}

type ResourceGroup struct {
	Name     string
	Location string
}

type ResourceGroupService interface {
	GetGroup(ctx context.Context, subscriptionID, name string) (*ResourceGroup, error)
	CreateGroup(ctx context.Context, subscriptionID, name, location string) (*ResourceGroup, error)
}

type VaultParams struct {
	Location string
	SKUTier  string
}

// VaultRecord is the pipeline's view of a key vault: produced by the ensure
// step, consumed by the access-policy and tag steps, discarded once the
// environment completes.
type VaultRecord struct {
	ResourceID        string
	Name              string
	URI               string
	TenantID          string
	Tags              map[string]string
	RBACAuthorization bool
	Existed           bool
}

type PermissionSet struct {
	Secrets      []string
	Keys         []string
	Certificates []string
}

type AccessPolicy struct {
	TenantID    string
	ObjectID    string
	Permissions PermissionSet
}

type VaultService interface {
	GetVault(ctx context.Context, subscriptionID, resourceGroup, name string) (*VaultRecord, error)
	CreateVault(ctx context.Context, subscriptionID, resourceGroup, name string, params VaultParams) (*VaultRecord, error)
	ReplaceAccessPolicy(ctx context.Context, subscriptionID, resourceGroup, name string, policy AccessPolicy) error
	UpdateTags(ctx context.Context, subscriptionID, resourceGroup, name string, tags map[string]string) error
}

type RoleAssignmentService interface {
	EnsureSecretsOfficer(ctx context.Context, subscriptionID, scope, objectID string) error
}

// VaultEndpoint addresses one vault's data plane. URI may be left empty,
// implementations derive it from the vault name.
type VaultEndpoint struct {
	SubscriptionID string
	ResourceGroup  string
	Name           string
	URI            string
}

type SecretValue struct {
	Value       string
	ContentType string
}

type SecretService interface {
	ListSecretNames(ctx context.Context, vault VaultEndpoint) ([]string, error)
	GetSecretValue(ctx context.Context, vault VaultEndpoint, name string) (SecretValue, error)
	SetSecretValue(ctx context.Context, vault VaultEndpoint, name string, value SecretValue) error
}

type KeyService interface {
	ListKeyNames(ctx context.Context, vault VaultEndpoint) ([]string, error)
}

type CertificateService interface {
	ListCertificateNames(ctx context.Context, vault VaultEndpoint) ([]string, error)
}

type NetworkDescriptor struct {
	Name          string `json:"name"`
	Location      string `json:"location"`
	AddressPrefix string `json:"addressPrefix"`
	SubnetName    string `json:"subnetName"`
	SubnetPrefix  string `json:"subnetPrefix"`
}

type NetworkService interface {
	GetNetwork(ctx context.Context, subscriptionID, resourceGroup, vnetName, subnetName string) (*NetworkDescriptor, error)
	CreateNetwork(ctx context.Context, subscriptionID, resourceGroup string, network NetworkDescriptor) error
}

type DirectoryService interface {
	ResolveAppObjectID(ctx context.Context, appID string) (string, error)
}

// Services bundles every collaborator the orchestrator needs. Directory is
// optional; the remaining services are mandatory.
type Services struct {
	Auth         Authenticator
	Verifier     SubscriptionVerifier
	Groups       ResourceGroupService
	Vaults       VaultService
	Roles        RoleAssignmentService
	Secrets      SecretService
	Keys         KeyService
	Certificates CertificateService
	Networks     NetworkService
	Directory    DirectoryService
}

func (s Services) validate() error {
	if s.Auth == nil || s.Verifier == nil || s.Groups == nil || s.Vaults == nil ||
		s.Roles == nil || s.Secrets == nil || s.Keys == nil || s.Certificates == nil || s.Networks == nil {
		return fmt.Errorf("missing service implementation")
	}
	return nil
}
