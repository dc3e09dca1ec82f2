package azure

import (
	"context"
	"fmt"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/golang-jwt/jwt/v5"

	"github.com/kvshift/kvshift/internal/message"
	"github.com/kvshift/kvshift/internal/migrate"
)

const managementScope = "https://management.azure.com//.default"

// Login swaps the provider credential for a client-secret credential of the
// given service principal. Every client constructed after this call uses the
// new credential.
func (p *Provider) Login(ctx context.Context, principal migrate.Principal) (migrate.AuthSession, error) {
	cred, err := azidentity.NewClientSecretCredential(principal.Tenant, principal.AppID, principal.Secret, &azidentity.ClientSecretCredentialOptions{
		ClientOptions: p.core,
	})
	if err != nil {
		return migrate.AuthSession{}, fmt.Errorf("failed to create client secret credential, %w", err)
	}
	p.credential = cred
	message.Debug("Logging in: az login --service-principal -u %s --tenant %s", principal.AppID, principal.Tenant)
	return p.CurrentSession(ctx)
}

// CurrentSession acquires a management-plane token with the active credential
// and identifies the caller from the token claims.
func (p *Provider) CurrentSession(ctx context.Context) (migrate.AuthSession, error) {
	token, err := p.credential.GetToken(ctx, policy.TokenRequestOptions{Scopes: []string{managementScope}})
	if err != nil {
		return migrate.AuthSession{}, fmt.Errorf("failed to get access token, %w", err)
	}
	claims := make(jwt.MapClaims)
	if _, _, err = jwt.NewParser().ParseUnverified(token.Token, claims); err != nil {
		return migrate.AuthSession{}, fmt.Errorf("failed to parse access token, %w", err)
	}

	var session migrate.AuthSession
	session.TenantID, _ = claims["tid"].(string)
	if name, ok := claims["unique_name"].(string); ok {
		session.Principal = name
	} else if appID, ok := claims["appid"].(string); ok {
		session.Principal = appID
	}
	p.tenantID = session.TenantID
	return session, nil
}
