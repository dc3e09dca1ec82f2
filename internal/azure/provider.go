package azure

import (
	"fmt"
	"net/http"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/arm"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/justinrixx/retryhttp"

	"github.com/kvshift/kvshift/internal/migrate"
)

// Provider implements the migration pipeline's service interfaces on top of
// the Azure SDK. SDK clients are constructed per call; the credential is
// shared across all of them and may be swapped by Login.
type Provider struct {
	credential azcore.TokenCredential
	core       azcore.ClientOptions
	tenantID   string
}

func NewProvider() (*Provider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to load azure default credentials, %w", err)
	}
	return &Provider{
		credential: cred,
		core:       clientOptions(),
	}, nil
}

// clientOptions routes every SDK call through a retrying HTTP transport. The
// SDK's own retry policy is disabled so the transport owns the whole retry
// budget.
func clientOptions() azcore.ClientOptions {
	return azcore.ClientOptions{
		Retry: policy.RetryOptions{
			MaxRetries: -1,
		},
		Transport: &http.Client{
			Transport: retryhttp.New(
				retryhttp.WithMaxRetries(3),
			),
		},
	}
}

func (p *Provider) armOptions() *arm.ClientOptions {
	return &arm.ClientOptions{ClientOptions: p.core}
}

// Services bundles the provider into the service set the orchestrator takes.
func (p *Provider) Services() migrate.Services {
	return migrate.Services{
		Auth:         p,
		Verifier:     p,
		Groups:       p,
		Vaults:       p,
		Roles:        p,
		Secrets:      p,
		Keys:         p,
		Certificates: p,
		Networks:     p,
		Directory:    p,
	}
}
