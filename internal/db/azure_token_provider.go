package db

import (
	"context"
	"fmt"
	"time"

	"github.com/Azure/azure-sdk-for-go/sdk/azcore"
	"github.com/Azure/azure-sdk-for-go/sdk/azcore/policy"
	"github.com/Azure/azure-sdk-for-go/sdk/azidentity"
	"github.com/vvka-141/gioimport/pkg/gioimport"
)

// azureToken requests an Azure Database for PostgreSQL access token.
func azureToken(ctx context.Context, cred azcore.TokenCredential) (string, time.Time, error) {
	token, err := cred.GetToken(ctx, policy.TokenRequestOptions{
		Scopes: []string{AzurePostgreSQLScope},
	})
	if err != nil {
		return "", time.Time{}, fmt.Errorf("azure token acquisition failed: %w", err)
	}
	return token.Token, token.ExpiresOn, nil
}

// AzureServicePrincipalProvider acquires tokens using Service Principal credentials.
type AzureServicePrincipalProvider struct {
	tenantID   string
	clientID   string
	credential azcore.TokenCredential
}

// NewAzureServicePrincipalProvider requires all of tenantID, clientID and clientSecret.
func NewAzureServicePrincipalProvider(tenantID, clientID, clientSecret string) (*AzureServicePrincipalProvider, error) {
	if tenantID == "" || clientID == "" || clientSecret == "" {
		return nil, fmt.Errorf("azure service principal requires tenant id, client id and client secret: %w", gioimport.ErrInvalidConfig)
	}

	cred, err := azidentity.NewClientSecretCredential(tenantID, clientID, clientSecret, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure credential: %w", err)
	}

	return &AzureServicePrincipalProvider{
		tenantID:   tenantID,
		clientID:   clientID,
		credential: cred,
	}, nil
}

func (p *AzureServicePrincipalProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	return azureToken(ctx, p.credential)
}

func (p *AzureServicePrincipalProvider) String() string {
	return fmt.Sprintf("AzureServicePrincipal(tenant=%s, client=%s)", p.tenantID, p.clientID)
}

// AzureDefaultCredentialProvider uses the DefaultAzureCredential chain:
// environment, workload identity, managed identity, then developer CLIs.
type AzureDefaultCredentialProvider struct {
	credential azcore.TokenCredential
}

func NewAzureDefaultCredentialProvider() (*AzureDefaultCredentialProvider, error) {
	cred, err := azidentity.NewDefaultAzureCredential(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create Azure default credential: %w", err)
	}
	return &AzureDefaultCredentialProvider{credential: cred}, nil
}

func (p *AzureDefaultCredentialProvider) GetToken(ctx context.Context) (string, time.Time, error) {
	return azureToken(ctx, p.credential)
}

func (p *AzureDefaultCredentialProvider) String() string {
	return "AzureDefaultCredential"
}
