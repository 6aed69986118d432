// Package secrets resolves the classifier API key. The environment
// wins; an AWS Secrets Manager secret id is the fallback for hosts
// where keys are not exported into shells.
package secrets

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
)

// APIKeyEnvVar holds the classifier key when set.
const APIKeyEnvVar = "ANTHROPIC_API_KEY"

// secretPayload is the JSON shape stored in Secrets Manager. Plain
// string secrets are accepted too.
type secretPayload struct {
	APIKey string `json:"api_key"`
}

// secretFetcher is swapped out in tests.
type secretFetcher func(ctx context.Context, secretID string) (string, error)

var fetchSecret secretFetcher = awsFetchSecret

// ResolveAPIKey returns the classifier API key. The environment
// variable takes precedence; when empty and a secret id is configured,
// the key comes from AWS Secrets Manager. An empty result with no
// error means no key is available and the caller should fall back to
// pattern scoring.
func ResolveAPIKey(ctx context.Context, secretID string) (string, error) {
	if key := strings.TrimSpace(os.Getenv(APIKeyEnvVar)); key != "" {
		return key, nil
	}
	if secretID == "" {
		return "", nil
	}

	raw, err := fetchSecret(ctx, secretID)
	if err != nil {
		return "", fmt.Errorf("secret %s: %w", secretID, err)
	}
	return parseSecret(raw)
}

// parseSecret accepts either a JSON object with an api_key field or a
// bare key string.
func parseSecret(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if strings.HasPrefix(raw, "{") {
		var payload secretPayload
		if err := json.Unmarshal([]byte(raw), &payload); err != nil {
			return "", fmt.Errorf("unmarshal secret payload: %w", err)
		}
		if payload.APIKey == "" {
			return "", fmt.Errorf("secret payload has no api_key field")
		}
		return payload.APIKey, nil
	}
	if raw == "" {
		return "", fmt.Errorf("secret value is empty")
	}
	return raw, nil
}

func awsFetchSecret(ctx context.Context, secretID string) (string, error) {
	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return "", fmt.Errorf("load AWS config: %w", err)
	}

	svc := secretsmanager.NewFromConfig(cfg)
	out, err := svc.GetSecretValue(ctx, &secretsmanager.GetSecretValueInput{
		SecretId: aws.String(secretID),
	})
	if err != nil {
		return "", err
	}
	if out.SecretString == nil {
		return "", fmt.Errorf("secret has no string value")
	}
	return *out.SecretString, nil
}
