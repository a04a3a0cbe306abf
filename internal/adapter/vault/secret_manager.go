package vault

import (
	"fmt"

	"github.com/hashicorp/vault/api"
)

type SecretManager struct {
	client *api.Client
}

func NewSecretManager(address, token string) (*SecretManager, error) {
	config := api.DefaultConfig()
	config.Address = address

	client, err := api.NewClient(config)
	if err != nil {
		return nil, err
	}

	client.SetToken(token)

	return &SecretManager{client: client}, nil
}

func (sm *SecretManager) read(path, field string) (string, error) {
	secret, err := sm.client.Logical().Read("secret/data/" + path)
	if err != nil {
		return "", err
	}
	if secret == nil || secret.Data == nil {
		return "", fmt.Errorf("secret not found: %s", path)
	}

	data, ok := secret.Data["data"].(map[string]interface{})
	if !ok {
		return "", fmt.Errorf("malformed secret: %s", path)
	}
	val, ok := data[field].(string)
	if !ok {
		return "", fmt.Errorf("field %s missing in secret %s", field, path)
	}
	return val, nil
}

func (sm *SecretManager) GetDatabaseCredentials() (string, error) {
	return sm.read("database", "connection_string")
}

func (sm *SecretManager) GetOpenAIAPIKey() (string, error) {
	return sm.read("openai", "api_key")
}

func (sm *SecretManager) GetElevenLabsAPIKey() (string, error) {
	return sm.read("elevenlabs", "api_key")
}

func (sm *SecretManager) GetTwilioCredentials() (string, string, error) {
	sid, err := sm.read("twilio", "account_sid")
	if err != nil {
		return "", "", err
	}
	token, err := sm.read("twilio", "auth_token")
	if err != nil {
		return "", "", err
	}
	return sid, token, nil
}

func (sm *SecretManager) GetMetaPageToken() (string, error) {
	return sm.read("meta", "page_token")
}

func (sm *SecretManager) GetStripeAPIKey() (string, error) {
	return sm.read("stripe", "api_key")
}
