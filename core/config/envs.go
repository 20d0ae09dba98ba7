package config

import (
	"os"
	"strconv"
)

// Environment variables that override the yaml file. Secrets are usually
// provided this way rather than committed to a config file.
const (
	EnvEthRpcUrl             = "ETH_RPC_URL"
	EnvChainID               = "CHAIN_ID"
	EnvPrivateKey            = "PRIVATE_KEY"
	EnvDbPath                = "DB_PATH"
	EnvJWTSecret             = "JWT_SECRET"
	EnvAIProvider            = "AI_PROVIDER"
	EnvGeminiAPIKey          = "GEMINI_API_KEY"
	EnvOpenAIAPIKey          = "OPENAI_API_KEY"
	EnvWhatsAppToken         = "WHATSAPP_TOKEN"
	EnvWhatsAppPhoneNumberID = "WHATSAPP_PHONE_NUMBER_ID"
)

func applyEnv(raw *ConfigRaw) {
	setFromEnv(&raw.EthRpcUrl, EnvEthRpcUrl)
	setFromEnv(&raw.PrivateKey, EnvPrivateKey)
	setFromEnv(&raw.DbPath, EnvDbPath)
	setFromEnv(&raw.JWTSecret, EnvJWTSecret)
	setFromEnv(&raw.AI.Provider, EnvAIProvider)
	setFromEnv(&raw.WhatsApp.Token, EnvWhatsAppToken)
	setFromEnv(&raw.WhatsApp.PhoneNumberID, EnvWhatsAppPhoneNumberID)

	if v := os.Getenv(EnvChainID); v != "" {
		if id, err := strconv.ParseInt(v, 10, 64); err == nil {
			raw.ChainID = id
		}
	}

	// the api key follows the selected provider
	if raw.AI.ApiKey == "" {
		if raw.AI.Provider == "openai" {
			raw.AI.ApiKey = os.Getenv(EnvOpenAIAPIKey)
		} else {
			raw.AI.ApiKey = os.Getenv(EnvGeminiAPIKey)
		}
	}
}

func setFromEnv(dst *string, name string) {
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}
