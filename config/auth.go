package config

import (
	"fmt"

	"main/utils"
)

// AuthConfig describes how to verify tokens minted by the external identity
// provider. This service never issues tokens itself.
type AuthConfig struct {
	JWTSecret string
	Issuer    string
}

func LoadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		JWTSecret: utils.GetEnvAsString("JWT_SECRET_KEY", ""),
		Issuer:    utils.GetEnvAsString("JWT_ISSUER", "glucosoin-identity"),
	}
	if cfg.JWTSecret == "" {
		return cfg, fmt.Errorf("JWT_SECRET_KEY is not set")
	}
	return cfg, nil
}
