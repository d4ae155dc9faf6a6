package config

import "main/utils"

// TwoFactorConfig names the otpauth issuer shown in authenticator apps.
type TwoFactorConfig struct {
	AppName string
	Issuer  string
}

func LoadTwoFactorConfig() TwoFactorConfig {
	return TwoFactorConfig{
		AppName: utils.GetEnvAsString("TWO_FACTOR_APP_NAME", "GlucoSoin"),
		Issuer:  utils.GetEnvAsString("TWO_FACTOR_ISSUER", "GlucoSoin Medical"),
	}
}
