package dto

type EnableTwoFaRequest struct {
	Password string `json:"password" binding:"required"`
}

type ActivateTwoFaRequest struct {
	Code string `json:"code" binding:"required,numeric"`
}

type TwoFaSetupResponse struct {
	Secret          string `json:"secret"`
	ProvisioningURI string `json:"provisioning_uri"`
}

type RecoveryCodesResponse struct {
	RecoveryCodes []string `json:"recovery_codes"`
}
