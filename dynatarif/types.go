package dynatarif

type tokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
}

type userResponse struct {
	Contracts []struct {
		ContractId string `json:"contract_id"`
	} `json:"contracts"`
}

type rawPrice struct {
	Start      string  `json:"start"`
	End        string  `json:"end"`
	PriceCtKWh float64 `json:"price_ct_kwh"`
}

type prognosisResponse struct {
	Data []rawPrice `json:"data"`
}
