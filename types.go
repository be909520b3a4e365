package arenaxauth

// schemeBearer is the fixed scheme label carried by every issued pair.
const schemeBearer = "Bearer"

// TokenPair is the result of one issuance or refresh call: a short-lived
// access token and a longer-lived, single-use refresh token minted from the
// same claims template. It is handed to the caller and never persisted;
// only the embedded claims are recoverable later.
type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int64  `json:"expires_in"` // access-token lifetime, seconds
	TokenType    string `json:"token_type"` // always "Bearer"
}
