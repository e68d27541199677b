package bloombox

import "github.com/MrEthical07/bloombox/users"

// LoginResult is returned by a successful Login.
type LoginResult struct {
	AccessToken  string      `json:"access_token"`
	RefreshToken string      `json:"refresh_token"`
	User         *users.User `json:"user"`
}

const (
	linkPurposeVerify = "verify"
	linkPurposeReset  = "reset"

	verifyPath = "/api/v1/auth/verify/"
	resetPath  = "/api/v1/auth/password-reset-confirm/"
)
