package community

import "encoding/json"

type LoginDetails struct {
	AccountName string
	Password    string

	// Codes known up front. Anything the server asks for beyond these is
	// requested from Factors.
	TwoFactorCode string
	EmailCode     string
	Factors       FactorSource
}

// LoginFactors is the extra-auth state of one login run. It starts from the
// codes in LoginDetails and grows as the server demands more.
type LoginFactors struct {
	TwoFactorCode string
	EmailCode     string
	EmailSteamID  string
	CaptchaGID    string
	CaptchaText   string
}

type RSAKey struct {
	Modulus   string
	Exponent  string
	Timestamp string
}

// Session is the authenticated web session written to every trusted domain.
type Session struct {
	SteamID          string
	OAuthToken       string
	SessionID        string
	SteamLogin       string
	SteamLoginSecure string
	Domains          []string
}

type LoginState int

const (
	StateStart LoginState = iota
	StateAwaitingFactors
	StateSuccess
	StateFatal
)

func (s LoginState) String() string {
	switch s {
	case StateStart:
		return "start"
	case StateAwaitingFactors:
		return "awaiting_factors"
	case StateSuccess:
		return "success"
	case StateFatal:
		return "fatal"
	}
	return "unknown"
}

type ResponseKind int

const (
	ResponseRetryable ResponseKind = iota
	ResponseSuccess
	ResponseNeedsTwoFactor
	ResponseNeedsEmail
	ResponseNeedsCaptcha
	ResponseInvalidCredentials
	ResponseTooManyFailures
	ResponseDeviceLockout
)

func (k ResponseKind) String() string {
	switch k {
	case ResponseRetryable:
		return "retryable"
	case ResponseSuccess:
		return "success"
	case ResponseNeedsTwoFactor:
		return "needs_twofactor"
	case ResponseNeedsEmail:
		return "needs_email"
	case ResponseNeedsCaptcha:
		return "needs_captcha"
	case ResponseInvalidCredentials:
		return "invalid_credentials"
	case ResponseTooManyFailures:
		return "too_many_failures"
	case ResponseDeviceLockout:
		return "device_lockout"
	}
	return "unknown"
}

// responses

type getRSAKeyRes struct {
	Success      bool   `json:"success"`
	PublickeyMod string `json:"publickey_mod"`
	PublickeyExp string `json:"publickey_exp"`
	Timestamp    string `json:"timestamp"`
	TokenGid     string `json:"token_gid"`
}

type loginRes struct {
	Success           bool       `json:"success"`
	LoginComplete     bool       `json:"login_complete"`
	RequiresTwoFactor bool       `json:"requires_twofactor"`
	EmailAuthNeeded   bool       `json:"emailauth_needed"`
	EmailDomain       string     `json:"emaildomain"`
	EmailSteamID      flexString `json:"emailsteamid"`
	CaptchaNeeded     bool       `json:"captcha_needed"`
	CaptchaGID        flexString `json:"captcha_gid"`
	Message           string     `json:"message"`
	OAuth             string     `json:"oauth"`
}

// oAuth is the JSON document carried as a string in loginRes.OAuth.
type oAuth struct {
	SteamID       string `json:"steamid"`
	AccountName   string `json:"account_name"`
	OAuthToken    string `json:"oauth_token"`
	WGToken       string `json:"wgtoken"`
	WGTokenSecure string `json:"wgtoken_secure"`
}

type getWGTokenRes struct {
	Response struct {
		Token       string `json:"token"`
		TokenSecure string `json:"token_secure"`
	} `json:"response"`
}

// flexString accepts both JSON strings and numbers; Steam sends ids either way.
type flexString string

func (s *flexString) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*s = ""
		return nil
	}
	var str string
	if err := json.Unmarshal(data, &str); err == nil {
		*s = flexString(str)
		return nil
	}
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		return err
	}
	*s = flexString(num.String())
	return nil
}
