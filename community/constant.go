package community

import "github.com/vuquang23/go-steam-guard/netutil"

const (
	baseUrl    = "https://steamcommunity.com/"
	doLoginUrl = "https://steamcommunity.com/login/dologin/"
	rsaUrl     = "https://steamcommunity.com/login/getrsakey/"
	logoutUrl  = "https://steamcommunity.com/login/logout/"
	captchaUrl = "https://steamcommunity.com/login/rendercaptcha/?gid="

	getWGTokenUrl = "https://api.steampowered.com/IMobileAuthService/GetWGToken/v0001"
)

const (
	oauthClientID = "DE45CD61"
	oauthScope    = "read_profile write_profile read_client write_client"

	DefaultMaxAttempts = 5
)

const (
	cookieSteamLoginSecure = "steamLoginSecure"
	cookieSteamLogin       = "steamLogin"
	cookieSessionID        = "sessionid"
	cookieLanguage         = "Steam_Language"
	cookieMobileVersion    = "mobileClientVersion"
	cookieMobileClient     = "mobileClient"
	cookieBirthtime        = "birthtime"

	mobileClientVersion = "0 (2.1.3)"
	mobileClient        = "android"
	birthtimeSentinel   = "-729000000"
)

// Server wording the login decoder relies on. Steam changes these without
// notice; they are only consulted in classify.
const (
	msgInvalidCredentials = "account name or password that you have entered is incorrect"
	msgTooManyFailures    = "too many login failures"
	msgDeviceLockout      = "temporarily locked"
)

var defaultTrustedDomains = []string{
	netutil.DomainStore,
	netutil.DomainCommunity,
	netutil.DomainHelp,
}
