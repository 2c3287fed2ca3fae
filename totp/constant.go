package totp

const queryTimeUrl = "https://api.steampowered.com/ITwoFactorService/QueryTime/v0001"

const (
	codeAlphabet = "23456789BCDFGHJKMNPQRTVWXY"
	codeLength   = 5
	codePeriod   = 30

	deviceIDPrefix = "android:"
)

// Confirmation endpoint tags. The details tag is suffixed with the
// confirmation id.
const (
	TagList    = "conf"
	TagDetails = "details"
	TagAllow   = "allow"
	TagCancel  = "cancel"
)
