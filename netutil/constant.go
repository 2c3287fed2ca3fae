package netutil

import "time"

const DefaultTimeout = 15 * time.Second

const defaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/51.0.2704.103 Safari/537.36"

const (
	DomainCommunity = "steamcommunity.com"
	DomainStore     = "store.steampowered.com"
	DomainHelp      = "help.steampowered.com"
)
