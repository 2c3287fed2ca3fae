package confirmation

import "golang.org/x/time/rate"

const mobileConfUrl = "https://steamcommunity.com/mobileconf/"

const (
	getListPath     = "getlist"
	detailsPagePath = "detailspage/"
	ajaxOpPath      = "ajaxop"
)

const mobileMode = "android"

// Detail pages are the most expensive call; they are paced so a scan does not
// trip the community rate limit.
const (
	defaultDetailRate  = rate.Limit(2)
	defaultDetailBurst = 1
)
