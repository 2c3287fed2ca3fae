package community

import "github.com/coalaura/logger"

var log = logger.New().DetectTerminal().WithOptions(logger.Options{
	NoLevel: true,
})
