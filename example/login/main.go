package main

import (
	"context"
	"os"

	"github.com/coalaura/logger"
	"github.com/joho/godotenv"

	"github.com/vuquang23/go-steam-guard/community"
	"github.com/vuquang23/go-steam-guard/netutil"
	"github.com/vuquang23/go-steam-guard/totp"
)

var (
	accountName  string
	password     string
	sharedSecret string

	log = logger.New().DetectTerminal().WithOptions(logger.Options{
		NoLevel: true,
	})
)

func init() {
	_ = godotenv.Load()

	accountName = os.Getenv("ACCOUNT_NAME")
	password = os.Getenv("PASSWORD")
	sharedSecret = os.Getenv("SHARED_SECRET")
}

func main() {
	ctx := context.Background()

	session, err := netutil.NewSession()
	log.MustPanic(err)

	guard, err := totp.NewGenerator(sharedSecret, totp.NewTimeSync(session, 0))
	log.MustPanic(err)

	client := community.NewClient(session)
	s, err := client.Login(ctx, community.LoginDetails{
		AccountName: accountName,
		Password:    password,
		Factors:     community.TOTPFactors{Generator: guard},
	})
	log.MustPanic(err)

	log.Printf("logged in as %s, device %s\n", s.SteamID, client.GetDeviceID())

	err = client.Logout(ctx)
	log.MustPanic(err)
}
