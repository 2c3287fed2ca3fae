package main

import (
	"context"
	"errors"
	"os"
	"strconv"

	"github.com/coalaura/logger"
	"github.com/davecgh/go-spew/spew"
	"github.com/joho/godotenv"

	"github.com/vuquang23/go-steam-guard/community"
	"github.com/vuquang23/go-steam-guard/confirmation"
	"github.com/vuquang23/go-steam-guard/netutil"
	"github.com/vuquang23/go-steam-guard/totp"
)

var (
	accountName    string
	password       string
	identitySecret string
	sharedSecret   string
	offerID        string
	accept         bool

	log = logger.New().DetectTerminal().WithOptions(logger.Options{
		NoLevel: true,
	})
)

func init() {
	_ = godotenv.Load()

	accountName = os.Getenv("ACCOUNT_NAME")
	password = os.Getenv("PASSWORD")
	identitySecret = os.Getenv("IDENTITY_SECRET")
	sharedSecret = os.Getenv("SHARED_SECRET")
	offerID = os.Getenv("OFFER_ID")
	accept = os.Getenv("ACCEPT") == "1"
}

func main() {
	ctx := context.Background()

	session, err := netutil.NewSession()
	log.MustPanic(err)

	clock := totp.NewTimeSync(session, 0)

	guard, err := totp.NewGenerator(sharedSecret, clock)
	log.MustPanic(err)

	communityClient := community.NewClient(session)
	_, err = communityClient.Login(ctx, community.LoginDetails{
		AccountName: accountName,
		Password:    password,
		Factors:     community.TOTPFactors{Generator: guard},
	})
	log.MustPanic(err)

	signer, err := totp.NewGenerator(identitySecret, clock)
	log.MustPanic(err)

	c := confirmation.NewClient(session, signer, communityClient.GetSteamID())

	id, err := strconv.ParseUint(offerID, 10, 64)
	log.MustPanic(err)

	conf, err := c.Resolve(ctx, confirmation.TradeOffer(id))
	if errors.Is(err, confirmation.ErrNoConfirmations) {
		log.Println("nothing to confirm")
		return
	}
	log.MustPanic(err)

	spew.Dump(conf)

	action := confirmation.ActionCancel
	if accept {
		action = confirmation.ActionAllow
	}
	res, err := c.Execute(ctx, conf, action)
	log.MustPanic(err)

	log.Printf("%s: success=%t %s\n", action, res.Success, res.Message)
}
