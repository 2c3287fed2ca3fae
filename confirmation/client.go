package confirmation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strconv"
	"sync"

	"golang.org/x/time/rate"

	"github.com/vuquang23/go-steam-guard/netutil"
	"github.com/vuquang23/go-steam-guard/totp"
)

type Client struct {
	transport netutil.Transport
	generator *totp.Generator

	steamID  string
	deviceID string

	mu         sync.Mutex
	limiter    *rate.Limiter
	extractors map[TargetKind]Extractor
}

// NewClient signs every request with generator, which must hold the account's
// identity secret. The transport must carry the logged in session cookies.
func NewClient(transport netutil.Transport, generator *totp.Generator, steamID string) *Client {
	return &Client{
		transport: transport,
		generator: generator,
		steamID:   steamID,
		deviceID:  totp.GenerateDeviceID(steamID),
		limiter:   rate.NewLimiter(defaultDetailRate, defaultDetailBurst),
		extractors: map[TargetKind]Extractor{
			TargetTradeOffer: TradeOfferExtractor{},
			TargetAsset:      AssetExtractor{},
		},
	}
}

// SetDetailRate paces details page fetches. A burst below 1 is raised to 1
// since a finite limit with no burst never admits a request.
func (c *Client) SetDetailRate(limit rate.Limit, burst int) {
	if burst < 1 {
		burst = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.limiter = rate.NewLimiter(limit, burst)
}

func (c *Client) SetExtractor(kind TargetKind, extractor Extractor) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.extractors[kind] = extractor
}

// snapshot returns the limiter and the extractor for kind as they are now; a
// running scan is not affected by later setter calls.
func (c *Client) snapshot(kind TargetKind) (*rate.Limiter, Extractor, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	extractor, ok := c.extractors[kind]
	return c.limiter, extractor, ok
}

func (c *Client) DeviceID() string {
	return c.deviceID
}

func (c *Client) GetConfirmations(ctx context.Context) ([]*Confirmation, error) {
	resBytes, err := c.call(ctx, getListPath, totp.TagList, nil)
	if err != nil {
		return nil, err
	}

	var res struct {
		Success  bool            `json:"success"`
		NeedAuth bool            `json:"needauth"`
		Message  string          `json:"message"`
		Conf     []*Confirmation `json:"conf"`
	}
	if err := json.Unmarshal(resBytes, &res); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrConfirmationsUnknownError, err)
	}
	if res.NeedAuth {
		return nil, ErrNeedAuth
	}
	if !res.Success {
		return nil, fmt.Errorf("%w: %s", ErrConfirmationsUnknownError, res.Message)
	}

	return res.Conf, nil
}

// Resolve finds the pending confirmation for target. Entries are scanned in
// list order and the scan stops at the first match; no detail page is
// fetched past it. ErrNoConfirmations is returned when nothing matches.
func (c *Client) Resolve(ctx context.Context, target Target) (*Confirmation, error) {
	limiter, extractor, ok := c.snapshot(target.Kind)
	if !ok || target.ID == 0 {
		return nil, fmt.Errorf("%w: %s", ErrInvalidTarget, target)
	}

	confs, err := c.GetConfirmations(ctx)
	if err != nil {
		return nil, err
	}
	if len(confs) == 0 {
		return nil, ErrNoConfirmations
	}

	for _, conf := range confs {
		page, err := c.detailsPage(ctx, limiter, conf)
		if err != nil {
			return nil, err
		}
		id, err := extractor.Extract(page)
		if errors.Is(err, ErrIdentifierNotFound) {
			continue
		}
		if err != nil {
			return nil, err
		}
		if id == target.ID {
			log.Printf("confirmation: %s matched %s\n", conf.ID, target)
			return conf, nil
		}
	}

	return nil, ErrNoConfirmations
}

// Execute answers conf with action. The result is returned as the server sent
// it; a rejected action is not an error here.
func (c *Client) Execute(ctx context.Context, conf *Confirmation, action Action) (*ActionResult, error) {
	if conf == nil {
		return nil, ErrNoConfirmations
	}
	if action != ActionAllow && action != ActionCancel {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}

	values := url.Values{
		"op":  {string(action)},
		"cid": {conf.ConfirmationID()},
		"ck":  {conf.Key()},
	}
	resBytes, err := c.call(ctx, ajaxOpPath, string(action), values)
	if err != nil {
		return nil, err
	}

	var res ActionResult
	if err := json.Unmarshal(resBytes, &res); err != nil {
		return nil, err
	}
	return &res, nil
}

func (c *Client) AcceptConfirmation(ctx context.Context, conf *Confirmation) error {
	return c.AnswerConfirmation(ctx, conf, ActionAllow)
}

func (c *Client) CancelConfirmation(ctx context.Context, conf *Confirmation) error {
	return c.AnswerConfirmation(ctx, conf, ActionCancel)
}

func (c *Client) AnswerConfirmation(ctx context.Context, conf *Confirmation, action Action) error {
	res, err := c.Execute(ctx, conf, action)
	if err != nil {
		return err
	}
	if !res.Success {
		return fmt.Errorf("%w: %s", ErrActionRejected, res.Message)
	}
	return nil
}

// ConfirmTradeOffer accepts the confirmation gating a sent trade offer.
func (c *Client) ConfirmTradeOffer(ctx context.Context, offerID uint64) error {
	return c.resolveAndAnswer(ctx, TradeOffer(offerID), ActionAllow)
}

// ConfirmSellListing accepts the confirmation gating a market listing of assetID.
func (c *Client) ConfirmSellListing(ctx context.Context, assetID uint64) error {
	return c.resolveAndAnswer(ctx, Asset(assetID), ActionAllow)
}

func (c *Client) resolveAndAnswer(ctx context.Context, target Target, action Action) error {
	conf, err := c.Resolve(ctx, target)
	if err != nil {
		return err
	}
	return c.AnswerConfirmation(ctx, conf, action)
}

func (c *Client) GetOfferID(ctx context.Context, conf *Confirmation) (uint64, error) {
	limiter, extractor, _ := c.snapshot(TargetTradeOffer)
	page, err := c.detailsPage(ctx, limiter, conf)
	if err != nil {
		return 0, err
	}
	return extractor.Extract(page)
}

func (c *Client) detailsPage(ctx context.Context, limiter *rate.Limiter, conf *Confirmation) ([]byte, error) {
	if err := limiter.Wait(ctx); err != nil {
		return nil, err
	}
	return c.call(ctx, detailsPagePath+conf.ID, totp.TagDetails+conf.ID, nil)
}

// call signs a mobileconf request. The key and the t parameter come from the
// same clock reading.
func (c *Client) call(ctx context.Context, path string, tag string, values url.Values) ([]byte, error) {
	key, ts, err := c.generator.ConfirmationKey(ctx, tag)
	if err != nil {
		return nil, err
	}
	params := url.Values{
		"p":   {c.deviceID},
		"a":   {c.steamID},
		"k":   {key},
		"t":   {strconv.FormatInt(ts, 10)},
		"m":   {mobileMode},
		"tag": {tag},
	}
	for k, v := range values {
		params[k] = v
	}

	return c.transport.Get(ctx, mobileConfUrl+path, params)
}
