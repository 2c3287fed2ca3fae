package confirmation

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/time/rate"

	"github.com/vuquang23/go-steam-guard/internal/steamtest"
	"github.com/vuquang23/go-steam-guard/totp"
)

const (
	testSecret  = "MTIzNDU2Nzg5MDEyMzQ1Njc4OTA="
	testSteamID = "76561198000000000"
	testTime    = 1634603498
)

type fixedClock time.Time

func (c fixedClock) Now(context.Context) time.Time {
	return time.Time(c)
}

func newTestClient(t *testing.T, transport *steamtest.Transport) *Client {
	t.Helper()
	g, err := totp.NewGenerator(testSecret, fixedClock(time.Unix(testTime, 0)))
	require.NoError(t, err)
	c := NewClient(transport, g, testSteamID)
	c.SetDetailRate(rate.Inf, 1)
	return c
}

func listBody(ids ...string) string {
	confs := make([]string, 0, len(ids))
	for _, id := range ids {
		confs = append(confs, fmt.Sprintf(`{"type":2,"id":"%s","nonce":"n%s","creator_id":"c%s"}`, id, id, id))
	}
	return `{"success":true,"conf":[` + strings.Join(confs, ",") + `]}`
}

func offerPage(offerID uint64) string {
	return fmt.Sprintf(`<html><body><div class="tradeoffer" id="tradeofferid_%d"></div></body></html>`, offerID)
}

func listingPage(assetID string) string {
	return `<html><body><script type="text/javascript">
		BuildHover( 'confiteminfo', {"id":"` + assetID + `","appid":730,"name":"AK-47"}, UserYou );
	</script></body></html>`
}

// routeDetails serves pages keyed by confirmation id.
func routeDetails(transport *steamtest.Transport, pages map[string]string) {
	transport.Handle(http.MethodGet, mobileConfUrl+detailsPagePath, func(req steamtest.Request) ([]byte, error) {
		id := strings.TrimPrefix(req.URL, mobileConfUrl+detailsPagePath)
		page, ok := pages[id]
		if !ok {
			return nil, fmt.Errorf("unexpected details page %s", id)
		}
		return []byte(page), nil
	})
}

func detailFetches(transport *steamtest.Transport) []string {
	var ids []string
	for _, req := range transport.Requests() {
		if strings.HasPrefix(req.URL, mobileConfUrl+detailsPagePath) {
			ids = append(ids, strings.TrimPrefix(req.URL, mobileConfUrl+detailsPagePath))
		}
	}
	return ids
}

func TestResolve_StopsAtFirstMatch(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2", "3"))
	routeDetails(transport, map[string]string{
		"1": offerPage(101),
		"2": offerPage(202),
		"3": offerPage(303),
	})

	conf, err := newTestClient(t, transport).Resolve(context.Background(), TradeOffer(202))
	require.NoError(t, err)
	assert.Equal(t, "2", conf.ID)
	assert.Equal(t, "n2", conf.Key())
	assert.Equal(t, []string{"1", "2"}, detailFetches(transport))
}

func TestResolve_EmptyList(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, `{"success":true,"conf":[]}`)

	_, err := newTestClient(t, transport).Resolve(context.Background(), TradeOffer(202))
	require.ErrorIs(t, err, ErrNoConfirmations)
	assert.Empty(t, detailFetches(transport))
	assert.Len(t, transport.Requests(), 1)
}

func TestResolve_NoMatch(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2", "3"))
	routeDetails(transport, map[string]string{
		"1": offerPage(101),
		"2": `<html><body>market listing</body></html>`,
		"3": offerPage(303),
	})

	_, err := newTestClient(t, transport).Resolve(context.Background(), TradeOffer(404))
	require.ErrorIs(t, err, ErrNoConfirmations)
	assert.Equal(t, []string{"1", "2", "3"}, detailFetches(transport))
	assert.Zero(t, transport.Count(http.MethodGet, mobileConfUrl+ajaxOpPath))
}

func TestResolve_Asset(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("7", "8"))
	routeDetails(transport, map[string]string{
		"7": offerPage(101),
		"8": listingPage("15522536497"),
	})

	conf, err := newTestClient(t, transport).Resolve(context.Background(), Asset(15522536497))
	require.NoError(t, err)
	assert.Equal(t, "8", conf.ID)
}

func TestResolve_DetailFailureAborts(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2"))
	routeDetails(transport, map[string]string{"2": offerPage(202)})

	_, err := newTestClient(t, transport).Resolve(context.Background(), TradeOffer(202))
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNoConfirmations)
	assert.Equal(t, []string{"1"}, detailFetches(transport))
}

func TestResolve_InvalidTarget(t *testing.T) {
	transport := steamtest.NewTransport()
	c := newTestClient(t, transport)

	_, err := c.Resolve(context.Background(), Target{ID: 1})
	assert.ErrorIs(t, err, ErrInvalidTarget)
	_, err = c.Resolve(context.Background(), TradeOffer(0))
	assert.ErrorIs(t, err, ErrInvalidTarget)
	assert.Empty(t, transport.Requests())
}

func TestResolve_CustomExtractor(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1"))
	routeDetails(transport, map[string]string{"1": "offer=55"})

	c := newTestClient(t, transport)
	c.SetExtractor(TargetTradeOffer, ExtractorFunc(func(page []byte) (uint64, error) {
		return strconv.ParseUint(strings.TrimPrefix(string(page), "offer="), 10, 64)
	}))
	conf, err := c.Resolve(context.Background(), TradeOffer(55))
	require.NoError(t, err)
	assert.Equal(t, "1", conf.ID)
}

func TestResolve_ExtractorSwapDuringScan(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2"))
	routeDetails(transport, map[string]string{
		"1": offerPage(101),
		"2": offerPage(202),
	})

	c := newTestClient(t, transport)
	alwaysFirst := ExtractorFunc(func([]byte) (uint64, error) { return 101, nil })
	c.SetExtractor(TargetTradeOffer, ExtractorFunc(func(page []byte) (uint64, error) {
		c.SetExtractor(TargetTradeOffer, alwaysFirst)
		return TradeOfferExtractor{}.Extract(page)
	}))

	conf, err := c.Resolve(context.Background(), TradeOffer(202))
	require.NoError(t, err)
	assert.Equal(t, "2", conf.ID)

	_, err = c.Resolve(context.Background(), TradeOffer(202))
	assert.ErrorIs(t, err, ErrNoConfirmations)
}

func TestSetDetailRate_ZeroBurst(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1"))
	routeDetails(transport, map[string]string{"1": offerPage(101)})

	c := newTestClient(t, transport)
	c.SetDetailRate(rate.Limit(1000), 0)

	conf, err := c.Resolve(context.Background(), TradeOffer(101))
	require.NoError(t, err)
	assert.Equal(t, "1", conf.ID)
}

func TestSetters_ConcurrentWithResolve(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2", "3"))
	routeDetails(transport, map[string]string{
		"1": offerPage(101),
		"2": listingPage("5"),
		"3": offerPage(303),
	})
	c := newTestClient(t, transport)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			_, err := c.Resolve(context.Background(), TradeOffer(303))
			assert.NoError(t, err)
		}()
		go func() {
			defer wg.Done()
			c.SetDetailRate(rate.Inf, 1)
			c.SetExtractor(TargetAsset, AssetExtractor{})
		}()
	}
	wg.Wait()
}

func TestGetConfirmations_Errors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr error
	}{
		{name: "need auth", body: `{"success":false,"needauth":true}`, wantErr: ErrNeedAuth},
		{name: "failure", body: `{"success":false,"message":"Oh nooooooes!"}`, wantErr: ErrConfirmationsUnknownError},
		{name: "not json", body: `<html>`, wantErr: ErrConfirmationsUnknownError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			transport := steamtest.NewTransport()
			transport.Respond(http.MethodGet, mobileConfUrl+getListPath, tt.body)

			_, err := newTestClient(t, transport).GetConfirmations(context.Background())
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestSignedParams(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("9"))
	routeDetails(transport, map[string]string{"9": offerPage(1)})

	_, err := newTestClient(t, transport).Resolve(context.Background(), TradeOffer(1))
	require.NoError(t, err)

	requests := transport.Requests()
	require.Len(t, requests, 2)
	for i, tag := range []string{totp.TagList, totp.TagDetails + "9"} {
		params := requests[i].Values
		want, err := totp.GenerateConfirmationKey(testSecret, tag, time.Unix(testTime, 0))
		require.NoError(t, err)

		assert.Equal(t, tag, params.Get("tag"))
		assert.Equal(t, want, params.Get("k"))
		assert.Equal(t, strconv.Itoa(testTime), params.Get("t"))
		assert.Equal(t, "android", params.Get("m"))
		assert.Equal(t, testSteamID, params.Get("a"))
		assert.Equal(t, "android:5c9df5a2-d7de-1e2c-8fc8-766523ca130f", params.Get("p"))
	}
}

func TestExecute(t *testing.T) {
	for _, action := range []Action{ActionAllow, ActionCancel} {
		t.Run(string(action), func(t *testing.T) {
			transport := steamtest.NewTransport()
			transport.Respond(http.MethodGet, mobileConfUrl+ajaxOpPath, `{"success":true}`)

			conf := &Confirmation{ID: "42", Nonce: "secret-nonce"}
			res, err := newTestClient(t, transport).Execute(context.Background(), conf, action)
			require.NoError(t, err)
			assert.True(t, res.Success)

			requests := transport.Requests()
			require.Len(t, requests, 1)
			params := requests[0].Values
			want, err := totp.GenerateConfirmationKey(testSecret, string(action), time.Unix(testTime, 0))
			require.NoError(t, err)

			assert.Equal(t, string(action), params.Get("op"))
			assert.Equal(t, string(action), params.Get("tag"))
			assert.Equal(t, "42", params.Get("cid"))
			assert.Equal(t, "secret-nonce", params.Get("ck"))
			assert.Equal(t, want, params.Get("k"))
		})
	}
}

func TestExecute_Refusals(t *testing.T) {
	transport := steamtest.NewTransport()
	c := newTestClient(t, transport)

	_, err := c.Execute(context.Background(), nil, ActionAllow)
	assert.ErrorIs(t, err, ErrNoConfirmations)
	_, err = c.Execute(context.Background(), &Confirmation{ID: "1"}, Action("details"))
	assert.ErrorIs(t, err, ErrInvalidAction)
	assert.Empty(t, transport.Requests())
}

func TestAnswerConfirmation_Rejected(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+ajaxOpPath, `{"success":false,"message":"expired"}`)

	err := newTestClient(t, transport).CancelConfirmation(context.Background(), &Confirmation{ID: "1", Nonce: "n"})
	require.ErrorIs(t, err, ErrActionRejected)
	assert.Contains(t, err.Error(), "expired")
}

func TestConfirmTradeOffer(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1", "2"))
	routeDetails(transport, map[string]string{
		"1": offerPage(101),
		"2": offerPage(202),
	})
	transport.Respond(http.MethodGet, mobileConfUrl+ajaxOpPath, `{"success":true}`)

	require.NoError(t, newTestClient(t, transport).ConfirmTradeOffer(context.Background(), 202))

	requests := transport.Requests()
	last := requests[len(requests)-1]
	assert.Equal(t, mobileConfUrl+ajaxOpPath, last.URL)
	assert.Equal(t, "2", last.Values.Get("cid"))
	assert.Equal(t, "n2", last.Values.Get("ck"))
}

func TestConfirmSellListing_NoMatchNeverActs(t *testing.T) {
	transport := steamtest.NewTransport()
	transport.Respond(http.MethodGet, mobileConfUrl+getListPath, listBody("1"))
	routeDetails(transport, map[string]string{"1": listingPage("5")})

	err := newTestClient(t, transport).ConfirmSellListing(context.Background(), 6)
	require.ErrorIs(t, err, ErrNoConfirmations)
	assert.Zero(t, transport.Count(http.MethodGet, mobileConfUrl+ajaxOpPath))
}

func TestGetOfferID(t *testing.T) {
	transport := steamtest.NewTransport()
	routeDetails(transport, map[string]string{"3": offerPage(303)})

	offerID, err := newTestClient(t, transport).GetOfferID(context.Background(), &Confirmation{ID: "3"})
	require.NoError(t, err)
	assert.Equal(t, uint64(303), offerID)
}
