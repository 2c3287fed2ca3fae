package totp

import (
	"context"
	"encoding/json"
	"errors"
	"net/url"
	"strconv"
	"sync"
	"time"

	"github.com/vuquang23/go-steam-guard/netutil"
)

// TimeSync keeps the offset between the local clock and the Steam auth
// server. Clock sync is best effort: a failed query keeps the previous offset.
type TimeSync struct {
	transport netutil.Transport
	refresh   time.Duration
	local     func() time.Time

	mu          sync.Mutex
	offset      time.Duration
	checked     bool
	lastChecked time.Time
}

// NewTimeSync returns a clock that queries the server on first use and then
// every refresh. A zero refresh queries once and never again.
func NewTimeSync(transport netutil.Transport, refresh time.Duration) *TimeSync {
	return &TimeSync{
		transport: transport,
		refresh:   refresh,
		local:     time.Now,
	}
}

func (s *TimeSync) SetClock(local func() time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.local = local
}

func (s *TimeSync) Now(ctx context.Context) time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.due(s.local()) {
		if err := s.sync(ctx); err != nil {
			log.Warning("timesync: failed to query server time, keeping previous offset")
			log.WarningE(err)
		}
	}
	return s.local().Add(s.offset)
}

func (s *TimeSync) Offset() time.Duration {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.offset
}

// Sync queries the server now and reports the failure instead of swallowing it.
func (s *TimeSync) Sync(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sync(ctx)
}

func (s *TimeSync) due(now time.Time) bool {
	if !s.checked {
		return true
	}
	return s.refresh > 0 && now.Sub(s.lastChecked) >= s.refresh
}

// sync must be called with mu held.
func (s *TimeSync) sync(ctx context.Context) error {
	s.checked = true
	s.lastChecked = s.local()

	if s.transport == nil {
		return errors.New("no transport configured")
	}
	body, err := s.transport.PostForm(ctx, queryTimeUrl, url.Values{"steamid": {"0"}})
	if err != nil {
		return err
	}

	var res struct {
		Response struct {
			ServerTime string `json:"server_time"`
		} `json:"response"`
	}
	if err := json.Unmarshal(body, &res); err != nil {
		return err
	}
	st, err := strconv.ParseInt(res.Response.ServerTime, 10, 64)
	if err != nil {
		return err
	}

	s.offset = time.Duration(st-s.local().Unix()) * time.Second
	log.Printf("timesync: server offset is %s\n", s.offset)
	return nil
}
