package confirmation

import (
	"strconv"

	"github.com/vuquang23/go-steam-guard/totp"
)

// Confirmation is one pending entry of the mobile confirmation list.
type Confirmation struct {
	Type         uint64      `json:"type"`
	TypeName     string      `json:"type_name"`
	ID           string      `json:"id"`
	CreatorID    string      `json:"creator_id"`
	Nonce        string      `json:"nonce"`
	CreationTime uint64      `json:"creation_time"`
	Cancel       string      `json:"cancel"`
	Accept       string      `json:"accept"`
	Icon         string      `json:"icon"`
	Multi        bool        `json:"multi"`
	Headline     string      `json:"headline"`
	Summary      []string    `json:"summary"`
	Warn         interface{} `json:"warn"`
}

// ConfirmationID is the cid sent back when acting on the entry.
func (c *Confirmation) ConfirmationID() string {
	return c.ID
}

// Key is the ck sent back when acting on the entry. It comes from the list
// response and is never regenerated.
func (c *Confirmation) Key() string {
	return c.Nonce
}

type TargetKind int

const (
	TargetTradeOffer TargetKind = iota + 1
	TargetAsset
)

func (k TargetKind) String() string {
	switch k {
	case TargetTradeOffer:
		return "trade offer"
	case TargetAsset:
		return "asset"
	}
	return "unknown target"
}

// Target selects the confirmation to act on.
type Target struct {
	Kind TargetKind
	ID   uint64
}

func TradeOffer(offerID uint64) Target {
	return Target{Kind: TargetTradeOffer, ID: offerID}
}

func Asset(assetID uint64) Target {
	return Target{Kind: TargetAsset, ID: assetID}
}

func (t Target) String() string {
	return t.Kind.String() + " " + strconv.FormatUint(t.ID, 10)
}

type Action string

const (
	ActionAllow  Action = totp.TagAllow
	ActionCancel Action = totp.TagCancel
)

type ActionResult struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}
