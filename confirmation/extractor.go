package confirmation

import (
	"bytes"
	"encoding/json"
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Extractor pulls the identifier a Target is matched against out of a
// confirmation details page. Pages without one report ErrIdentifierNotFound.
type Extractor interface {
	Extract(page []byte) (uint64, error)
}

type ExtractorFunc func(page []byte) (uint64, error)

func (f ExtractorFunc) Extract(page []byte) (uint64, error) {
	return f(page)
}

// TradeOfferExtractor reads the offer id from the `.tradeoffer` element,
// whose id attribute looks like `tradeofferid_<id>`.
type TradeOfferExtractor struct{}

func (TradeOfferExtractor) Extract(page []byte) (uint64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return 0, err
	}

	offer := doc.Find(".tradeoffer").First()
	if offer.Length() == 0 {
		return 0, ErrIdentifierNotFound
	}
	value, ok := offer.Attr("id")
	if !ok {
		return 0, ErrIdentifierNotFound
	}
	_, id, ok := strings.Cut(value, "_")
	if !ok {
		return 0, ErrIdentifierNotFound
	}

	offerID, err := strconv.ParseUint(id, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIdentifierNotFound, err)
	}
	return offerID, nil
}

var itemInfoRe = regexp.MustCompile(`(?s)BuildHover\(\s*'confiteminfo',\s*(\{.*?\})\s*,\s*UserYou`)

// AssetExtractor reads the asset id of a market listing from the item blob
// the details page hands to BuildHover in an inline script.
type AssetExtractor struct{}

func (AssetExtractor) Extract(page []byte) (uint64, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(page))
	if err != nil {
		return 0, err
	}

	var blob string
	doc.Find("script").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if m := itemInfoRe.FindStringSubmatch(s.Text()); m != nil {
			blob = m[1]
			return false
		}
		return true
	})
	if blob == "" {
		return 0, ErrIdentifierNotFound
	}

	var item struct {
		ID json.Number `json:"id"`
	}
	if err := json.Unmarshal([]byte(blob), &item); err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIdentifierNotFound, err)
	}
	assetID, err := strconv.ParseUint(item.ID.String(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrIdentifierNotFound, err)
	}
	return assetID, nil
}
