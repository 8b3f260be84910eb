package domain

import (
	"regexp"
	"strings"

	"github.com/shopspring/decimal"
)

// PagePrice maps a page-range label to the stored page count and its cost
type PagePrice struct {
	Range string `json:"range"` // "9-10"
	Pages int    `json:"pages"` // first number of the range
	Coins int64  `json:"coins"`
}

// CoinPack is a purchasable coin amount and its USD price
type CoinPack struct {
	Coins int64           `json:"coins"`
	USD   decimal.Decimal `json:"usd"`
}

var labelSuffix = regexp.MustCompile(`\s*\(.*\)`)

// FindPagePrice resolves button text like "9-10 (150 coin)" or plain "9-10"
func FindPagePrice(prices []PagePrice, input string) (PagePrice, bool) {
	key := strings.TrimSpace(labelSuffix.ReplaceAllString(input, ""))
	for _, p := range prices {
		if p.Range == key {
			return p, true
		}
	}
	return PagePrice{}, false
}

// MinOrderCost is the cheapest page range, the balance needed to start an order
func MinOrderCost(prices []PagePrice) int64 {
	var min int64
	for i, p := range prices {
		if i == 0 || p.Coins < min {
			min = p.Coins
		}
	}
	return min
}

// FindCoinPack returns the pack with exactly the given coin amount
func FindCoinPack(packs []CoinPack, coins int64) (CoinPack, bool) {
	for _, p := range packs {
		if p.Coins == coins {
			return p, true
		}
	}
	return CoinPack{}, false
}
