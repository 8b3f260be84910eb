package domain

// Stats is the admin overview
type Stats struct {
	TotalUsers          int64 `json:"total_users"`
	Subscribers         int64 `json:"subscribers"`
	CoinsInCirculation  int64 `json:"coins_in_circulation"`
	ActiveCodes         int64 `json:"active_codes"`
	RedeemedCodes       int64 `json:"redeemed_codes"`
	TotalOrders         int64 `json:"total_orders"`
	OrdersToday         int64 `json:"orders_today"`
	CoinsPurchasedToday int64 `json:"coins_purchased_today"`
	TotalReferrals      int64 `json:"total_referrals"`
}
