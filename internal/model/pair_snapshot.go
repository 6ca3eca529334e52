package model

// TokenStats is one side of a pool as seen on a venue.
type TokenStats struct {
	Address  string  `json:"address"`
	Symbol   string  `json:"symbol"`
	Decimals uint8   `json:"decimals"`
	Amount   float64 `json:"amount"`
}

// VenueStats is the state of a pair on a single venue. Price is the raw
// reserve1/reserve0 ratio, zero when reserve0 is empty.
type VenueStats struct {
	Venue  string     `json:"venue"`
	Pair   string     `json:"pair"`
	Price  float64    `json:"price"`
	Token0 TokenStats `json:"token0"`
	Token1 TokenStats `json:"token1"`
}

// PairSnapshot records a pair listed on both venues.
type PairSnapshot struct {
	RunID      string     `json:"run_id"`
	ChainID    uint64     `json:"chain_id"`
	Index      uint64     `json:"index"`
	Name       string     `json:"name"`
	A          VenueStats `json:"a"`
	B          VenueStats `json:"b"`
	CapturedAt string     `json:"captured_at"`
}
