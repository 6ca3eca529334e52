package model

// Operator record command names.
const (
	CommandLog         = "log"
	CommandAccount     = "account"
	CommandTrade       = "trade"
	CommandTransaction = "transaction"
)

// AccountInfo identifies the monitored balance holder and its currency.
type AccountInfo struct {
	Address  string `json:"address"`
	Currency string `json:"currency"`
}

// AccountRecord is written once at startup.
type AccountRecord struct {
	Command string      `json:"command"`
	Account AccountInfo `json:"account"`
}

// TradeRecord is written after a successful trade.
type TradeRecord struct {
	Command     string  `json:"command"`
	Time        int64   `json:"time"`
	PreBalance  float64 `json:"preBalance"`
	PostBalance float64 `json:"postBalance"`
	TxnFee      float64 `json:"txnFee"`
	Txn         string  `json:"txn"`
}

// TransferRecord is written after a successful funding transfer.
type TransferRecord struct {
	Command string  `json:"command"`
	Time    int64   `json:"time"`
	Amount  float64 `json:"amount"`
	Balance float64 `json:"balance"`
	TxnFee  float64 `json:"txnFee"`
	Txn     string  `json:"txn"`
}
