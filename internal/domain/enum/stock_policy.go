package enum

// StockPolicy decides what a sale does when it asks for more than is in stock
type StockPolicy string

const (
	// StockPolicyClamp floors stock at zero and lets the sale through
	StockPolicyClamp StockPolicy = "clamp"
	// StockPolicyReject refuses the whole sale
	StockPolicyReject StockPolicy = "reject"
)

// ParseStockPolicy returns the policy named by s, defaulting to clamp
func ParseStockPolicy(s string) StockPolicy {
	if StockPolicy(s) == StockPolicyReject {
		return StockPolicyReject
	}
	return StockPolicyClamp
}
