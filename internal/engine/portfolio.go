package engine

// PortfolioValue returns total portfolio value: cash plus position marked at
// the current price.
func PortfolioValue(position, price, cash float64) float64 {
	return cash + position*price
}

// PortfolioReturn returns the portfolio return relative to initial capital
// as a decimal (0.05 means 5%). Returns 0 when initial capital is 0.
func PortfolioReturn(position, price, cash, initialCapital float64) float64 {
	if initialCapital == 0 {
		return 0
	}
	return (PortfolioValue(position, price, cash) - initialCapital) / initialCapital
}
