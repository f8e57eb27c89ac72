package report

type Report struct {
	Run    *RunReport    `json:"run,omitempty"`
	Market *MarketReport `json:"market,omitempty"`
}
