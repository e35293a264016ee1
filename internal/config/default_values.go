package config

const (
	DefaultProviderBaseURL = "https://api.openai.com/v1"
	DefaultProviderModel   = "gpt-4o-mini"

	DefaultTimerTickMS  = 1000
	DefaultTimerFlushMS = 10000

	DefaultChatHistoryTokenLimit = 6000
)
