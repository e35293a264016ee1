package storage

// 存储 key 名称；除 KeyIdentity 外均位于身份作用域内
// Storage key names. Everything except KeyIdentity lives inside an owner scope.
const (
	KeyIdentity          = "identity"
	KeyCumulativeSeconds = "timer/cumulative-seconds"
	KeyTodoItems         = "todo/items"
	KeyVisualEnabled     = "companion/visual-enabled"
	KeyChatEndpointBase  = "chat/endpoint-base"
	KeyChatModel         = "chat/model"

	// SecretChatAPIKey 通过 SecretStore 读写，不直接出现在 KV 中
	// SecretChatAPIKey is only reachable through a SecretStore.
	SecretChatAPIKey = "chat-api-key"
)

// Flag values used for boolean keys.
const (
	FlagOn  = "1"
	FlagOff = "0"
)
