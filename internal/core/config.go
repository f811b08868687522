package core

type MemoryConfig interface {
	GetShortHistoryLimit() int
	GetHistoryKeep() int
	GetExtractEvery() int
}

type PromptConfig interface {
	GetSystemPath() string
}

type ProviderConfig interface {
	GetProvider() string
	GetModel() string
	GetAPIKey() string
	GetBaseURL() string
}
