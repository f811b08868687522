package env

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type telegramCfg struct {
	Token        string  `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	AllowedUsers []int64 `env:"TELEGRAM_ALLOWED_USERS" envSeparator:","`
	internal     string  `env:"IGNORED"`
}

type llmCfg struct {
	Model       string  `env:"DUSHA_LLM_MODEL" envDefault:"gpt-4.1-mini"`
	Temperature float64 `env:"TEMPERATURE"`
	Note        string  `env:"NOTE"`
	Untagged    string
}

func TestMarshalEnv(t *testing.T) {
	tg := &telegramCfg{Token: "123:abc", AllowedUsers: []int64{1, 42}, internal: "x"}
	llm := &llmCfg{Model: "gpt-4.1-mini", Note: "two words", Untagged: "skip"}

	out, err := MarshalEnv(tg, llm)
	require.NoError(t, err)

	assert.Equal(t,
		"TELEGRAM_BOT_TOKEN=123:abc\n"+
			"TELEGRAM_ALLOWED_USERS=1,42\n"+
			"DUSHA_LLM_MODEL=gpt-4.1-mini\n"+
			"NOTE=\"two words\"\n",
		out)
}

func TestMarshalEnv_Empty(t *testing.T) {
	out, err := MarshalEnv(&llmCfg{})
	require.NoError(t, err)
	assert.Equal(t, "", out)
}

func TestMarshalEnv_NotPointer(t *testing.T) {
	_, err := MarshalEnv(llmCfg{})
	assert.Error(t, err)
}
