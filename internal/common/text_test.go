package common_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"achivator.ru/telegram-bot/internal/common"
)

func TestEscapeMarkdown(t *testing.T) {
	require.Equal(t, `вася\_пупкин`, common.EscapeMarkdown("вася_пупкин"))
	require.Equal(t, "\\*звезда\\* \\[скобка \\`код", common.EscapeMarkdown("*звезда* [скобка `код"))
	require.Equal(t, "обычное имя", common.EscapeMarkdown("обычное имя"))
}

func TestTruncate(t *testing.T) {
	require.Equal(t, "привет", common.Truncate("привет", 10))
	require.Equal(t, "прив...", common.Truncate("привет мир", 4))
	// считаем руны, не байты
	require.Equal(t, "привет", common.Truncate("привет", 6))
}
