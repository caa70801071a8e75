package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindowBounds(t *testing.T) {
	t.Run("limites ancorados em UTC cobrindo o dia inteiro", func(t *testing.T) {
		window := Window{StartISO: "2024-03-01", EndISO: "2024-03-05"}

		start, end, err := window.Bounds()
		require.NoError(t, err)

		assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), start)
		assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999000000, time.UTC), end)
	})

	t.Run("data malformada retorna erro", func(t *testing.T) {
		window := Window{StartISO: "01/03/2024", EndISO: "2024-03-05"}

		_, _, err := window.Bounds()
		assert.Error(t, err)
	})
}

func TestWindowDays(t *testing.T) {
	t.Run("enumera os dias incluindo os dois extremos", func(t *testing.T) {
		window := Window{StartISO: "2024-02-27", EndISO: "2024-03-02"}

		days, err := window.Days()
		require.NoError(t, err)

		// Fevereiro de 2024 é bissexto
		assert.Equal(t, []string{"2024-02-27", "2024-02-28", "2024-02-29", "2024-03-01", "2024-03-02"}, days)
	})

	t.Run("janela de um dia tem um único elemento", func(t *testing.T) {
		window := Window{StartISO: "2024-03-10", EndISO: "2024-03-10"}

		days, err := window.Days()
		require.NoError(t, err)

		assert.Equal(t, []string{"2024-03-10"}, days)
	})
}
