package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseMonth(t *testing.T) {
	m, err := ParseMonth("2023-07")
	require.NoError(t, err)
	assert.Equal(t, Month{Year: 2023, Mon: time.July}, m)
	assert.Equal(t, "2023-07", m.String())

	_, err = ParseMonth("2023-7")
	assert.Error(t, err)
	_, err = ParseMonth("July 2023")
	assert.Error(t, err)
}

func TestMonthOf(t *testing.T) {
	ts := time.Date(2023, time.March, 31, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, Month{Year: 2023, Mon: time.March}, MonthOf(ts))
}

func TestMonthNextRollsYear(t *testing.T) {
	m := Month{Year: 2023, Mon: time.December}
	assert.Equal(t, Month{Year: 2024, Mon: time.January}, m.Next())
}

func TestMonthOrdering(t *testing.T) {
	jan := Month{Year: 2023, Mon: time.January}
	feb := Month{Year: 2023, Mon: time.February}

	assert.True(t, jan.Before(feb))
	assert.False(t, feb.Before(jan))
	assert.True(t, feb.After(jan))
	assert.False(t, jan.Before(jan))
}

func TestMonthRange(t *testing.T) {
	start := Month{Year: 2023, Mon: time.November}
	end := Month{Year: 2024, Mon: time.February}

	months := MonthRange(start, end)
	require.Len(t, months, 4)
	assert.Equal(t, "2023-11", months[0].String())
	assert.Equal(t, "2024-02", months[3].String())

	assert.Nil(t, MonthRange(end, start))
	assert.Equal(t, []Month{start}, MonthRange(start, start))
}

func TestMonthIsZero(t *testing.T) {
	assert.True(t, Month{}.IsZero())
	assert.False(t, Month{Year: 2023, Mon: time.January}.IsZero())
}
