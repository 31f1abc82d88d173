package domain

import (
	"encoding/json"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func checkDigit(first12 []int) int {
	sum := 0
	for i, d := range first12 {
		if i%2 == 0 {
			sum += d
		} else {
			sum += 3 * d
		}
	}
	return (10 - sum%10) % 10
}

func joinDigits(digits []int) string {
	var sb strings.Builder
	for _, d := range digits {
		sb.WriteString(strconv.Itoa(d))
	}
	return sb.String()
}

func TestNewISBN13_Hyphenated(t *testing.T) {
	isbn, err := NewISBN13("978-3-86490-387-8")

	require.NoError(t, err)
	assert.Equal(t, "9783864903878", isbn.String())
	assert.Equal(t, MustISBN13("9783864903878"), isbn)
}

func TestNewISBN13_Invalid(t *testing.T) {
	cases := map[string]string{
		"empty":      "",
		"too short":  "978386490387",
		"too long":   "97838649038780",
		"letters":    "978386490387X",
		"checksum":   "9783864903879",
		"only dash":  "-------------",
		"unicode":    "９７８３８６４９０３８７８",
		"isbn10":     "3-86490-387-6",
		"inner junk": "978_3864903878",
	}

	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewISBN13(raw)
			assert.ErrorIs(t, err, ErrInvalidArgument)
		})
	}
}

func TestMustISBN13_Panics(t *testing.T) {
	assert.Panics(t, func() { MustISBN13("123") })
}

func TestISBN13_JSON(t *testing.T) {
	type payload struct {
		ISBN ISBN13 `json:"isbn13"`
	}

	data, err := json.Marshal(payload{ISBN: MustISBN13("978-1-60309-322-4")})
	require.NoError(t, err)
	assert.JSONEq(t, `{"isbn13":"9781603093224"}`, string(data))

	var decoded payload
	require.NoError(t, json.Unmarshal([]byte(`{"isbn13":"978-1-60309-322-4"}`), &decoded))
	assert.Equal(t, "9781603093224", decoded.ISBN.String())

	err = json.Unmarshal([]byte(`{"isbn13":"9781603093225"}`), &decoded)
	assert.ErrorIs(t, err, ErrInvalidArgument)
}

func TestNewISBN13_ValidRoundTrip(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first12 := rapid.SliceOfN(rapid.IntRange(0, 9), 12, 12).Draw(t, "digits")
		raw := joinDigits(append(first12, checkDigit(first12)))

		isbn, err := NewISBN13(raw)

		require.NoError(t, err)
		assert.Equal(t, raw, isbn.String())
	})
}

func TestNewISBN13_WrongCheckDigit(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		first12 := rapid.SliceOfN(rapid.IntRange(0, 9), 12, 12).Draw(t, "digits")
		offset := rapid.IntRange(1, 9).Draw(t, "offset")
		wrong := (checkDigit(first12) + offset) % 10

		_, err := NewISBN13(joinDigits(append(first12, wrong)))

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}

func TestNewISBN13_WrongLength(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		raw := rapid.StringMatching(`[0-9]{0,12}|[0-9]{14,20}`).Draw(t, "raw")

		_, err := NewISBN13(raw)

		assert.ErrorIs(t, err, ErrInvalidArgument)
	})
}
