package utils

import (
	"math/big"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/matiasbn/Lucky7Bot/data"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

func TestPrivateKeyFromMnemonic(t *testing.T) {
	pk, err := PrivateKeyFromMnemonic(testMnemonic, 0)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94"), GetAddressFromPrivateKey(pk))

	other, err := PrivateKeyFromMnemonic(testMnemonic, 1)
	require.NoError(t, err)
	require.Equal(t, common.HexToAddress("0x6Fac4D18c912343BF86fa7049364Dd4E424Ab9C0"), GetAddressFromPrivateKey(other))

	again, err := PrivateKeyFromMnemonic(testMnemonic, 1)
	require.NoError(t, err)
	require.Equal(t, GetAddressFromPrivateKey(other), GetAddressFromPrivateKey(again))

	large, err := PrivateKeyFromMnemonic(testMnemonic, 1<<33)
	require.NoError(t, err)
	require.NotEqual(t, GetAddressFromPrivateKey(pk), GetAddressFromPrivateKey(large))
}

func TestPrivateKeyFromMnemonicErrors(t *testing.T) {
	_, err := PrivateKeyFromMnemonic("not a valid mnemonic", 0)
	require.True(t, errors.Is(err, ErrInvalidSeed))

	_, err = PrivateKeyFromMnemonic(testMnemonic, -1)
	require.True(t, errors.Is(err, ErrInvalidChildKey))
}

func TestBigToUint64(t *testing.T) {
	v, err := BigToUint64(big.NewInt(7777))
	require.NoError(t, err)
	require.Equal(t, uint64(7777), v)

	v, err = BigToUint64(nil)
	require.NoError(t, err)
	require.Zero(t, v)

	huge := big.NewInt(0).Lsh(big.NewInt(1), 64)
	_, err = BigToUint64(huge)
	require.True(t, errors.Is(err, ErrIntegerOverflow))

	_, err = BigToUint64(big.NewInt(-1))
	require.True(t, errors.Is(err, ErrNegativeValue))
}

func TestStringToUint64(t *testing.T) {
	v, err := StringToUint64("123456")
	require.NoError(t, err)
	require.Equal(t, uint64(123456), v)

	v, err = StringToUint64("")
	require.NoError(t, err)
	require.Zero(t, v)

	_, err = StringToUint64("18446744073709551616")
	require.True(t, errors.Is(err, ErrIntegerOverflow))

	_, err = StringToUint64("twelve")
	require.EqualError(t, err, `invalid integer "twelve"`)
}

func TestFormatEther(t *testing.T) {
	assert.Equal(t, "0.02", FormatEther(big.NewInt(20000000000000000)))
	assert.Equal(t, "1", FormatEther(big.NewInt(1000000000000000000)))
	assert.Equal(t, "0", FormatEther(nil))

	wei, err := ParseEther("0.020")
	require.NoError(t, err)
	assert.Equal(t, "20000000000000000", wei.String())
}

func TestShortenAddress(t *testing.T) {
	address := common.HexToAddress("0x9858EfFD232B4033E47d90003D41EC34EcaEda94")
	assert.Equal(t, "0x9858Ef...aEda94", ShortenAddress(address))
	assert.Equal(t, "", ShortenAddress(common.Address{}))
	assert.Equal(t, "short", ShortenParameter("short"))
	assert.Equal(t, "0x123456...cdef", ShortenParameter("0x1234567890abcdef"))
}

func TestFormatDbTgUser(t *testing.T) {
	assert.Equal(t, "@lucky", FormatDbTgUser(&data.Telegram{ID: 1, UserName: "lucky"}))
	assert.Equal(t, "[Ana Gomez](tg://user?id=2)", FormatDbTgUser(&data.Telegram{ID: 2, FirstName: "Ana", LastName: "Gomez"}))
	assert.Equal(t, "@lucky\\_7", FormatDbTgUser(&data.Telegram{ID: 3, UserName: "lucky_7"}))
	assert.Equal(t, "[Ana Go](tg://user?id=4)", FormatDbTgUser(&data.Telegram{ID: 4, FirstName: "*Ana*", LastName: "`Go]"}))
	assert.Equal(t, "[5](tg://user?id=5)", FormatDbTgUser(&data.Telegram{ID: 5, FirstName: "**", LastName: "_"}))
}

func TestEscapeMarkdown(t *testing.T) {
	assert.Equal(t, "a\\*b\\_c\\`d\\[e]", EscapeMarkdown("a*b_c`d[e]"))
	assert.Equal(t, "plain", EscapeMarkdown("plain"))
}
