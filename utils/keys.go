package utils

import (
	"crypto/ecdsa"
	"math/big"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
	"github.com/tyler-smith/go-bip32"
	"github.com/tyler-smith/go-bip39"
)

// m/44'/60'/account'/0/address
var path = []uint32{
	44 + bip32.FirstHardenedChild,
	60 + bip32.FirstHardenedChild,
	bip32.FirstHardenedChild,
	0,
	0,
}

// GetPrivateKeyFromSeed derives the wallet of a user from the global Seedphrase
func GetPrivateKeyFromSeed(index int64) (*ecdsa.PrivateKey, error) {
	return PrivateKeyFromMnemonic(Seedphrase, index)
}

// PrivateKeyFromMnemonic derives m/44'/60'/(index>>31)'/0/(index&0x7fffffff)
func PrivateKeyFromMnemonic(mnemonic string, index int64) (*ecdsa.PrivateKey, error) {
	if index < 0 {
		return nil, errors.Wrapf(ErrInvalidChildKey, "negative index %d", index)
	}

	seed, err := bip39.NewSeedWithErrorChecking(mnemonic, "")
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSeed, err.Error())
	}

	p := make([]uint32, len(path))
	copy(p, path)
	p[2] = bip32.FirstHardenedChild + uint32(index>>31)
	p[4] = uint32(index & 0x7FFFFFFF)

	key, err := bip32.NewMasterKey(seed)
	if err != nil {
		return nil, errors.Wrap(ErrInvalidSeed, err.Error())
	}
	for _, childIdx := range p {
		key, err = key.NewChildKey(childIdx)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidChildKey, "child %d: %s", childIdx, err)
		}
	}

	// keys with leading zero bytes come back short
	keyBytes := math.PaddedBigBytes(new(big.Int).SetBytes(key.Key), 32)

	return crypto.ToECDSA(keyBytes)
}

// GetAddressFromPrivateKey returns the account of a private key
func GetAddressFromPrivateKey(pk *ecdsa.PrivateKey) common.Address {
	return crypto.PubkeyToAddress(pk.PublicKey)
}

