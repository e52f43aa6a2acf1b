package framework

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
)

var ErrInvalidPrivateKey = errors.New("invalid private key")

type PrivKey struct {
	Priv *ecdsa.PrivateKey
}

func (p *PrivKey) Address() common.Address {
	return crypto.PubkeyToAddress(p.Priv.PublicKey)
}

// ParsePrivKey accepts a hex key with or without the 0x prefix. The key
// material is never echoed back in the error.
func ParsePrivKey(hexKey string) (*PrivKey, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	priv, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		return nil, fmt.Errorf("%w: expected 32 hex-encoded bytes", ErrInvalidPrivateKey)
	}
	return &PrivKey{Priv: priv}, nil
}

func NewPrivKeyFromHex(hexKey string) *PrivKey {
	key, err := ParsePrivKey(hexKey)
	if err != nil {
		panic(err)
	}
	return key
}

func GeneratePrivKey() *PrivKey {
	priv, err := crypto.GenerateKey()
	if err != nil {
		panic(fmt.Sprintf("generate key: %v", err))
	}
	return &PrivKey{Priv: priv}
}
