package framework

import (
	"errors"
	"fmt"
	"reflect"
	"strconv"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/holiman/uint256"
)

var (
	ErrInvalidAddress     = errors.New("invalid address")
	ErrAddressChecksum    = errors.New("address checksum mismatch")
	ErrArgumentCount      = errors.New("constructor argument count mismatch")
	ErrUnsupportedArgType = errors.New("unsupported constructor argument type")
	ErrIntegerOverflow    = errors.New("integer out of range")
)

// ParseAddress accepts a 0x-prefixed 20-byte hex address. Mixed-case input
// must carry a valid EIP-55 checksum.
func ParseAddress(s string) (common.Address, error) {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "0x") && !strings.HasPrefix(s, "0X") {
		return common.Address{}, fmt.Errorf("%w %q: missing 0x prefix", ErrInvalidAddress, s)
	}
	digits := s[2:]
	if len(digits) != 2*common.AddressLength {
		return common.Address{}, fmt.Errorf("%w %q: expected %d hex digits, got %d", ErrInvalidAddress, s, 2*common.AddressLength, len(digits))
	}
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%w %q: not hexadecimal", ErrInvalidAddress, s)
	}

	addr := common.HexToAddress(s)
	if isMixedCase(digits) && addr.Hex()[2:] != digits {
		return common.Address{}, fmt.Errorf("%w: %s, expected %s", ErrAddressChecksum, s, addr.Hex())
	}
	return addr, nil
}

func isMixedCase(s string) bool {
	return strings.ToLower(s) != s && strings.ToUpper(s) != s
}

// ParseConstructorArgs converts raw strings into the Go values the ABI packer
// expects for each constructor input, in order.
func ParseConstructorArgs(inputs abi.Arguments, raw []string) ([]interface{}, error) {
	if len(inputs) != len(raw) {
		return nil, fmt.Errorf("%w: constructor takes %d, got %d", ErrArgumentCount, len(inputs), len(raw))
	}

	values := make([]interface{}, len(raw))
	for i, input := range inputs {
		v, err := parseArg(input.Type, raw[i])
		if err != nil {
			name := input.Name
			if name == "" {
				name = strconv.Itoa(i)
			}
			return nil, fmt.Errorf("argument %s (%s): %w", name, input.Type.String(), err)
		}
		values[i] = v
	}
	return values, nil
}

func parseArg(t abi.Type, s string) (interface{}, error) {
	switch t.T {
	case abi.AddressTy:
		return ParseAddress(s)
	case abi.BoolTy:
		return strconv.ParseBool(s)
	case abi.StringTy:
		return s, nil
	case abi.UintTy:
		return parseUint(t.Size, s)
	case abi.IntTy:
		return parseInt(t.Size, s)
	case abi.BytesTy:
		return hexutil.Decode(s)
	case abi.FixedBytesTy:
		b, err := hexutil.Decode(s)
		if err != nil {
			return nil, err
		}
		if len(b) != t.Size {
			return nil, fmt.Errorf("expected %d bytes, got %d", t.Size, len(b))
		}
		arr := reflect.New(t.GetType()).Elem()
		reflect.Copy(arr, reflect.ValueOf(b))
		return arr.Interface(), nil
	default:
		return nil, ErrUnsupportedArgType
	}
}

func parseMagnitude(s string) (*uint256.Int, error) {
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		return uint256.FromHex("0x" + s[2:])
	}
	return uint256.FromDecimal(s)
}

func parseUint(bits int, s string) (interface{}, error) {
	n, err := parseMagnitude(strings.TrimSpace(s))
	if err != nil {
		return nil, err
	}
	if n.BitLen() > bits {
		return nil, fmt.Errorf("%w: %s does not fit in uint%d", ErrIntegerOverflow, s, bits)
	}

	switch bits {
	case 8:
		return uint8(n.Uint64()), nil
	case 16:
		return uint16(n.Uint64()), nil
	case 32:
		return uint32(n.Uint64()), nil
	case 64:
		return n.Uint64(), nil
	default:
		return n.ToBig(), nil
	}
}

func parseInt(bits int, s string) (interface{}, error) {
	s = strings.TrimSpace(s)
	negative := strings.HasPrefix(s, "-")
	n, err := parseMagnitude(strings.TrimPrefix(s, "-"))
	if err != nil {
		return nil, err
	}

	// |min| is 2^(bits-1), one more than max
	limit := new(uint256.Int).Lsh(uint256.NewInt(1), uint(bits-1))
	if n.Gt(limit) || (!negative && n.Eq(limit)) {
		return nil, fmt.Errorf("%w: %s does not fit in int%d", ErrIntegerOverflow, s, bits)
	}

	v := n.ToBig()
	if negative {
		v.Neg(v)
	}

	switch bits {
	case 8:
		return int8(v.Int64()), nil
	case 16:
		return int16(v.Int64()), nil
	case 32:
		return int32(v.Int64()), nil
	case 64:
		return v.Int64(), nil
	default:
		return v, nil
	}
}
