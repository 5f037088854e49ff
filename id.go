package idgen

import (
	"database/sql/driver"
	"fmt"
	"strconv"
	"time"
)

// ID is a strongly-typed packed identifier. It wraps the raw 64-bit word
// the Allocator returns and adds encodings, JSON marshaling, and SQL
// driver support — grounded on the teacher repository's id.go, trimmed to
// the formats this system's adapters (HTTP JSON, the audit sink) actually
// use.
type ID uint64

// Uint64 returns the raw packed word.
func (id ID) Uint64() uint64 { return uint64(id) }

// String returns the decimal representation. Implements fmt.Stringer.
func (id ID) String() string { return strconv.FormatUint(uint64(id), 10) }

// Hex returns a lowercase hexadecimal representation.
func (id ID) Hex() string { return encodeHex(uint64(id)) }

// Base58 returns a Bitcoin-style base58 representation, avoiding visually
// similar characters.
func (id ID) Base58() string { return encodeBase(uint64(id), base58Alphabet) }

// Base62 returns a URL-safe alphanumeric representation.
func (id ID) Base62() string { return encodeBase(uint64(id), base62Alphabet) }

// ParseID parses the decimal representation produced by String.
func ParseID(s string) (ID, error) {
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("idgen: %w", ErrInvalidEncoding)
	}
	return ID(v), nil
}

// ParseBase62 parses a Base62-encoded ID.
func ParseBase62(s string) (ID, error) {
	v, err := decodeBase(s, &base62Decode, uint64(len(base62Alphabet)))
	return ID(v), err
}

// ParseBase58 parses a Base58-encoded ID.
func ParseBase58(s string) (ID, error) {
	v, err := decodeBase(s, &base58Decode, uint64(len(base58Alphabet)))
	return ID(v), err
}

// ParseHex parses a hexadecimal-encoded ID.
func ParseHex(s string) (ID, error) {
	v, err := decodeHex(s)
	return ID(v), err
}

// MarshalJSON encodes the ID as a JSON string, not a number, to avoid
// precision loss in JavaScript consumers (IDs routinely exceed 2^53).
func (id ID) MarshalJSON() ([]byte, error) {
	return []byte(`"` + id.String() + `"`), nil
}

// UnmarshalJSON accepts either a JSON string or a bare JSON number.
func (id *ID) UnmarshalJSON(data []byte) error {
	s := string(data)
	if len(s) >= 2 && s[0] == '"' && s[len(s)-1] == '"' {
		s = s[1 : len(s)-1]
	}
	v, err := strconv.ParseUint(s, 10, 64)
	if err != nil {
		return fmt.Errorf("idgen: invalid id %q: %w", s, err)
	}
	*id = ID(v)
	return nil
}

// Value implements driver.Valuer so an ID can be written directly to a SQL
// column. It is stored as a signed int64: bit 63 is always clear (Layout
// invariant L1), so the round trip through int64 loses nothing.
func (id ID) Value() (driver.Value, error) {
	return int64(id), nil
}

// Scan implements sql.Scanner, the reverse of Value.
func (id *ID) Scan(src any) error {
	switch v := src.(type) {
	case int64:
		*id = ID(uint64(v))
		return nil
	case []byte:
		parsed, err := ParseID(string(v))
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	case string:
		parsed, err := ParseID(v)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return fmt.Errorf("idgen: cannot scan %T into ID", src)
	}
}

// Components decodes the ID's fields through layout and renders the
// timestamp field as an absolute time relative to layout's epoch.
func (id ID) Components(layout *Layout) (domain, counter, instance uint64, at time.Time) {
	p := layout.Decode(uint64(id))
	at = time.Unix(int64(layout.EpochStartSecond()+p.Timestamp), 0).UTC()
	return p.Domain, p.Counter, p.Instance, at
}
