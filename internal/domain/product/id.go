package product

import (
	"strconv"
	"strings"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ID identifies a product. The catalog contains both legacy numeric IDs
// and opaque string IDs; both are canonicalised to a single string key at
// the boundary so the rest of the system never branches on the ID form.
type ID struct {
	key string
}

// ParseID canonicalises a raw identifier string into an ID.
// Numeric strings are normalised ("007" and "7" resolve to the same key).
func ParseID(raw string) (ID, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return ID{}, errors.New("empty product id")
	}
	if n, err := strconv.ParseInt(raw, 10, 64); err == nil {
		return ID{key: strconv.FormatInt(n, 10)}, nil
	}
	return ID{key: raw}, nil
}

// IDFromInt builds an ID from a legacy numeric identifier.
func IDFromInt(n int64) ID {
	return ID{key: strconv.FormatInt(n, 10)}
}

// String returns the canonical lookup key.
func (id ID) String() string { return id.key }

// IsZero reports whether the ID is unset.
func (id ID) IsZero() bool { return id.key == "" }

// MarshalJSON encodes the ID as a JSON string.
func (id ID) MarshalJSON() ([]byte, error) {
	var w jx.Writer
	w.Str(id.key)
	return w.Buf, nil
}

// UnmarshalJSON accepts either a JSON number (legacy integer IDs) or a
// JSON string, resolving both into the canonical key.
func (id *ID) UnmarshalJSON(data []byte) error {
	d := jx.DecodeBytes(data)
	switch d.Next() {
	case jx.Number:
		n, err := d.Int64()
		if err != nil {
			return errors.Wrap(err, "decode numeric product id")
		}
		*id = IDFromInt(n)
		return nil
	case jx.String:
		s, err := d.Str()
		if err != nil {
			return errors.Wrap(err, "decode product id")
		}
		parsed, err := ParseID(s)
		if err != nil {
			return err
		}
		*id = parsed
		return nil
	default:
		return errors.Errorf("product id must be a string or number, got %s", d.Next())
	}
}
