package search

import (
	"encoding/base64"
	"encoding/json"
	"strconv"

	"github.com/cespare/xxhash/v2"

	"github.com/soodoh/openfit/internal/apperr"
	"github.com/soodoh/openfit/internal/catalog"
)

// cursor is the position after the last returned page. Text searches resume
// by offset, filter scans by keyset. Filter pins the cursor to the filters it
// was issued for.
type cursor struct {
	After  *catalog.Keyset `json:"a,omitempty"`
	Offset int             `json:"o,omitempty"`
	Filter string          `json:"f"`
}

func (c cursor) encode() string {
	raw, err := json.Marshal(c)
	if err != nil {
		// cursor only holds strings, ints and uuids
		panic(err)
	}
	return base64.RawURLEncoding.EncodeToString(raw)
}

func decodeCursor(op, s string) (cursor, error) {
	var c cursor
	raw, err := base64.RawURLEncoding.DecodeString(s)
	if err != nil {
		return c, apperr.Validation(op, "malformed cursor")
	}
	if err := json.Unmarshal(raw, &c); err != nil {
		return c, apperr.Validation(op, "malformed cursor")
	}
	if c.Offset < 0 {
		return c, apperr.Validation(op, "malformed cursor")
	}
	return c, nil
}

// fingerprint identifies the filters a cursor belongs to. The gym is part of
// it by id, so editing the gym's equipment keeps old cursors usable.
func (f Filter) fingerprint() string {
	raw, err := json.Marshal(f.normalized())
	if err != nil {
		panic(err)
	}
	return strconv.FormatUint(xxhash.Sum64(raw), 36)
}
