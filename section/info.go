package section

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/cockroachdb/errors"
)

// Info is the textual header of a database.
type Info struct {
	NumTrails         uint64
	NumEvents         uint64
	MinTimestamp      uint32
	MaxTimestamp      uint32
	MaxTimestampDelta uint32
}

// ParseInfo parses the whitespace-separated info record. Trailing content
// after the five counters is ignored.
func ParseInfo(data []byte) (Info, error) {
	tokens := strings.Fields(string(data))
	if len(tokens) < 5 {
		return Info{}, errors.Wrapf(ErrInvalidInfo, "expected 5 values, got %d", len(tokens))
	}

	var info Info
	var err error
	if info.NumTrails, err = strconv.ParseUint(tokens[0], 10, 64); err != nil {
		return Info{}, errors.Wrap(ErrInvalidInfo, err.Error())
	}
	if info.NumEvents, err = strconv.ParseUint(tokens[1], 10, 64); err != nil {
		return Info{}, errors.Wrap(ErrInvalidInfo, err.Error())
	}

	u32 := []*uint32{&info.MinTimestamp, &info.MaxTimestamp, &info.MaxTimestampDelta}
	for i, dst := range u32 {
		v, err := strconv.ParseUint(tokens[2+i], 10, 32)
		if err != nil {
			return Info{}, errors.Wrap(ErrInvalidInfo, err.Error())
		}
		*dst = uint32(v)
	}

	return info, nil
}

// Bytes returns the textual form of the record.
func (i Info) Bytes() []byte {
	return []byte(i.String())
}

func (i Info) String() string {
	return fmt.Sprintf("%d %d %d %d %d\n",
		i.NumTrails, i.NumEvents, i.MinTimestamp, i.MaxTimestamp, i.MaxTimestampDelta)
}
