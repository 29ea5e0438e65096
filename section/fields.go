package section

import (
	"bytes"

	"github.com/cockroachdb/errors"

	"github.com/arloliu/tdb/item"
)

// ParseFields parses the field list. The result holds the names of fields
// 1..n-1 in id order; the timestamp field is implicit and not included.
func ParseFields(data []byte) ([]string, error) {
	var names []string
	for len(data) > 0 {
		line := data
		if i := bytes.IndexByte(data, '\n'); i >= 0 {
			line, data = data[:i], data[i+1:]
		} else {
			data = nil
		}

		if len(line) == 0 {
			return nil, errors.Wrapf(ErrInvalidFields, "empty name for field %d", len(names)+1)
		}
		names = append(names, string(line))
	}

	if len(names)+1 > item.MaxFields {
		return nil, errors.Wrapf(ErrTooManyFields, "%d fields, max %d", len(names)+1, item.MaxFields)
	}

	return names, nil
}

// FormatFields is the inverse of ParseFields.
func FormatFields(names []string) []byte {
	var buf bytes.Buffer
	for _, name := range names {
		buf.WriteString(name)
		buf.WriteByte('\n')
	}

	return buf.Bytes()
}
