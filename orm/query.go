package orm

import (
	yieldstream "github.com/streamvault/yieldstream"
)

// queryPrefix returns all key-value pairs under the given prefix.
func queryPrefix(db yieldstream.ReadOnlyKVStore, prefix []byte) ([]yieldstream.Model, error) {
	start, end := prefixRange(prefix)
	itr, err := db.Iterator(start, end)
	if err != nil {
		return nil, err
	}
	return ConsumeIterator(itr)
}

// ConsumeIterator will read all remaining data into an
// array and close the iterator
func ConsumeIterator(itr yieldstream.Iterator) ([]yieldstream.Model, error) {
	defer itr.Close()

	res := []yieldstream.Model{}
	for itr.Valid() {
		mod := yieldstream.Model{
			Key:   itr.Key(),
			Value: itr.Value(),
		}
		res = append(res, mod)
		if err := itr.Next(); err != nil {
			return nil, err
		}
	}
	return res, nil
}

// prefixRange turns a prefix into (start, end) to create
// an iterator
func prefixRange(prefix []byte) ([]byte, []byte) {
	// special case: no prefix is whole range
	if len(prefix) == 0 {
		return nil, nil
	}

	// copy the prefix and update last byte
	end := make([]byte, len(prefix))
	copy(end, prefix)
	l := len(end) - 1
	end[l]++

	// wait, what if that overflowed the last byte? then we need to carry it
	for end[l] == 0 && l > 0 {
		l--
		end[l]++
	}
	// okay, funny guy, you gave us FFF, no end to this range...
	if l == 0 && end[0] == 0 {
		end = nil
	}
	return prefix, end
}
