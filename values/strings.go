package values

import (
	"github.com/goort/goort/status"
	"github.com/goort/goort/types/dtypes"
)

// String tensor packing.
//
// String tensors store Go strings per element slot; these helpers convert
// between that representation and the flat packed form used on the wire:
// all element bytes concatenated in element order, plus one offset per
// element giving the number of content bytes before it (the first offset
// is always zero).

func stringData(t *Tensor) ([]string, error) {
	if err := t.checkValid(); err != nil {
		return nil, err
	}
	if t.shape.DType != dtypes.String {
		return nil, status.Errorf(status.InvalidArgument,
			"expected a string tensor, got %s", t.shape.DType)
	}
	return t.strs, nil
}

// StringDataLength returns the total number of content bytes over all
// elements of a string tensor, the buffer size StringContent needs.
func StringDataLength(t *Tensor) (int64, error) {
	strs, err := stringData(t)
	if err != nil {
		return 0, err
	}
	var total int64
	for _, s := range strs {
		total += int64(len(s))
	}
	return total, nil
}

// FillStrings copies src into the tensor's element slots in flat order.
// src must cover every element; extra entries are ignored.
func FillStrings(t *Tensor, src []string) error {
	strs, err := stringData(t)
	if err != nil {
		return err
	}
	if len(src) < len(strs) {
		return status.Errorf(status.InvalidArgument,
			"input array is too short: tensor has %d elements, got %d strings", len(strs), len(src))
	}
	copy(strs, src)
	return nil
}

// StringContent packs the tensor's elements into dst as concatenated
// bytes and writes one offset per element into offsets: the number of
// content bytes preceding that element. Both destinations must be large
// enough, dst at least StringDataLength bytes and offsets at least one
// slot per element.
func StringContent(t *Tensor, dst []byte, offsets []int64) error {
	strs, err := stringData(t)
	if err != nil {
		return err
	}
	if len(offsets) < len(strs) {
		return status.Errorf(status.Fail,
			"offsets buffer is not large enough, need %d slots", len(strs))
	}
	total, err := StringDataLength(t)
	if err != nil {
		return err
	}
	if int64(len(dst)) < total {
		return status.Errorf(status.Fail,
			"space is not enough, need %d bytes", total)
	}
	var pos int64
	for i, s := range strs {
		offsets[i] = pos
		copy(dst[pos:], s)
		pos += int64(len(s))
	}
	return nil
}
