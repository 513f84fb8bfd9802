package core

import (
	"fmt"

	"github.com/tsawler/scribe/internal/filters"
)

// Decode returns the stream data with all filters applied in order.
// Supported filters: FlateDecode, ASCIIHexDecode, ASCII85Decode and
// CCITTFaxDecode. DCTDecode and JPXDecode data is returned as-is since the
// payload is already a self-contained image format.
func (s *Stream) Decode() ([]byte, error) {
	filterObj := s.Dict.Get("Filter")
	if filterObj == nil {
		return s.Data, nil
	}

	parmsObj := s.Dict.Get("DecodeParms")

	switch f := filterObj.(type) {
	case Name:
		return applyFilter(s.Data, string(f), toParams(parmsObj))
	case Array:
		data := s.Data
		for i, item := range f {
			name, ok := item.(Name)
			if !ok {
				return nil, fmt.Errorf("filter %d is not a name: %T", i, item)
			}
			var parms Object
			if arr, ok := parmsObj.(Array); ok {
				parms = arr.At(i)
			} else {
				parms = parmsObj
			}
			var err error
			data, err = applyFilter(data, string(name), toParams(parms))
			if err != nil {
				return nil, fmt.Errorf("filter %d (%s): %w", i, name, err)
			}
		}
		return data, nil
	}

	return nil, fmt.Errorf("invalid /Filter type %T", filterObj)
}

func applyFilter(data []byte, name string, params filters.Params) ([]byte, error) {
	switch name {
	case "FlateDecode", "Fl":
		return filters.FlateDecode(data, params)
	case "ASCIIHexDecode", "AHx":
		return filters.ASCIIHexDecode(data)
	case "ASCII85Decode", "A85":
		return filters.ASCII85Decode(data)
	case "CCITTFaxDecode", "CCF":
		return filters.CCITTFaxDecode(data, params)
	case "DCTDecode", "DCT", "JPXDecode":
		// Already a complete JPEG/JPEG2000 payload.
		return data, nil
	}
	return nil, fmt.Errorf("unsupported filter %s", name)
}

// toParams flattens a DecodeParms dictionary into filter parameters.
func toParams(obj Object) filters.Params {
	dict, ok := obj.(Dict)
	if !ok {
		return nil
	}
	params := make(filters.Params, len(dict))
	for k, v := range dict {
		switch val := v.(type) {
		case Int:
			params[string(k)] = int(val)
		case Real:
			params[string(k)] = float64(val)
		case Bool:
			params[string(k)] = bool(val)
		case Name:
			params[string(k)] = string(val)
		}
	}
	return params
}
