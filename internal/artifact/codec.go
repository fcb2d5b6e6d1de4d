package artifact

import (
	"bytes"
	"encoding/json"
	"fmt"
	"reflect"

	"github.com/fxamacker/cbor/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// encMode uses Core Deterministic Encoding: the same table always encodes
// to the same bytes, so digests are stable.
var (
	encMode cbor.EncMode
	decMode cbor.DecMode
)

func init() {
	var err error

	encOptions := cbor.CoreDetEncOptions()
	// Kind, AttrKind and Location encode through MarshalText.
	encOptions.TextMarshaler = cbor.TextMarshalerTextString
	encMode, err = encOptions.EncMode()
	if err != nil {
		panic("artifact: CBOR encoder initialization failed: " + err.Error())
	}

	decMode, err = cbor.DecOptions{
		DefaultMapType:  reflect.TypeOf(map[string]any(nil)),
		TextUnmarshaler: cbor.TextUnmarshalerTextString,
	}.DecMode()
	if err != nil {
		panic("artifact: CBOR decoder initialization failed: " + err.Error())
	}
}

func marshal(c Codec, v any) ([]byte, error) {
	switch c {
	case CodecJSON:
		return json.MarshalIndent(v, "", "  ")
	case CodecCBOR:
		return encMode.Marshal(v)
	case CodecMsgpack:
		var buf bytes.Buffer
		enc := msgpack.NewEncoder(&buf)
		enc.SetCustomStructTag("json")
		enc.SetSortMapKeys(true)
		if err := enc.Encode(v); err != nil {
			return nil, err
		}
		return buf.Bytes(), nil
	default:
		return nil, fmt.Errorf("unsupported codec %s", c)
	}
}

func unmarshal(c Codec, data []byte, v any) error {
	switch c {
	case CodecJSON:
		return json.Unmarshal(data, v)
	case CodecCBOR:
		return decMode.Unmarshal(data, v)
	case CodecMsgpack:
		dec := msgpack.NewDecoder(bytes.NewReader(data))
		dec.SetCustomStructTag("json")
		return dec.Decode(v)
	default:
		return fmt.Errorf("unsupported codec %s", c)
	}
}
