package log

import (
	"encoding/hex"
	"fmt"
	"math"
	"strconv"
	"time"
)

type FieldType int

const (
	FieldTypeUnknown FieldType = iota
	FieldTypeBool
	FieldTypeString
	FieldTypeHex8
	FieldTypeHex16
	FieldTypeHex32
	FieldTypeHex64
	FieldTypeInt
	FieldTypeUint
	FieldTypeFloat
	FieldTypeError
	FieldTypeDuration
	FieldTypeStringer
	FieldTypeBlob
)

// maxBlobDump is the number of bytes of a blob field that are dumped, the
// rest is only counted.
const maxBlobDump = 64

type ZField struct {
	Type FieldType
	Key  string

	// Only one of these is populated, depending on Type. Floats are stored
	// as their bits in Integer.
	String    string
	Integer   uint64
	Duration  time.Duration
	Error     error
	Interface any
	Boolean   bool
	Blob      []byte
}

// appendHex appends v as ndigits lowercase hex digits, zero padded.
func appendHex(dst []byte, v uint64, ndigits int) []byte {
	var buf [16]byte
	s := strconv.AppendUint(buf[:0], v, 16)
	for i := len(s); i < ndigits; i++ {
		dst = append(dst, '0')
	}
	return append(dst, s...)
}

// AppendValue appends the text form of the field value to dst.
func (f *ZField) AppendValue(dst []byte) []byte {
	switch f.Type {
	case FieldTypeBool:
		return strconv.AppendBool(dst, f.Boolean)
	case FieldTypeString:
		return append(dst, f.String...)
	case FieldTypeUint:
		return strconv.AppendUint(dst, f.Integer, 10)
	case FieldTypeInt:
		return strconv.AppendInt(dst, int64(f.Integer), 10)
	case FieldTypeHex8:
		return appendHex(dst, f.Integer&0xFF, 2)
	case FieldTypeHex16:
		return appendHex(dst, f.Integer&0xFFFF, 4)
	case FieldTypeHex32:
		return appendHex(dst, f.Integer&0xFFFFFFFF, 8)
	case FieldTypeHex64:
		return appendHex(dst, f.Integer, 16)
	case FieldTypeFloat:
		return strconv.AppendFloat(dst, float64(math.Float32frombits(uint32(f.Integer))), 'g', -1, 32)
	case FieldTypeError:
		if f.Error == nil {
			return append(dst, "<nil>"...)
		}
		return append(dst, f.Error.Error()...)
	case FieldTypeDuration:
		return append(dst, f.Duration.String()...)
	case FieldTypeStringer:
		return append(dst, f.Interface.(fmt.Stringer).String()...)
	case FieldTypeBlob:
		dst = append(dst, hex.Dump(f.Blob[:min(len(f.Blob), maxBlobDump)])...)
		if len(f.Blob) > maxBlobDump {
			dst = fmt.Appendf(dst, "... (%d bytes)", len(f.Blob))
		}
		return dst
	}
	return dst
}

func (f *ZField) Value() string {
	return string(f.AppendValue(nil))
}
