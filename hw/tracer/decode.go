package tracer

import (
	"bufio"
	"io"
	"strconv"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// Event is a decoded trace line. Fields not carried by the event kind are
// left zero.
type Event struct {
	Seq   uint64
	Kind  string
	ID    uint32
	Reg   string
	Addr  uint32
	Value uint32
	Mask  uint8
	Size  int
	Data  []byte
}

func parseHex32(d *jx.Decoder) (uint32, error) {
	s, err := d.Str()
	if err != nil {
		return 0, err
	}
	v, err := strconv.ParseUint(s, 0, 32)
	if err != nil {
		return 0, errors.Wrapf(err, "hex value %q", s)
	}
	return uint32(v), nil
}

// Decode decodes a single trace line.
func Decode(line []byte) (Event, error) {
	var ev Event
	err := jx.DecodeBytes(line).Obj(func(d *jx.Decoder, key string) error {
		var err error
		switch key {
		case "seq":
			ev.Seq, err = d.UInt64()
		case "kind":
			ev.Kind, err = d.Str()
		case "id":
			ev.ID, err = d.UInt32()
		case "reg":
			ev.Reg, err = d.Str()
		case "addr":
			ev.Addr, err = parseHex32(d)
		case "value":
			ev.Value, err = parseHex32(d)
		case "mask":
			ev.Mask, err = d.UInt8()
		case "size":
			ev.Size, err = d.Int()
		case "data":
			ev.Data, err = d.Base64()
		default:
			err = d.Skip()
		}
		if err != nil {
			return errors.Wrapf(err, "field %q", key)
		}
		return nil
	})
	if err != nil {
		return Event{}, errors.Wrap(err, "decode event")
	}
	return ev, nil
}

// ReadAll decodes every event of a trace.
func ReadAll(r io.Reader) ([]Event, error) {
	var events []Event
	sc := bufio.NewScanner(r)
	sc.Buffer(nil, 1<<20)
	for sc.Scan() {
		if len(sc.Bytes()) == 0 {
			continue
		}
		ev, err := Decode(sc.Bytes())
		if err != nil {
			return nil, errors.Wrapf(err, "line %d", len(events)+1)
		}
		events = append(events, ev)
	}
	if err := sc.Err(); err != nil {
		return nil, errors.Wrap(err, "read trace")
	}
	return events, nil
}
