package obj

import (
	"encoding/binary"
	"fmt"
	"io"
)

// TypeCode is the reserved wire identifier persisted alongside a value's
// bytes, per spec.md §6 "Persistence typed-dump contract". RDB/AOF
// formats themselves are out of scope; only this contract is.
type TypeCode byte

const (
	TypeCodeString          TypeCode = 0
	TypeCodeList            TypeCode = 1
	TypeCodeSet             TypeCode = 2
	TypeCodeZSet            TypeCode = 3
	TypeCodeHash            TypeCode = 4
	TypeCodeIntset          TypeCode = 11
	TypeCodeListpack        TypeCode = 18
	TypeCodeQuicklist2      TypeCode = 19
	TypeCodeStreamListpacks TypeCode = 21
	TypeCodeHashListpack    TypeCode = 22
	TypeCodeZSetListpack    TypeCode = 23
	TypeCodeSetListpack     TypeCode = 24
)

// typeCodeFor reports the on-disk type code that faithfully reproduces
// v's current (Type, Encoding) pair on reload, per spec.md §6's "Encoding
// choice after load must faithfully reproduce the saved encoding when
// legal."
func typeCodeFor(v *Value) TypeCode {
	switch v.typ {
	case TypeString:
		return TypeCodeString
	case TypeList:
		return TypeCodeQuicklist2
	case TypeSet:
		if v.Encoding() == EncIntset {
			return TypeCodeIntset
		}
		return TypeCodeSet
	case TypeHash:
		if v.Encoding() == EncListpack {
			return TypeCodeHashListpack
		}
		return TypeCodeHash
	case TypeSortedSet:
		if v.Encoding() == EncListpack {
			return TypeCodeZSetListpack
		}
		return TypeCodeZSet
	case TypeStream:
		return TypeCodeStreamListpacks
	default:
		return TypeCodeString
	}
}

// Serialize writes v's typed dump to w: a one-byte TypeCode followed by
// an encoding-specific body. rio-equivalent: any io.Writer is accepted,
// matching the "byte-oriented I/O abstraction" spec.md §6 asks for.
func Serialize(w io.Writer, v *Value) error {
	code := typeCodeFor(v)
	if _, err := w.Write([]byte{byte(code)}); err != nil {
		return err
	}
	switch v.typ {
	case TypeString:
		return writeBytes(w, Decode(v))
	case TypeList:
		p := v.body.(*listPayload)
		if err := writeUint32(w, uint32(len(p.elems))); err != nil {
			return err
		}
		for _, e := range p.elems {
			if err := writeBytes(w, e); err != nil {
				return err
			}
		}
		return nil
	case TypeSet:
		members := SetMembers(v)
		if err := writeUint32(w, uint32(len(members))); err != nil {
			return err
		}
		for _, m := range members {
			if err := writeBytes(w, m); err != nil {
				return err
			}
		}
		return nil
	case TypeHash:
		fields, values := HashFieldsValues(v)
		if err := writeUint32(w, uint32(len(fields))); err != nil {
			return err
		}
		for i := range fields {
			if err := writeBytes(w, fields[i]); err != nil {
				return err
			}
			if err := writeBytes(w, values[i]); err != nil {
				return err
			}
		}
		return nil
	case TypeSortedSet:
		members, scores := ZSetRange(v, 0, -1)
		if err := writeUint32(w, uint32(len(members))); err != nil {
			return err
		}
		for i := range members {
			if err := writeBytes(w, members[i]); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, scores[i]); err != nil {
				return err
			}
		}
		return nil
	case TypeStream:
		p := v.body.(*streamPayload)
		if err := writeUint32(w, uint32(len(p.entries))); err != nil {
			return err
		}
		for _, e := range p.entries {
			if err := binary.Write(w, binary.LittleEndian, e.ID.Ms); err != nil {
				return err
			}
			if err := binary.Write(w, binary.LittleEndian, e.ID.Seq); err != nil {
				return err
			}
			if err := writeUint32(w, uint32(len(e.Fields))); err != nil {
				return err
			}
			for i := range e.Fields {
				if err := writeBytes(w, e.Fields[i]); err != nil {
					return err
				}
				if err := writeBytes(w, e.Values[i]); err != nil {
					return err
				}
			}
		}
		return nil
	default:
		return fmt.Errorf("obj: no dump contract for type %v", v.typ)
	}
}

// Deserialize reads a typed dump written by Serialize and reconstructs a
// Value, choosing the same starting encoding the type code implies; the
// usual promotion thresholds still apply to subsequent mutation.
func Deserialize(r io.Reader, mode lruMode, nowMinutes uint32) (*Value, error) {
	var codeBuf [1]byte
	if _, err := io.ReadFull(r, codeBuf[:]); err != nil {
		return nil, err
	}
	code := TypeCode(codeBuf[0])
	switch code {
	case TypeCodeString:
		b, err := readBytes(r)
		if err != nil {
			return nil, err
		}
		return NewStringFromBytes(b, mode, nowMinutes), nil
	case TypeCodeQuicklist2:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v := NewList(mode, nowMinutes)
		for i := uint32(0); i < n; i++ {
			e, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			ListPushTail(v, e)
		}
		return v, nil
	case TypeCodeIntset, TypeCodeSet, TypeCodeSetListpack:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v := NewSet(mode, nowMinutes)
		for i := uint32(0); i < n; i++ {
			m, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			SetAdd(v, m, SharedIntegersCount)
		}
		if code == TypeCodeSet {
			MaybePromoteSet(v, -1) // saved as hashtable: reload as hashtable
		}
		return v, nil
	case TypeCodeHash, TypeCodeHashListpack:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v := NewHash(mode, nowMinutes)
		for i := uint32(0); i < n; i++ {
			f, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			val, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			HashSet(v, f, val)
		}
		if code == TypeCodeHash {
			MaybePromoteHash(v, -1, 0) // saved as hashtable: reload as hashtable
		}
		return v, nil
	case TypeCodeZSet, TypeCodeZSetListpack:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v := NewZSet(mode, nowMinutes)
		for i := uint32(0); i < n; i++ {
			m, err := readBytes(r)
			if err != nil {
				return nil, err
			}
			var score float64
			if err := binary.Read(r, binary.LittleEndian, &score); err != nil {
				return nil, err
			}
			ZSetAdd(v, m, score)
		}
		if code == TypeCodeZSet {
			MaybePromoteZSet(v, -1, 0) // saved as skiplist: reload as skiplist
		}
		return v, nil
	case TypeCodeStreamListpacks:
		n, err := readUint32(r)
		if err != nil {
			return nil, err
		}
		v := NewStream(mode, nowMinutes)
		for i := uint32(0); i < n; i++ {
			var ms, seq uint64
			if err := binary.Read(r, binary.LittleEndian, &ms); err != nil {
				return nil, err
			}
			if err := binary.Read(r, binary.LittleEndian, &seq); err != nil {
				return nil, err
			}
			fn, err := readUint32(r)
			if err != nil {
				return nil, err
			}
			fields := make([][]byte, fn)
			values := make([][]byte, fn)
			for j := uint32(0); j < fn; j++ {
				if fields[j], err = readBytes(r); err != nil {
					return nil, err
				}
				if values[j], err = readBytes(r); err != nil {
					return nil, err
				}
			}
			if _, err := StreamAdd(v, StreamID{Ms: ms, Seq: seq}, false, fields, values); err != nil {
				return nil, err
			}
		}
		return v, nil
	default:
		return nil, fmt.Errorf("obj: unknown type code %d", code)
	}
}

func writeUint32(w io.Writer, n uint32) error {
	var buf [4]byte
	binary.LittleEndian.PutUint32(buf[:], n)
	_, err := w.Write(buf[:])
	return err
}

func readUint32(r io.Reader) (uint32, error) {
	var buf [4]byte
	if _, err := io.ReadFull(r, buf[:]); err != nil {
		return 0, err
	}
	return binary.LittleEndian.Uint32(buf[:]), nil
}

func writeBytes(w io.Writer, b []byte) error {
	if err := writeUint32(w, uint32(len(b))); err != nil {
		return err
	}
	_, err := w.Write(b)
	return err
}

func readBytes(r io.Reader) ([]byte, error) {
	n, err := readUint32(r)
	if err != nil {
		return nil, err
	}
	b := make([]byte, n)
	if _, err := io.ReadFull(r, b); err != nil {
		return nil, err
	}
	return b, nil
}
