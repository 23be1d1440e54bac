package triplestore

import (
	"bytes"
	"fmt"
)

// Index prefixes. Each triple is written once per index.
const (
	SPOPrefix byte = 0x01
	OPSPrefix byte = 0x02
	PSOPrefix byte = 0x03
)

// KeyFactCount stores the persisted triple counter.
var KeyFactCount = []byte("meta:count")

const (
	escByte  byte = 0x00
	sepByte  byte = 0x01
	termByte byte = 0x02
)

// encodeTerm appends a self-delimiting encoding of t to dst. The encoding
// preserves lexicographic order of values, so prefix scans on a bound term
// never match a longer value sharing the same prefix.
func encodeTerm(dst []byte, t Term) []byte {
	dst = append(dst, byte(t.Kind))
	dst = appendEscaped(dst, t.Value)
	dst = append(dst, escByte, sepByte)
	dst = appendEscaped(dst, t.Datatype)
	dst = append(dst, escByte, sepByte)
	dst = appendEscaped(dst, t.Lang)
	return append(dst, escByte, termByte)
}

func appendEscaped(dst []byte, s string) []byte {
	for i := 0; i < len(s); i++ {
		if s[i] == escByte {
			dst = append(dst, escByte, 0xFF)
			continue
		}
		dst = append(dst, s[i])
	}
	return dst
}

// decodeTerm reads one term from src and returns the remainder.
func decodeTerm(src []byte) (Term, []byte, error) {
	if len(src) == 0 {
		return Term{}, nil, fmt.Errorf("decode term: empty input")
	}
	t := Term{Kind: TermKind(src[0])}
	src = src[1:]

	fields := make([]string, 0, 3)
	var cur bytes.Buffer
	for i := 0; i < len(src); i++ {
		if src[i] != escByte {
			cur.WriteByte(src[i])
			continue
		}
		if i+1 >= len(src) {
			return Term{}, nil, fmt.Errorf("decode term: truncated escape")
		}
		i++
		switch src[i] {
		case 0xFF:
			cur.WriteByte(escByte)
		case sepByte:
			fields = append(fields, cur.String())
			cur.Reset()
		case termByte:
			fields = append(fields, cur.String())
			if len(fields) != 3 {
				return Term{}, nil, fmt.Errorf("decode term: expected 3 fields, got %d", len(fields))
			}
			t.Value, t.Datatype, t.Lang = fields[0], fields[1], fields[2]
			return t, src[i+1:], nil
		default:
			return Term{}, nil, fmt.Errorf("decode term: bad escape 0x%02x", src[i])
		}
	}
	return Term{}, nil, fmt.Errorf("decode term: missing terminator")
}

// encodeKey builds the index key for t under prefix.
func encodeKey(prefix byte, t Triple) []byte {
	a, b, c := order(prefix, t)
	key := make([]byte, 0, 64)
	key = append(key, prefix)
	key = encodeTerm(key, a)
	key = encodeTerm(key, b)
	return encodeTerm(key, c)
}

// decodeKey reverses encodeKey.
func decodeKey(key []byte) (Triple, error) {
	if len(key) == 0 {
		return Triple{}, fmt.Errorf("decode key: empty")
	}
	prefix := key[0]
	rest := key[1:]
	var terms [3]Term
	for i := range terms {
		t, r, err := decodeTerm(rest)
		if err != nil {
			return Triple{}, err
		}
		terms[i] = t
		rest = r
	}
	switch prefix {
	case SPOPrefix:
		return Triple{Subject: terms[0], Predicate: terms[1], Object: terms[2]}, nil
	case OPSPrefix:
		return Triple{Object: terms[0], Predicate: terms[1], Subject: terms[2]}, nil
	case PSOPrefix:
		return Triple{Predicate: terms[0], Subject: terms[1], Object: terms[2]}, nil
	}
	return Triple{}, fmt.Errorf("decode key: unknown prefix 0x%02x", prefix)
}

func order(prefix byte, t Triple) (Term, Term, Term) {
	switch prefix {
	case OPSPrefix:
		return t.Object, t.Predicate, t.Subject
	case PSOPrefix:
		return t.Predicate, t.Subject, t.Object
	default:
		return t.Subject, t.Predicate, t.Object
	}
}

// scanPrefix returns the longest key prefix usable for the bound terms, in
// the index order of prefix.
func scanPrefix(prefix byte, terms ...Term) []byte {
	key := []byte{prefix}
	for _, t := range terms {
		if t.IsZero() {
			break
		}
		key = encodeTerm(key, t)
	}
	return key
}
