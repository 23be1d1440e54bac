package triplestore

import (
	"iter"

	"github.com/dgraph-io/badger/v4"
)

// scanStrategy represents the index selection strategy for Scan operations.
type scanStrategy struct {
	prefix []byte
	index  byte
}

// selectScanStrategy picks the index whose key order puts the bound terms first.
//
// Index Selection Strategy:
//   - Subject bound -> SPO (prefix S or S|P, or S|P|O)
//   - Object bound  -> OPS (prefix O or O|P)
//   - Predicate only -> PSO (prefix P)
//   - Nothing bound -> full SPO scan
func selectScanStrategy(s, p, o Term) scanStrategy {
	switch {
	case !s.IsZero():
		if p.IsZero() {
			return scanStrategy{prefix: scanPrefix(SPOPrefix, s), index: SPOPrefix}
		}
		return scanStrategy{prefix: scanPrefix(SPOPrefix, s, p, o), index: SPOPrefix}
	case !o.IsZero():
		return scanStrategy{prefix: scanPrefix(OPSPrefix, o, p), index: OPSPrefix}
	case !p.IsZero():
		return scanStrategy{prefix: scanPrefix(PSOPrefix, p), index: PSOPrefix}
	default:
		return scanStrategy{prefix: []byte{SPOPrefix}, index: SPOPrefix}
	}
}

// matches reports whether t satisfies the pattern; zero terms match anything.
func matches(t Triple, s, p, o Term) bool {
	if !s.IsZero() && t.Subject != s {
		return false
	}
	if !p.IsZero() && t.Predicate != p {
		return false
	}
	if !o.IsZero() && t.Object != o {
		return false
	}
	return true
}

// Scan returns an iterator over triples matching the pattern. A zero Term is
// a wildcard.
func (s *Store) Scan(subj, pred, obj Term) iter.Seq2[Triple, error] {
	return func(yield func(Triple, error) bool) {
		strategy := selectScanStrategy(subj, pred, obj)

		txn := s.db.NewTransaction(false)
		defer txn.Discard()

		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false // keys carry the whole triple

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Seek(strategy.prefix); it.ValidForPrefix(strategy.prefix); it.Next() {
			t, err := decodeKey(it.Item().Key())
			if err != nil {
				if !yield(Triple{}, err) {
					return
				}
				continue
			}
			if !matches(t, subj, pred, obj) {
				continue
			}
			if !yield(t, nil) {
				return
			}
		}
	}
}

// Objects returns the objects of every triple with the given subject and predicate.
func (s *Store) Objects(subj, pred Term) ([]Term, error) {
	var out []Term
	for t, err := range s.Scan(subj, pred, Term{}) {
		if err != nil {
			return nil, err
		}
		out = append(out, t.Object)
	}
	return out, nil
}

// Subjects returns the subjects of every triple with the given predicate and object.
func (s *Store) Subjects(pred, obj Term) ([]Term, error) {
	var out []Term
	for t, err := range s.Scan(Term{}, pred, obj) {
		if err != nil {
			return nil, err
		}
		out = append(out, t.Subject)
	}
	return out, nil
}
