package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"kadmeia/internal/domain/content"
	"time"
)

type Summary struct {
	Kind   content.Kind
	Lang   content.Lang
	Count  int
	Latest time.Time
}

// Summaries counts entries per (kind, lang), skipping empty pairs.
func (s *Store) Summaries() ([]Summary, error) {
	var out []Summary
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bIdxDate)
		entryB := tx.Bucket(bEntry)
		if idx == nil || entryB == nil {
			return nil
		}
		for _, kind := range content.Kinds {
			for _, lang := range content.Langs {
				sb := idx.Bucket(listBucketName(string(kind), string(lang)))
				if sb == nil {
					continue
				}
				sum := Summary{Kind: kind, Lang: lang, Count: sb.Stats().KeyN}
				// the first key is the newest dated entry, if any
				if k, target := sb.Cursor().First(); k != nil && k[0] == flagDated {
					var e content.Entry
					if err := json.Unmarshal(entryB.Get(target), &e); err == nil {
						sum.Latest = e.Date
					}
				}
				out = append(out, sum)
			}
		}
		return nil
	})
	return out, err
}
