package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"kadmeia/internal/domain/build"
	"kadmeia/internal/domain/content"
	domainerr "kadmeia/internal/domain/errors"
	"strings"
)

var ErrNotFound = domainerr.ErrNotFound

type ListOptions struct {
	Page int
	Size int
}

// Get resolves a qualified or shortcut key.
func (s *Store) Get(key string) (content.Entry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return content.Entry{}, ErrNotFound
	}
	var e content.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		entryB := tx.Bucket(bEntry)
		if entryB == nil {
			return ErrNotFound
		}
		v := entryB.Get([]byte(key))
		if v == nil {
			if aliasB := tx.Bucket(bAlias); aliasB != nil {
				if target := aliasB.Get([]byte(key)); target != nil {
					v = entryB.Get(target)
				}
			}
		}
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &e)
	})
	return e, err
}

func normalizePaging(page, size int) (int, int) {
	if page <= 0 {
		page = 1
	}
	if size <= 0 {
		size = 10
	}
	if size > 100 {
		size = 100
	}
	return page, size
}

// List pages through kind in lang in catalog order.
func (s *Store) List(kind content.Kind, lang content.Lang, opt ListOptions) ([]content.Entry, error) {
	opt.Page, opt.Size = normalizePaging(opt.Page, opt.Size)

	var out []content.Entry
	err := s.db.View(func(tx *bolt.Tx) error {
		idx := tx.Bucket(bIdxDate)
		entryB := tx.Bucket(bEntry)
		if idx == nil || entryB == nil {
			return nil
		}
		sb := idx.Bucket(listBucketName(string(kind), string(lang)))
		if sb == nil {
			return nil
		}

		skip := (opt.Page - 1) * opt.Size
		cur := sb.Cursor()
		for k, target := cur.First(); k != nil; k, target = cur.Next() {
			if slugFromDateSlugKey(k) == "" {
				continue
			}
			v := entryB.Get(target)
			if v == nil {
				continue
			}
			if skip > 0 {
				skip--
				continue
			}
			var e content.Entry
			if err := json.Unmarshal(v, &e); err != nil {
				continue
			}
			out = append(out, e)
			if len(out) >= opt.Size {
				break
			}
		}
		return nil
	})
	return out, err
}

// Fingerprint returns the fingerprint stored by the last Rebuild.
func (s *Store) Fingerprint() (build.Fingerprint, error) {
	var fp build.Fingerprint
	err := s.db.View(func(tx *bolt.Tx) error {
		b := tx.Bucket(bMeta)
		if b == nil {
			return ErrNotFound
		}
		v := b.Get(kFingerprint)
		if v == nil {
			return ErrNotFound
		}
		return json.Unmarshal(v, &fp)
	})
	return fp, err
}
