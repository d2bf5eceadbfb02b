package index

import (
	"encoding/json"
	bolt "go.etcd.io/bbolt"
	"kadmeia/internal/catalog"
	"kadmeia/internal/domain/build"
	"kadmeia/internal/domain/content"
)

// Rebuild replaces the snapshot with the contents of cat.
func (s *Store) Rebuild(cat *catalog.Catalog, fp build.Fingerprint) error {
	return s.db.Update(func(tx *bolt.Tx) error {
		for _, name := range [][]byte{bEntry, bAlias, bIdxDate, bMeta} {
			if err := tx.DeleteBucket(name); err != nil && err != bolt.ErrBucketNotFound {
				return err
			}
		}

		entryB, err := tx.CreateBucket(bEntry)
		if err != nil {
			return err
		}
		aliasB, err := tx.CreateBucket(bAlias)
		if err != nil {
			return err
		}
		idxB, err := tx.CreateBucket(bIdxDate)
		if err != nil {
			return err
		}
		metaB, err := tx.CreateBucket(bMeta)
		if err != nil {
			return err
		}

		for _, kind := range content.Kinds {
			for _, lang := range content.Langs {
				items := cat.All(kind, lang)
				if len(items) == 0 {
					continue
				}
				sb, err := idxB.CreateBucketIfNotExists(listBucketName(string(kind), string(lang)))
				if err != nil {
					return err
				}
				for pos, e := range items {
					if err := putEntry(entryB, aliasB, e); err != nil {
						return err
					}
					key := makeDateSlugKey(e.HasDate(), e.Date.UnixNano(), pos, e.Slug)
					if err := sb.Put(key, []byte(e.Key())); err != nil {
						return err
					}
				}
			}
		}

		fb, err := json.Marshal(fp)
		if err != nil {
			return err
		}
		return metaB.Put(kFingerprint, fb)
	})
}

func putEntry(entryB, aliasB *bolt.Bucket, e *content.Entry) error {
	eb, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if err := entryB.Put([]byte(e.Key()), eb); err != nil {
		return err
	}
	if e.Lang == content.DefaultLang {
		return aliasB.Put([]byte(content.ShortcutKey(e.Kind, e.Slug)), []byte(e.Key()))
	}
	return nil
}
