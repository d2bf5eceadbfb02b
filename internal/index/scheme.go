package index

var (
	bEntry   = []byte("entry")    // qualified key -> entry json
	bAlias   = []byte("alias")    // shortcut key -> qualified key
	bIdxDate = []byte("idx_date") // "<kind>/<lang>" -> sub-bucket of date keys
	bMeta    = []byte("meta")     // fixed keys below

	kFingerprint = []byte("fingerprint")
)

func listBucketName(kind, lang string) []byte {
	return []byte(kind + "/" + lang)
}
