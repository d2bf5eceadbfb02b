package index

import "encoding/binary"

const (
	flagDated   byte = 0x00
	flagUndated byte = 0x01
)

// key = flag(1) + invTime(8) + pos(4) + 0x00 + slug
//
// Dated keys sort before undated ones, newer before older; pos is the
// entry's place in the catalog listing and keeps ties in build order.
func makeDateSlugKey(hasDate bool, unixNano int64, pos int, slug string) []byte {
	flag := flagDated
	// flipping the sign bit makes pre-1970 nanos order below later ones
	invTime := ^(uint64(unixNano) ^ 1<<63)
	if !hasDate {
		flag = flagUndated
		invTime = 0
	}

	buf := make([]byte, 0, 1+8+4+1+len(slug))
	buf = append(buf, flag)

	tmp8 := make([]byte, 8)
	binary.BigEndian.PutUint64(tmp8, invTime)
	buf = append(buf, tmp8...)

	tmp4 := make([]byte, 4)
	binary.BigEndian.PutUint32(tmp4, uint32(pos))
	buf = append(buf, tmp4...)

	buf = append(buf, 0x00)
	buf = append(buf, []byte(slug)...)
	return buf
}

func slugFromDateSlugKey(k []byte) string {
	const head = 1 + 8 + 4
	if len(k) < head+2 {
		return ""
	}
	if k[head] != 0x00 {
		return ""
	}
	return string(k[head+1:])
}
