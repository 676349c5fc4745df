package cache

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"

	"kpaths/pkg/domain"
)

// RankKey строит ключ кэша для ранжирования на графе g.
//
// Ключ зависит только от эффективного графа (после применения "последнее
// ребро побеждает"), поэтому запросы, отличающиеся лишь дубликатами или
// порядком рёбер, разделяют одну запись. k=0 и k=1 дают один и тот же
// результат и нормализуются к 1.
func RankKey(g *domain.Graph, source, target, k uint32) string {
	if g == nil {
		return ""
	}
	hash := sha256.Sum256(canonical(g, source, target, max(k, 1)))
	return "rank:" + hex.EncodeToString(hash[:16])
}

// canonical создаёт детерминированное представление запроса
func canonical(g *domain.Graph, source, target, k uint32) []byte {
	edges := g.Edges()
	buf := make([]byte, 0, 16+len(edges)*12)

	buf = binary.BigEndian.AppendUint32(buf, uint32(g.Len()))
	buf = binary.BigEndian.AppendUint32(buf, k)
	buf = binary.BigEndian.AppendUint32(buf, source)
	buf = binary.BigEndian.AppendUint32(buf, target)

	// Edges() уже отсортированы по (from, to)
	for _, e := range edges {
		buf = binary.BigEndian.AppendUint32(buf, e.From)
		buf = binary.BigEndian.AppendUint32(buf, e.To)
		buf = binary.BigEndian.AppendUint32(buf, e.Weight)
	}

	return buf
}
