package crypto

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"hash"

	"github.com/codecampus/gradebox/internal/domain"
)

// SubmissionFingerprint derives a stable cache key from everything that
// determines an execution outcome: language, source, stdin and the
// resource ceilings in force. Fields are length-prefixed so adjacent
// values cannot collide.
func SubmissionFingerprint(req *domain.ExecutionRequest, limits domain.SandboxLimits) string {
	h := sha256.New()
	writeField(h, []byte(req.Language))
	writeField(h, []byte(req.Source))
	writeField(h, []byte(req.Stdin))

	var buf [40]byte
	binary.BigEndian.PutUint64(buf[0:8], uint64(limits.WallTime))
	binary.BigEndian.PutUint64(buf[8:16], uint64(limits.CPUTime))
	binary.BigEndian.PutUint64(buf[16:24], uint64(limits.CompileTime))
	binary.BigEndian.PutUint64(buf[24:32], uint64(limits.MemoryBytes))
	binary.BigEndian.PutUint64(buf[32:40], uint64(limits.OutputBytes))
	h.Write(buf[:])

	return hex.EncodeToString(h.Sum(nil))
}

func writeField(h hash.Hash, field []byte) {
	var n [8]byte
	binary.BigEndian.PutUint64(n[:], uint64(len(field)))
	h.Write(n[:])
	h.Write(field)
}
