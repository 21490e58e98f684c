package images

import (
	"crypto/md5"
	"fmt"

	"gocv.io/x/gocv"
)

// ComputeMatChecksum generates a deterministic checksum for a Mat's pixel data.
//
// The pipeline uses it in debug logs to identify frames; tests use it to
// verify a frame was not modified by a consumer.
//
// Arguments:
//   - mat: The Mat to compute checksum for.
//
// Returns:
//   - A hex-encoded MD5 checksum string, or "empty" for an empty Mat.
func ComputeMatChecksum(mat gocv.Mat) string {
	if mat.Empty() {
		return "empty"
	}

	data, err := mat.DataPtrUint8()
	if err != nil {
		// Non-continuous or non-8-bit Mats fall back to a clone.
		clone := mat.Clone()
		defer clone.Close()
		data = clone.ToBytes()
	}
	hash := md5.New()
	hash.Write(data)
	return fmt.Sprintf("%x", hash.Sum(nil))
}
