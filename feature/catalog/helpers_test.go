package catalog

import (
	"bytes"
	"io"
)

func readCloser(data []byte) io.ReadCloser {
	return io.NopCloser(bytes.NewReader(data))
}
