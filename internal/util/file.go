package util

import (
	"bytes"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"strings"
)

// SniffImage 读取文件头校验是否为图片，返回检测到的 MIME 与可重新读取完整内容的 reader
func SniffImage(reader io.Reader, filename string) (string, io.Reader, error) {
	ext := strings.ToLower(filepath.Ext(filename))
	allowed := false
	for _, e := range AllowedImageExtensions {
		if e == ext {
			allowed = true
			break
		}
	}
	if !allowed {
		return "", nil, fmt.Errorf("%w: unsupported image extension %q", ErrValidation, ext)
	}

	buffer := make([]byte, 512)
	n, err := io.ReadFull(reader, buffer)
	if err != nil && err != io.EOF && err != io.ErrUnexpectedEOF {
		return "", nil, err
	}
	buffer = buffer[:n]

	mimeType := http.DetectContentType(buffer)
	// svg 会被识别为 text/xml
	if ext == ".svg" && (strings.HasPrefix(mimeType, "text/xml") || strings.HasPrefix(mimeType, "text/plain")) {
		mimeType = "image/svg+xml"
	}
	if !strings.HasPrefix(mimeType, MimeImage) {
		return mimeType, nil, fmt.Errorf("%w: invalid file type %s", ErrValidation, mimeType)
	}

	return mimeType, io.MultiReader(bytes.NewReader(buffer), reader), nil
}
