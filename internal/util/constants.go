package util

const TimeFormat = "2006-01-02 15:04:05"

const (
	StorageLocal = "local"
	StorageMinio = "minio"
)

const MimeImage = "image/"

var AllowedImageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".svg"}

// gin 上下文键
const (
	ContextUserKey = "user"
)
