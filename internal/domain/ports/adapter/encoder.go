package adapter

// LinkEncoder renders a shareable link as an image (QR). Failure is
// non-fatal for callers; they degrade to text-only delivery.
type LinkEncoder interface {
	Encode(text string) ([]byte, error)
}
