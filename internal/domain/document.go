package domain

// InputDocument is a user-supplied statement file before transport encoding.
// It lives only for the duration of a single analysis request.
type InputDocument struct {
	Name      string
	MediaType string
	Data      []byte
}

// Size returns the payload length in bytes.
func (d InputDocument) Size() int {
	return len(d.Data)
}
