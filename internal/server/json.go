package server

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// maxRequestBodySize ограничивает размер тела запроса (64 KB).
const maxRequestBodySize = 64 << 10

// decodeJSONBody декодирует JSON тело запроса в dst.
// Пустое тело — ошибка: POST /api/acknowledge требует JSON объект.
func decodeJSONBody(r *http.Request, dst any) error {
	body := http.MaxBytesReader(nil, r.Body, maxRequestBodySize)
	dec := json.NewDecoder(body)

	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("тело запроса пустое")
		}
		return err
	}
	return nil
}
