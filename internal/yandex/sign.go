package yandex

import (
	"crypto/hmac"
	"crypto/md5"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"strconv"
)

// SignDownloadRequest вычисляет подпись запроса download-info.
// HMAC-SHA256 от конкатенации метки времени и идентификатора трека,
// base64 без последнего символа. Усечение обязательно: API принимает
// только такую форму подписи.
func SignDownloadRequest(secretKey string, trackID int64, unixTime int64) string {
	mac := hmac.New(sha256.New, []byte(secretKey))
	mac.Write([]byte(strconv.FormatInt(unixTime, 10) + strconv.FormatInt(trackID, 10)))
	sign := base64.StdEncoding.EncodeToString(mac.Sum(nil))
	return sign[:len(sign)-1]
}

// ContentHash вычисляет MD5-хеш для финальной ссылки get-mp3.
// Хешируется секретный ключ, путь без ведущего символа и соль из
// ответа download-info.
func ContentHash(secretKey, path, salt string) string {
	if path != "" {
		path = path[1:]
	}
	sum := md5.Sum([]byte(secretKey + path + salt))
	return hex.EncodeToString(sum[:])
}
