package token

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
)

// secretKey 是一个全局变量，用于存储服务器在启动时生成的32字节密钥。
var secretKey []byte

// RevealPayload 定义了需要被签名的数据结构。
// 它随仰慕者列表下发，并在揭示请求中被带回校验，
// 防止目标伪造其他记录ID来窥探发送者身份。
type RevealPayload struct {
	AdmirerID  uint   `json:"i"`
	TargetCode string `json:"t"`
}

// GenerateSecretKey 生成一个密码学安全的32字节随机密钥。
// 密钥只存活于进程内，重启后旧的揭示令牌自动失效。
func GenerateSecretKey() {
	key := make([]byte, 32)
	_, err := rand.Read(key)
	if err != nil {
		panic("无法生成安全的密钥: " + err.Error())
	}
	secretKey = key
	fmt.Println("HMAC密钥已成功生成。")
}

// GenerateRevealSignature 为一个给定的RevealPayload生成HMAC签名。
// 它返回的是签名的Base64编码字符串。
func GenerateRevealSignature(payload RevealPayload) (string, error) {
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return "", errors.New("无法序列化Token payload")
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	signature := mac.Sum(nil)

	return base64.RawURLEncoding.EncodeToString(signature), nil
}

// ValidateRevealSignature 验证一个给定的payload和签名是否匹配。
func ValidateRevealSignature(payload RevealPayload, signatureB64 string) bool {
	// 将传入的payload重新序列化，以确保与签名时的数据格式完全一致
	payloadBytes, err := json.Marshal(payload)
	if err != nil {
		return false
	}

	mac := hmac.New(sha256.New, secretKey)
	mac.Write(payloadBytes)
	expectedSignature := mac.Sum(nil)

	actualSignature, err := base64.RawURLEncoding.DecodeString(signatureB64)
	if err != nil {
		return false
	}

	// 使用 hmac.Equal 进行时间恒定的比较，防止时序攻击
	return hmac.Equal(expectedSignature, actualSignature)
}
