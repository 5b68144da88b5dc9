package utils

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// GenerateRandomString 生成随机字符串
func GenerateRandomString(length int) string {
	bytes := make([]byte, length/2+1)
	rand.Read(bytes)
	return hex.EncodeToString(bytes)[:length]
}

// GenerateInviteToken 生成邀请 Token
func GenerateInviteToken() string {
	return GenerateRandomString(32)
}

// GenerateSharingCode 生成共享单号
// 格式: ES-XXXX-XXXX-XXXX
func GenerateSharingCode() string {
	bytes := make([]byte, 12)
	rand.Read(bytes)
	hex := strings.ToUpper(hex.EncodeToString(bytes))
	return fmt.Sprintf("ES-%s-%s-%s", hex[0:4], hex[4:8], hex[8:12])
}

// GenerateContractNo 生成合同编号
// 格式: EC-XXXX-XXXX-XXXX
func GenerateContractNo() string {
	bytes := make([]byte, 12)
	rand.Read(bytes)
	hex := strings.ToUpper(hex.EncodeToString(bytes))
	return fmt.Sprintf("EC-%s-%s-%s", hex[0:4], hex[4:8], hex[8:12])
}

// GenerateWebhookSecret 生成 Webhook 密钥
func GenerateWebhookSecret() string {
	return GenerateRandomString(64)
}

// MaskEmail 隐藏邮箱中间部分
func MaskEmail(email string) string {
	parts := strings.Split(email, "@")
	if len(parts) != 2 {
		return email
	}
	name := parts[0]
	domain := parts[1]
	if len(name) <= 2 {
		return email
	}
	masked := name[0:1] + "***" + name[len(name)-1:]
	return masked + "@" + domain
}

// MaskToken 隐藏 Token 中间部分
func MaskToken(token string) string {
	if len(token) < 8 {
		return token
	}
	return token[0:4] + "****" + token[len(token)-4:]
}
