// Package safety 实现了聊天消息的危机词拦截。
package safety

import "strings"

// 危机指示词集合，匹配不区分大小写。
var unsafeTerms = []string{
	"suicide",
	"self-harm",
	"kill myself",
	"end it all",
}

// CrisisMessage 是命中危机词后返回的固定资源文本。
// 命中后不会再调用外部模型。
const CrisisMessage = "❗ Emergency Resources:\n" +
	"1. National Suicide Prevention Lifeline: 1-800-273-8255\n" +
	"2. Crisis Text Line: Text HOME to 741741\n" +
	"3. Local Emergency Services: 911"

// Scan 检查消息中是否包含任一危机指示词。
func Scan(message string) bool {
	lowered := strings.ToLower(message)
	for _, term := range unsafeTerms {
		if strings.Contains(lowered, term) {
			return true
		}
	}
	return false
}
