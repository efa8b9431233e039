package respond

import (
	"regexp"
)

var (
	// DSN内のパスワード
	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)

	// 署名済みJWT（セッションCookie/Bearer）
	jwtPattern = regexp.MustCompile(`eyJ[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+\.[A-Za-z0-9_-]+`)

	// key=value 形式のパスワード・シークレット
	secretParamPattern = regexp.MustCompile(`(?i)(password|secret)=([^\s&]+)`)
)

// SanitizeError は機密情報をマスクしたエラーメッセージを返す
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	msg = dbPasswordPattern.ReplaceAllString(msg, "://$1:****@")
	msg = jwtPattern.ReplaceAllString(msg, "eyJ****")
	msg = secretParamPattern.ReplaceAllString(msg, "$1=****")
	return msg
}
