package internal

import (
	"crypto/sha1"
	"encoding/hex"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// SetupLogging 将标准 log 输出重定向到 ~/.docqa/logs 下本次运行的日志文件。
// 返回日志文件路径；控制台只保留问答内容。
func SetupLogging(documentPath string) (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}

	logDir := filepath.Join(homeDir, ".docqa", "logs")
	if err := os.MkdirAll(logDir, 0755); err != nil {
		return "", err
	}

	logPath := filepath.Join(logDir, LogFileName(documentPath, time.Now()))
	logFile, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return "", err
	}

	log.SetOutput(logFile)
	log.Printf("Log file: %s", logPath)
	return logPath, nil
}

// LogFileName 根据文档路径与时间生成日志文件名。
func LogFileName(documentPath string, now time.Time) string {
	absPath, err := filepath.Abs(documentPath)
	if err != nil {
		absPath = documentPath
	}
	base := filepath.Base(absPath)
	name := sanitizeName(strings.TrimSuffix(base, filepath.Ext(base)))
	hash := sha1.Sum([]byte(absPath))
	suffix := hex.EncodeToString(hash[:])[:8]
	return fmt.Sprintf("docqa-%s-%s-%s.log", name, now.Format("20060102-150405"), suffix)
}

// sanitizeName 将名称中的危险字符替换为下划线，生成文件系统友好的标识符。
func sanitizeName(name string) string {
	if name == "" || name == "." || name == string(filepath.Separator) {
		return "document"
	}
	var b strings.Builder
	for _, r := range name {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') ||
			r == '.' || r == '_' || r == '-' {
			b.WriteRune(r)
			continue
		}
		b.WriteByte('_')
	}
	return b.String()
}
