package config

import (
	"os"
	"strconv"
	"strings"
)

var (
	TLS_DOMAINS  = ""                   // e.g. "example.com,example2.com"
	MYSQL_DSN    = ""                   // MySQL will be used if this is set
	SQLITE_FILE  = "circle_memories.db" // SQLite will be used if MYSQL_DSN is not configured
	BIND_ADDRESS = "0.0.0.0:8080"
	UPLOAD_DIR   = "uploads" // Used for creating the initial (disk) bucket
	TMP_DIR      = "/tmp"    // Local copies of S3 objects (PDF rendering, thumbnails)
	DEBUG_MODE   = true
	SCAN_UPLOADS = true // Import files found in the default bucket that the DB doesn't know about
	CORS_ORIGINS = "*"
	SESSION_KEY  = "dev-session-key-change-in-production"
	// Authentication
	JWT_SECRET_KEY     = "dev-secret-key-change-in-production"
	ACCESS_TOKEN_HOURS = 24
	REFRESH_TOKEN_DAYS = 30
	MAX_LOGIN_ATTEMPTS = 5
	LOCKOUT_MINUTES    = 30
	BCRYPT_COST        = 12
	// Media
	MAX_UPLOAD_MB = 50
	THUMB_SIZE    = 1280
	// AI collaborators. Each one is disabled when its key is empty
	DEEPSEEK_API_KEY  = ""
	DEEPSEEK_BASE_URL = "https://api.deepseek.com"
	DEEPSEEK_MODEL    = "deepseek-chat"
	ANTHROPIC_API_KEY = ""
	CLAUDE_MODEL      = "claude-sonnet-4-5"
	// Used to give the categoriser an age context
	BIRTH_YEAR = 1955
)

func init() {
	readEnvString("TLS_DOMAINS", &TLS_DOMAINS)
	readEnvString("MYSQL_DSN", &MYSQL_DSN)
	readEnvString("SQLITE_FILE", &SQLITE_FILE)
	readEnvString("BIND_ADDRESS", &BIND_ADDRESS)
	readEnvString("UPLOAD_DIR", &UPLOAD_DIR)
	readEnvString("TMP_DIR", &TMP_DIR)
	readEnvBool("DEBUG_MODE", &DEBUG_MODE)
	readEnvBool("SCAN_UPLOADS", &SCAN_UPLOADS)
	readEnvString("CORS_ORIGINS", &CORS_ORIGINS)
	readEnvString("SESSION_KEY", &SESSION_KEY)
	readEnvString("JWT_SECRET_KEY", &JWT_SECRET_KEY)
	readEnvInt("ACCESS_TOKEN_HOURS", &ACCESS_TOKEN_HOURS)
	readEnvInt("REFRESH_TOKEN_DAYS", &REFRESH_TOKEN_DAYS)
	readEnvInt("MAX_LOGIN_ATTEMPTS", &MAX_LOGIN_ATTEMPTS)
	readEnvInt("LOCKOUT_MINUTES", &LOCKOUT_MINUTES)
	readEnvInt("BCRYPT_COST", &BCRYPT_COST)
	readEnvInt("MAX_UPLOAD_MB", &MAX_UPLOAD_MB)
	readEnvInt("THUMB_SIZE", &THUMB_SIZE)
	readEnvString("DEEPSEEK_API_KEY", &DEEPSEEK_API_KEY)
	readEnvString("DEEPSEEK_BASE_URL", &DEEPSEEK_BASE_URL)
	readEnvString("DEEPSEEK_MODEL", &DEEPSEEK_MODEL)
	readEnvString("ANTHROPIC_API_KEY", &ANTHROPIC_API_KEY)
	readEnvString("CLAUDE_MODEL", &CLAUDE_MODEL)
	readEnvInt("BIRTH_YEAR", &BIRTH_YEAR)
}

// CORSOrigins returns the configured origins, "*" meaning any
func CORSOrigins() []string {
	result := []string{}
	for _, o := range strings.Split(CORS_ORIGINS, ",") {
		if o = strings.TrimSpace(o); o != "" {
			result = append(result, o)
		}
	}
	return result
}

func readEnvString(name string, value *string) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	*value = v
}

func readEnvBool(name string, value *bool) {
	v := strings.ToLower(os.Getenv(name))
	if v == "true" || v == "1" || v == "yes" || v == "on" {
		*value = true
	} else if v == "false" || v == "0" || v == "no" || v == "off" {
		*value = false
	}
}

func readEnvInt(name string, value *int) {
	v := os.Getenv(name)
	if v == "" {
		return
	}
	f, err := strconv.Atoi(v)
	if err != nil {
		return
	}
	*value = f
}
