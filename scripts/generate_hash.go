//go:build ignore

// generate_hash.go генерирует Argon2id-хеш для ADMIN_PASSWORD_HASH.
// Пока хеш не задан, операторские команды доступны по одному ADMIN_ID;
// с хешем дополнительно требуется /login <пароль>.
//
// Запуск: go run scripts/generate_hash.go <пароль>
package main

import (
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"os"

	"golang.org/x/crypto/argon2"
)

// Параметры должны парситься проверкой в internal/features/access:
// формат $argon2id$v=19$m=...,t=...,p=...$salt$hash.
const (
	memoryKiB   uint32 = 65536
	iterations  uint32 = 3
	parallelism uint8  = 2
	saltLen            = 16
	keyLen      uint32 = 32
)

func main() {
	if len(os.Args) != 2 {
		fmt.Fprintln(os.Stderr, "Запуск: go run scripts/generate_hash.go <пароль>")
		os.Exit(2)
	}

	hash, err := encodePassword(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Ошибка: %v\n", err)
		os.Exit(1)
	}

	// Строка готова для вставки в .env как есть.
	fmt.Printf("ADMIN_PASSWORD_HASH=%s\n", hash)
}

func encodePassword(password string) (string, error) {
	salt := make([]byte, saltLen)
	if _, err := rand.Read(salt); err != nil {
		return "", fmt.Errorf("генерация соли: %w", err)
	}

	key := argon2.IDKey([]byte(password), salt, iterations, memoryKiB, parallelism, keyLen)

	return fmt.Sprintf("$argon2id$v=19$m=%d,t=%d,p=%d$%s$%s",
		memoryKiB, iterations, parallelism,
		base64.RawStdEncoding.EncodeToString(salt),
		base64.RawStdEncoding.EncodeToString(key),
	), nil
}
