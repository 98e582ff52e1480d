package util

import (
	"golang.org/x/crypto/bcrypt"
)

// 회원 비밀번호 해시 비용
// 로그인/가입 지연과 무차별 대입 방어 사이의 절충값
const passwordHashCost = 12

// HashPassword 평문 비밀번호를 bcrypt 해시로 변환
// 저장소에는 이 해시만 기록한다
func HashPassword(password string) (string, error) {
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), passwordHashCost)
	if err != nil {
		return "", err
	}
	return string(bytes), nil
}

// VerifyPassword 평문 비밀번호와 저장된 해시의 일치 여부 확인
func VerifyPassword(hashedPassword, password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(hashedPassword), []byte(password))
	return err == nil
}
