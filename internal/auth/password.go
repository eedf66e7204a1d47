package auth

import "golang.org/x/crypto/bcrypt"

// hashCost is the bcrypt work factor for passwords and OTP codes.
const hashCost = 10

// HashPassword hashes a password or OTP code with bcrypt.
func HashPassword(plain string) (string, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(plain), hashCost)
	if err != nil {
		return "", err
	}
	return string(hash), nil
}

// CheckPassword reports whether plain matches the stored bcrypt hash.
func CheckPassword(plain, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
