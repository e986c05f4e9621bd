package utils

import "golang.org/x/crypto/bcrypt"

// minBcryptCost is the floor applied to configured costs. Most accounts here
// belong to minors, so a misconfigured BCRYPT_COST must not silently weaken
// their credentials below the library default.
const minBcryptCost = bcrypt.DefaultCost

// HashPassword bcrypt-hashes an account password. Costs below the floor are
// raised to it; costs above bcrypt's maximum fail inside the library.
func HashPassword(plain string, cost int) (string, error) {
	if cost < minBcryptCost {
		cost = minBcryptCost
	}
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a stored hash against a login attempt in constant
// time. It never reports why a mismatch happened.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
