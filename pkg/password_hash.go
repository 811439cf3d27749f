package pkg

import "golang.org/x/crypto/bcrypt"

const DefaultPasswordHashCost = 10

func HashPassword(password string, cost int) (string, error) {
	if cost == 0 {
		cost = DefaultPasswordHashCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(password), cost)
	return BytesToString(bytes), err
}

// CheckPasswordHash compares in constant time; a malformed hash is a mismatch
func CheckPasswordHash(password, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
}
