package utils

import "golang.org/x/crypto/bcrypt"

// HashPassword returns the bcrypt hash of a secret using the given cost.
// It covers both stored credentials in the system: user passwords set at
// registration and tenant API secrets provisioned by seeding.
func HashPassword(plain string, cost int) (string, error) {
	b, err := bcrypt.GenerateFromPassword([]byte(plain), cost)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// VerifyPassword compares a bcrypt hash against a presented secret.  The
// tenant gate calls it with the x-tenant-secret header on every request;
// login calls it with the user's password.
func VerifyPassword(hash, plain string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(plain)) == nil
}
