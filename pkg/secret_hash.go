package pkg

import "golang.org/x/crypto/bcrypt"

// DefaultSecretHashCost is lower than the usual login cost, the control secret
// is verified on every mutating request.
const DefaultSecretHashCost = 10

func HashSecret(secret string, cost int) (string, error) {
	if cost <= 0 {
		cost = DefaultSecretHashCost
	}
	bytes, err := bcrypt.GenerateFromPassword([]byte(secret), cost)
	return BytesToString(bytes), err
}

func CheckSecretHash(secret, hash string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(secret)) == nil
}
