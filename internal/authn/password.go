package authn

import "golang.org/x/crypto/bcrypt"

// BcryptComparer is the default PasswordComparer, matching the hashing
// scheme already used for platform and tenant user passwords.
type BcryptComparer struct{}

// Compare reports whether password matches the bcrypt hash.
func (BcryptComparer) Compare(hash, password string) error {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password))
}

// HashPassword bcrypt-hashes a plaintext password for storage.
func HashPassword(password string) (string, error) {
	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}
	return string(hashed), nil
}
