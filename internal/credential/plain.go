package credential

type plainHasher struct{}

func (plainHasher) Scheme() Scheme { return Plain }

func (plainHasher) Check(plaintext []byte, stored string) (bool, error) {
	return equal([]byte(stored), plaintext), nil
}

func (plainHasher) Make(plaintext []byte) (string, error) {
	return string(plaintext), nil
}
