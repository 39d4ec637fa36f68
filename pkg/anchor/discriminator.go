package anchor

import (
	"crypto/sha256"
	"fmt"
)

// GetDiscriminator returns the 8-byte anchor instruction discriminator for
// namespace:name, e.g. GetDiscriminator("global", "swap_v2").
func GetDiscriminator(namespace, name string) []byte {
	h := sha256.Sum256([]byte(fmt.Sprintf("%s:%s", namespace, name)))
	return h[:8]
}

// GetAccountDiscriminator returns the 8-byte discriminator prefixing anchor
// account data, sha256("account:<Name>")[0:8].
func GetAccountDiscriminator(name string) []byte {
	h := sha256.Sum256([]byte("account:" + name))
	return h[:8]
}
