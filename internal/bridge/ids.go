package bridge

import (
	"crypto/sha256"
	"crypto/sha512"
	"encoding/hex"

	"golang.org/x/crypto/ripemd160" //nolint:staticcheck // the network's id scheme is fixed to RIPEMD-160
)

// idLength is the number of hex characters kept from an identifier digest.
const idLength = 24

// DeriveContainerID maps an owner and a human-readable container name to
// the container id used by the bridge. Same inputs, same id.
func DeriveContainerID(ownerID, containerName string) string {
	sum := sha256.Sum256([]byte(ownerID + containerName))
	return hex.EncodeToString(sum[:])[:idLength]
}

// DeriveFileID maps a container id and a file name to the bridge file id.
func DeriveFileID(containerID, fileName string) string {
	sum := sha512.Sum512([]byte(containerID + fileName))
	h := ripemd160.New()
	h.Write(sum[:])
	return hex.EncodeToString(h.Sum(nil))[:idLength]
}

// HashPassword returns the form of the password the bridge expects in basic
// auth: the hex encoded SHA-256 of the plain text.
func HashPassword(password string) string {
	sum := sha256.Sum256([]byte(password))
	return hex.EncodeToString(sum[:])
}
