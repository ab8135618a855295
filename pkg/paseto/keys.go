package pasetotoken

import (
	"strings"

	paseto "aidanwoods.dev/go-paseto"
)

type Mode string

const (
	ModeLocal  Mode = "local"  // v4.local, encrypted with a shared key
	ModePublic Mode = "public" // v4.public, signed with ed25519
)

// Keys holds the key material for one mode. A public Keys with only Public set can verify but
// not issue admin sessions.
type Keys struct {
	Mode Mode

	Symmetric *paseto.V4SymmetricKey
	Secret    *paseto.V4AsymmetricSecretKey
	Public    *paseto.V4AsymmetricPublicKey
}

// KeyStrings is the hex-encoded form of Keys as it appears in admin.paseto.
type KeyStrings struct {
	Mode Mode

	SymmetricHex string
	SecretHex    string
	PublicHex    string
}

func LoadKeys(in KeyStrings) (Keys, error) {
	switch in.Mode {
	case ModeLocal:
		return loadLocal(strings.TrimSpace(in.SymmetricHex))
	case ModePublic:
		return loadPublic(strings.TrimSpace(in.SecretHex), strings.TrimSpace(in.PublicHex))
	default:
		return Keys{}, ErrConfig{Msg: "admin.paseto.mode must be local or public, got " + string(in.Mode)}
	}
}

func loadLocal(hex string) (Keys, error) {
	if hex == "" {
		return Keys{}, ErrConfig{Msg: "local mode needs admin.paseto.local_key_hex"}
	}
	k, err := paseto.V4SymmetricKeyFromHex(hex)
	if err != nil {
		return Keys{}, ErrConfig{Msg: "local_key_hex: " + err.Error()}
	}
	return Keys{Mode: ModeLocal, Symmetric: &k}, nil
}

// loadPublic derives the public key from the secret when only the secret is configured. An
// explicit public key wins over the derived one.
func loadPublic(secretHex, publicHex string) (Keys, error) {
	keys := Keys{Mode: ModePublic}

	if secretHex != "" {
		sk, err := paseto.NewV4AsymmetricSecretKeyFromHex(secretHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "secret_key_hex: " + err.Error()}
		}
		pk := sk.Public()
		keys.Secret, keys.Public = &sk, &pk
	}

	if publicHex != "" {
		pk, err := paseto.NewV4AsymmetricPublicKeyFromHex(publicHex)
		if err != nil {
			return Keys{}, ErrConfig{Msg: "public_key_hex: " + err.Error()}
		}
		keys.Public = &pk
	}

	if keys.Public == nil {
		return Keys{}, ErrConfig{Msg: "public mode needs admin.paseto.secret_key_hex or public_key_hex"}
	}
	return keys, nil
}

// NewLocalKeys generates a fresh symmetric key. Tokens it issues die with the process.
func NewLocalKeys() Keys {
	k := paseto.NewV4SymmetricKey()
	return Keys{Mode: ModeLocal, Symmetric: &k}
}

func NewPublicKeys() Keys {
	sk := paseto.NewV4AsymmetricSecretKey()
	pk := sk.Public()
	return Keys{Mode: ModePublic, Secret: &sk, Public: &pk}
}
