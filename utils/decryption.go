package utils

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/kms"
	"github.com/datazip-inc/kwanko/constants"
	"github.com/goccy/go-json"
	"github.com/spf13/viper"
)

// decrypter opens config files encrypted either with a local passphrase (AES-GCM over its
// SHA-256 digest) or with an AWS KMS key given by ARN
type decrypter struct {
	kmsClient *kms.Client
	localKey  []byte
}

// newDecrypter returns nil when no encryption key is configured
func newDecrypter(ctx context.Context) (*decrypter, error) {
	key := strings.TrimSpace(viper.GetString(constants.EncryptionKey))
	if key == "" {
		return nil, nil
	}

	if strings.HasPrefix(key, "arn:aws:kms:") {
		cfg, err := config.LoadDefaultConfig(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load AWS config: %s", err)
		}
		return &decrypter{kmsClient: kms.NewFromConfig(cfg)}, nil
	}

	hash := sha256.Sum256([]byte(key))
	return &decrypter{localKey: hash[:]}, nil
}

func (d *decrypter) decrypt(ctx context.Context, cipherData []byte) ([]byte, error) {
	if d.kmsClient != nil {
		out, err := d.kmsClient.Decrypt(ctx, &kms.DecryptInput{
			CiphertextBlob: cipherData,
		})
		if err != nil {
			return nil, fmt.Errorf("kms decrypt: %s", err)
		}
		return out.Plaintext, nil
	}

	block, err := aes.NewCipher(d.localKey)
	if err != nil {
		return nil, err
	}
	aead, err := cipher.NewGCM(block)
	if err != nil {
		return nil, err
	}

	nonceSize := aead.NonceSize()
	if len(cipherData) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}

	nonce, ciphertext := cipherData[:nonceSize], cipherData[nonceSize:]
	return aead.Open(nil, nonce, ciphertext, nil)
}

// DecryptConfig turns the content of an encrypted config file (a base64 url encoded payload,
// optionally json quoted) back into the plain config document. Without an encryption key the
// content is returned untouched.
func DecryptConfig(ctx context.Context, content []byte) ([]byte, error) {
	d, err := newDecrypter(ctx)
	if err != nil {
		return nil, fmt.Errorf("decryption setup failed: %s", err)
	}
	if d == nil {
		return content, nil
	}

	var unquoted string
	if err := json.Unmarshal(content, &unquoted); err != nil {
		unquoted = strings.TrimSpace(string(content))
	}

	encrypted, err := base64.URLEncoding.DecodeString(unquoted)
	if err != nil {
		return nil, fmt.Errorf("failed to decode base64 data: %s", err)
	}

	plain, err := d.decrypt(ctx, encrypted)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt data: %s", err)
	}
	return plain, nil
}
