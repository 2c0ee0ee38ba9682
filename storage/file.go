package storage

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/pbkdf2"
)

const (
	fileSaltSize   = 16
	fileNonceSize  = 12
	filePBKDF2Iter = 10000
)

// File persists key-value pairs as a JSON file with AES-GCM encrypted
// values, so tokens never sit on disk in the clear. A value that fails to
// decrypt is reported absent, never as an error.
type File struct {
	mu     sync.Mutex
	path   string
	secret string
	values map[string]string
}

// NewFile opens (or creates) the store at path, decrypting with the given
// secret. An unreadable or corrupt file starts empty.
func NewFile(path, secret string) (*File, error) {
	f := &File{
		path:   path,
		secret: secret,
		values: make(map[string]string),
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	f.load()
	return f, nil
}

func (f *File) load() {
	raw, err := os.ReadFile(f.path)
	if err != nil {
		return
	}
	var stored map[string]string
	if err := json.Unmarshal(raw, &stored); err != nil {
		return
	}
	for key, enc := range stored {
		if plain, ok := f.decrypt(enc); ok {
			f.values[key] = plain
		}
	}
}

// flush is best-effort: the session layer treats storage as reliable and a
// failed write only surfaces on the next hydration.
func (f *File) flush() {
	stored := make(map[string]string, len(f.values))
	for key, plain := range f.values {
		enc, err := f.encrypt(plain)
		if err != nil {
			continue
		}
		stored[key] = enc
	}
	raw, err := json.MarshalIndent(stored, "", "  ")
	if err != nil {
		return
	}
	_ = os.WriteFile(f.path, raw, 0o600)
}

func (f *File) Get(key string) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	v, ok := f.values[key]
	return v, ok
}

func (f *File) Set(key, value string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.values[key] = value
	f.flush()
}

func (f *File) Delete(key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.values, key)
	f.flush()
}

func (f *File) encrypt(plain string) (string, error) {
	salt := make([]byte, fileSaltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return "", err
	}
	gcm, err := f.cipherFor(salt)
	if err != nil {
		return "", err
	}
	nonce := make([]byte, fileNonceSize)
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return "", err
	}
	sealed := gcm.Seal(nil, nonce, []byte(plain), nil)

	// salt || nonce || ciphertext
	buf := make([]byte, 0, len(salt)+len(nonce)+len(sealed))
	buf = append(buf, salt...)
	buf = append(buf, nonce...)
	buf = append(buf, sealed...)
	return base64.StdEncoding.EncodeToString(buf), nil
}

func (f *File) decrypt(enc string) (string, bool) {
	buf, err := base64.StdEncoding.DecodeString(enc)
	if err != nil || len(buf) < fileSaltSize+fileNonceSize {
		return "", false
	}
	salt := buf[:fileSaltSize]
	nonce := buf[fileSaltSize : fileSaltSize+fileNonceSize]
	sealed := buf[fileSaltSize+fileNonceSize:]

	gcm, err := f.cipherFor(salt)
	if err != nil {
		return "", false
	}
	plain, err := gcm.Open(nil, nonce, sealed, nil)
	if err != nil {
		return "", false
	}
	return string(plain), true
}

func (f *File) cipherFor(salt []byte) (cipher.AEAD, error) {
	key := pbkdf2.Key([]byte(f.secret), salt, filePBKDF2Iter, 32, sha256.New)
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
