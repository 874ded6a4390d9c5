package outcome

import (
	"crypto/rand"
	"encoding/binary"

	"golang.org/x/crypto/chacha20"
)

// Source поставщик случайных 64-битных чисел. Вызовы сериализует Generator
type Source interface {
	Uint64() uint64
}

type cryptoSource struct {
	buf [8]byte
}

// NewCryptoSource непредсказуемый источник для боевого режима
func NewCryptoSource() Source {
	return &cryptoSource{}
}

func (s *cryptoSource) Uint64() uint64 {
	// crypto/rand.Read не возвращает ошибку начиная с go1.24
	_, _ = rand.Read(s.buf[:])
	return binary.LittleEndian.Uint64(s.buf[:])
}

// seededSource поток ключа ChaCha20 от ключа, полученного из seed
type seededSource struct {
	cipher *chacha20.Cipher
	block  [64]byte
	pos    int
}

// NewSeededSource воспроизводимый источник: одинаковый seed даёт одинаковую последовательность
func NewSeededSource(seed uint64) (Source, error) {
	key := make([]byte, chacha20.KeySize)
	binary.LittleEndian.PutUint64(key, seed)
	nonce := make([]byte, chacha20.NonceSize)

	c, err := chacha20.NewUnauthenticatedCipher(key, nonce)
	if err != nil {
		return nil, err
	}

	s := &seededSource{cipher: c}
	s.refill()
	return s, nil
}

func (s *seededSource) refill() {
	clear(s.block[:])
	s.cipher.XORKeyStream(s.block[:], s.block[:])
	s.pos = 0
}

func (s *seededSource) Uint64() uint64 {
	if s.pos+8 > len(s.block) {
		s.refill()
	}
	v := binary.LittleEndian.Uint64(s.block[s.pos:])
	s.pos += 8
	return v
}
