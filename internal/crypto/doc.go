// Package crypto provides the key material and authenticated encryption used by vlt.
//
// Encryption uses XChaCha20-Poly1305 with:
//   - 32-byte random key, one per vault
//   - 24-byte random nonce per seal operation
//   - Sealed layout: nonce || ciphertext || 16-byte tag
//
// The layout matches the sealed boxes written by earlier releases of the tool,
// so existing .vlt files open unchanged.
//
// Memory safety:
//   - SecretKey keeps its bytes in a memguard locked buffer
//   - Call SecretKey.Destroy() when done with a key
//   - Use ClearBytes() to zero other sensitive data after use
package crypto
