// Package uniuri generates random salts for the password schemes: strings
// over a caller supplied alphabet without modulo bias, and raw random bytes.
package uniuri
